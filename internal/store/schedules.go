package store

import (
	"context"
	"database/sql"
	"fmt"

	"agendum/internal/schedule"
)

// scheduleColumns is the canonical column list for all SELECT queries.
// Order must match scanSchedule.
const scheduleColumns = `id, date, day_of_week, time, content, created_at`

// ScheduleStore handles schedule rows on SQLite. It implements both the
// save-side Persister and the query-side Searcher.
type ScheduleStore struct {
	db *DB
}

func NewScheduleStore(db *DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Insert stores an accepted schedule and returns the assigned row ID. An
// empty time-of-day is stored as NULL.
func (s *ScheduleStore) Insert(ctx context.Context, rec schedule.Record) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (date, day_of_week, time, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.Date, rec.DayOfWeek, nullable(rec.Time), rec.Content, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Count returns the total number of stored schedules.
func (s *ScheduleStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedules`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return count, nil
}

// CountBetween counts schedules in the inclusive date window, optionally
// narrowed by a content keyword and an exact clock time.
func (s *ScheduleStore) CountBetween(ctx context.Context, start, end, topic, timeOfDay string) (int64, error) {
	query, args := buildFilter(`SELECT COUNT(*) FROM schedules`, start, end, topic, timeOfDay)
	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count schedules in range: %w", err)
	}
	return count, nil
}

// ListBetween returns schedules in the inclusive date window ordered by date
// then time, NULL times first.
func (s *ScheduleStore) ListBetween(ctx context.Context, start, end, topic, timeOfDay string, limit int) ([]schedule.Record, error) {
	query, args := buildFilter(`SELECT `+scheduleColumns+` FROM schedules`, start, end, topic, timeOfDay)
	query += ` ORDER BY date, time LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules in range: %w", err)
	}
	defer rows.Close()

	var records []schedule.Record
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListAll returns every stored schedule ordered by row ID, for exports.
func (s *ScheduleStore) ListAll(ctx context.Context) ([]schedule.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var records []schedule.Record
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func buildFilter(base, start, end, topic, timeOfDay string) (string, []any) {
	query := base + ` WHERE date >= ? AND date <= ?`
	args := []any{start, end}
	if topic != "" {
		query += ` AND content LIKE ?`
		args = append(args, "%"+topic+"%")
	}
	if timeOfDay != "" {
		query += ` AND time = ?`
		args = append(args, timeOfDay)
	}
	return query, args
}

func scanSchedule(rows *sql.Rows) (schedule.Record, error) {
	var rec schedule.Record
	var timeOfDay sql.NullString
	if err := rows.Scan(&rec.ID, &rec.Date, &rec.DayOfWeek, &timeOfDay, &rec.Content, &rec.CreatedAt); err != nil {
		return schedule.Record{}, fmt.Errorf("scan schedule: %w", err)
	}
	rec.Time = timeOfDay.String
	return rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
