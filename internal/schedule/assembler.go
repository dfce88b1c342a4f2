package schedule

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agendum/internal/dedup"
	"agendum/internal/errors"
	"agendum/internal/temporal"
)

// Assembler orchestrates a single resolution call: validate, anchor, resolve,
// dedup, persist. It holds no per-call state and is safe for concurrent use.
type Assembler struct {
	store Persister
	cache *dedup.Cache
	now   func() time.Time
}

func NewAssembler(store Persister, cache *dedup.Cache, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{store: store, cache: cache, now: now}
}

// Save resolves and persists one schedule request. It returns a
// *DuplicateError when the request was already accepted within the dedup
// window, an ErrInvalidInput-wrapped error for validation failures, and an
// ErrInternal-wrapped error when the request resolved but persistence failed.
// The dedup key stays recorded in that last case; the write is not retried
// from this layer.
func (a *Assembler) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errors.InvalidInput("content is required")
	}

	mode := strings.ToUpper(strings.TrimSpace(req.When.Mode))
	if mode != ModeAbsolute && mode != ModeToken {
		return nil, errors.InvalidInput("when.mode must be ABSOLUTE or TOKEN")
	}

	anchor := temporal.ResolveAnchor(req.AnchorNow, a.now)

	var (
		resolved  time.Time
		timeOfDay string
		err       error
	)
	switch mode {
	case ModeAbsolute:
		date := strings.TrimSpace(req.When.Date)
		if date == "" {
			return nil, errors.InvalidInput("when.date is required in ABSOLUTE mode")
		}
		resolved, err = time.Parse(temporal.DateLayout, date)
		if err != nil {
			return nil, errors.InvalidInputf("invalid date %q, expected YYYY-MM-DD", date)
		}
		if t := strings.TrimSpace(req.When.Time); t != "" {
			timeOfDay, err = temporal.EnsureHHMM(t)
			if err != nil {
				return nil, err
			}
		}
	case ModeToken:
		if req.When.DateToken == nil {
			return nil, errors.InvalidInput("when.date_token is required in TOKEN mode")
		}
		resolved, err = temporal.ResolveDate(anchor, *req.When.DateToken)
		if err != nil {
			return nil, err
		}
		timeOfDay, err = temporal.ResolveTime(anchor, req.When.TimeToken)
		if err != nil {
			return nil, err
		}
	}

	date := resolved.Format(temporal.DateLayout)

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = dedup.Fingerprint(content, date, timeOfDay)
	}
	if a.cache.CheckAndRecord(key, a.now()) {
		slog.Warn("Duplicate schedule request suppressed", "key", ShortKey(key), "date", date)
		return nil, &DuplicateError{Key: key, Date: date, Time: timeOfDay}
	}

	rec := Record{
		Date:      date,
		DayOfWeek: temporal.WeekdayLabel(resolved),
		Time:      timeOfDay,
		Content:   content,
		CreatedAt: a.now().UTC().Truncate(time.Second).Format(time.RFC3339),
	}

	id, err := a.store.Insert(ctx, rec)
	if err != nil {
		// The key is already recorded, so a blind caller retry inside the
		// window reports duplicate instead of double-writing.
		return nil, errors.Internal("schedule resolved but persistence failed: " + err.Error())
	}
	rec.ID = id

	total, err := a.store.Count(ctx)
	if err != nil {
		slog.Warn("Schedule count unavailable", "error", err)
		total = -1
	}

	slog.Info("Schedule saved", "id", id, "date", rec.Date, "day_of_week", rec.DayOfWeek, "time", rec.Time, "total", total)
	return &SaveResult{Record: rec, Total: total}, nil
}
