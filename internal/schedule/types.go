// Package schedule turns loosely-specified "when" requests into concrete
// calendar entries and guards against duplicate persistence of the same
// logical event.
package schedule

import (
	"context"
	"fmt"

	"agendum/internal/errors"
	"agendum/internal/temporal"
)

// When modes.
const (
	ModeAbsolute = "ABSOLUTE"
	ModeToken    = "TOKEN"
)

// When selects between literal date/time strings and structured tokens.
type When struct {
	Mode      string              `json:"mode"`
	Date      string              `json:"date,omitempty"`
	Time      string              `json:"time,omitempty"`
	DateToken *temporal.DateToken `json:"date_token,omitempty"`
	TimeToken *temporal.TimeToken `json:"time_token,omitempty"`
}

// SaveRequest is the structured request an upstream agent submits.
type SaveRequest struct {
	Content        string `json:"content"`
	When           When   `json:"when"`
	AnchorNow      string `json:"anchor_now,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Record is a fully resolved schedule entry. It is never mutated after the
// assembler creates it.
type Record struct {
	ID        int64  `json:"id,omitempty"`
	Date      string `json:"date"`
	DayOfWeek string `json:"day_of_week"`
	Time      string `json:"time,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// SaveResult reports an accepted write: the persisted identifier and the
// running total both come from the persistence collaborator.
type SaveResult struct {
	Record Record
	Total  int64
}

// Persister is the external persistence collaborator. Its failures are not
// this core's concern beyond surfacing them.
type Persister interface {
	Insert(ctx context.Context, rec Record) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// DuplicateError reports a rejected repeat request. It carries the resolved
// values so the caller can present "already recorded" instead of a failure.
type DuplicateError struct {
	Key  string
	Date string
	Time string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate request within dedup window: key=%s date=%s", ShortKey(e.Key), e.Date)
}

func (e *DuplicateError) Unwrap() error {
	return errors.ErrDuplicate
}

// ShortKey truncates a dedup key for display.
func ShortKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}
