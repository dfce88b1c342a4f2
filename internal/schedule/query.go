package schedule

import (
	"context"
	"strconv"
	"strings"
	"time"

	"agendum/internal/errors"
	"agendum/internal/temporal"
)

// Query intents.
const (
	IntentExists = "exists"
	IntentCount  = "count"
	IntentList   = "list"
)

// Range kinds.
const (
	RangeToday    = "TODAY"
	RangeTomorrow = "TOMORROW"
	RangeThisWeek = "THIS_WEEK"
	RangeNextWeek = "NEXT_WEEK"
	RangeFrom     = "FROM"
	RangeUntil    = "UNTIL"
	RangeBetween  = "BETWEEN"
)

const (
	openStart    = "0001-01-01"
	openEnd      = "9999-12-31"
	defaultLimit = 20
	maxLimit     = 100
)

// QueryRange selects the date window. Start and End accept "YYYY-MM-DD",
// "REL_DAYS:+N", or "WEEKDAY:<label>[:THIS|NEXT]".
type QueryRange struct {
	Kind  string `json:"kind"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// QueryRequest looks up stored schedules.
type QueryRequest struct {
	Intent    string              `json:"intent"`
	Topic     string              `json:"topic,omitempty"`
	Range     QueryRange          `json:"range"`
	Time      *temporal.TimeToken `json:"time,omitempty"`
	Limit     int                 `json:"limit,omitempty"`
	AnchorNow string              `json:"anchor_now,omitempty"`
}

// QueryResult carries the answer for whichever intent was asked.
type QueryResult struct {
	Intent string   `json:"intent"`
	Start  string   `json:"start"`
	End    string   `json:"end"`
	Exists bool     `json:"exists,omitempty"`
	Count  int64    `json:"count"`
	Items  []Record `json:"items,omitempty"`
}

// Searcher is the query-side persistence collaborator.
type Searcher interface {
	CountBetween(ctx context.Context, start, end, topic, timeOfDay string) (int64, error)
	ListBetween(ctx context.Context, start, end, topic, timeOfDay string, limit int) ([]Record, error)
}

// QueryService resolves a query range against the anchor machinery and runs
// the lookup.
type QueryService struct {
	store Searcher
	now   func() time.Time
}

func NewQueryService(store Searcher, now func() time.Time) *QueryService {
	if now == nil {
		now = time.Now
	}
	return &QueryService{store: store, now: now}
}

func (q *QueryService) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	intent := strings.ToLower(strings.TrimSpace(req.Intent))
	switch intent {
	case IntentExists, IntentCount, IntentList:
	default:
		return nil, errors.InvalidInput("intent must be exists, count or list")
	}

	anchor := temporal.ResolveAnchor(req.AnchorNow, q.now)

	start, end, err := resolveRange(anchor, req.Range)
	if err != nil {
		return nil, err
	}

	timeOfDay, err := resolveTimeFilter(req.Time)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Intent: intent, Start: start, End: end}
	switch intent {
	case IntentList:
		limit := req.Limit
		if limit <= 0 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		items, err := q.store.ListBetween(ctx, start, end, req.Topic, timeOfDay, limit)
		if err != nil {
			return nil, errors.Wrap(err, "list schedules")
		}
		result.Items = items
		result.Count = int64(len(items))
	default:
		count, err := q.store.CountBetween(ctx, start, end, req.Topic, timeOfDay)
		if err != nil {
			return nil, errors.Wrap(err, "count schedules")
		}
		result.Count = count
		result.Exists = count > 0
	}
	return result, nil
}

func resolveRange(anchor time.Time, r QueryRange) (string, string, error) {
	kind := strings.ToUpper(strings.TrimSpace(r.Kind))
	day := func(t time.Time) string { return t.Format(temporal.DateLayout) }

	switch kind {
	case RangeToday:
		return day(anchor), day(anchor), nil
	case RangeTomorrow:
		t := anchor.AddDate(0, 0, 1)
		return day(t), day(t), nil
	case RangeThisWeek:
		monday := temporal.StartOfWeek(anchor)
		return day(monday), day(monday.AddDate(0, 0, 6)), nil
	case RangeNextWeek:
		monday := temporal.StartOfWeek(anchor).AddDate(0, 0, 7)
		return day(monday), day(monday.AddDate(0, 0, 6)), nil
	case RangeFrom:
		start, err := resolveEndpoint(anchor, r.Start)
		if err != nil {
			return "", "", err
		}
		return start, openEnd, nil
	case RangeUntil:
		end, err := resolveEndpoint(anchor, r.End)
		if err != nil {
			return "", "", err
		}
		return openStart, end, nil
	case RangeBetween:
		start, err := resolveEndpoint(anchor, r.Start)
		if err != nil {
			return "", "", err
		}
		end, err := resolveEndpoint(anchor, r.End)
		if err != nil {
			return "", "", err
		}
		if start > end {
			start, end = end, start
		}
		return start, end, nil
	default:
		return "", "", errors.InvalidInputf("unknown range.kind: %s", r.Kind)
	}
}

// resolveEndpoint parses one range boundary. REL_DAYS offsets honor their
// sign here; querying into the past is legitimate, unlike save-side offsets.
func resolveEndpoint(anchor time.Time, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errors.InvalidInput("range endpoint is required")
	}

	if t, err := time.Parse(temporal.DateLayout, v); err == nil {
		return t.Format(temporal.DateLayout), nil
	}

	if rest, ok := strings.CutPrefix(v, "REL_DAYS:"); ok {
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "+"))
		if err != nil {
			return "", errors.InvalidInputf("invalid REL_DAYS offset: %s", rest)
		}
		return anchor.AddDate(0, 0, n).Format(temporal.DateLayout), nil
	}

	if rest, ok := strings.CutPrefix(v, "WEEKDAY:"); ok {
		label, week := rest, "THIS"
		if before, after, found := strings.Cut(rest, ":"); found {
			label, week = before, strings.ToUpper(strings.TrimSpace(after))
		}
		wd, err := temporal.ParseWeekday(label)
		if err != nil {
			return "", err
		}
		base := anchor
		switch week {
		case "THIS", "":
		case "NEXT":
			base = anchor.AddDate(0, 0, 7)
		default:
			return "", errors.InvalidInputf("invalid WEEKDAY qualifier: %s", week)
		}
		return temporal.StartOfWeek(base).AddDate(0, 0, wd).Format(temporal.DateLayout), nil
	}

	return "", errors.InvalidInputf("invalid range endpoint: %s", v)
}

func resolveTimeFilter(tok *temporal.TimeToken) (string, error) {
	if tok == nil {
		return "", nil
	}
	typ := strings.ToUpper(strings.TrimSpace(tok.Type))
	switch typ {
	case "":
		return "", nil
	case temporal.TimeTokenAbs, temporal.TimeTokenSlot:
		// Filters are exact clock matches, so the relative AFTER_N_HOUR
		// variant is not meaningful here.
		return temporal.ResolveTime(time.Time{}, tok)
	default:
		return "", errors.InvalidInputf("time filter must be ABS or SLOT, got %s", typ)
	}
}
