package schedule

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "agendum/internal/errors"
	"agendum/internal/temporal"
)

type fakeSearcher struct {
	count   int64
	items   []Record
	lastArg struct {
		start, end, topic, timeOfDay string
		limit                        int
	}
}

func (f *fakeSearcher) CountBetween(_ context.Context, start, end, topic, timeOfDay string) (int64, error) {
	f.lastArg.start, f.lastArg.end, f.lastArg.topic, f.lastArg.timeOfDay = start, end, topic, timeOfDay
	return f.count, nil
}

func (f *fakeSearcher) ListBetween(_ context.Context, start, end, topic, timeOfDay string, limit int) ([]Record, error) {
	f.lastArg.start, f.lastArg.end, f.lastArg.topic, f.lastArg.timeOfDay = start, end, topic, timeOfDay
	f.lastArg.limit = limit
	return f.items, nil
}

// Sunday. The Monday-based week runs 2024-03-25 through 2024-03-31.
func sundayAnchor() time.Time {
	return time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
}

func newTestQueryService() (*QueryService, *fakeSearcher) {
	st := &fakeSearcher{}
	return NewQueryService(st, sundayAnchor), st
}

func TestQuery_RangeKinds(t *testing.T) {
	cases := []struct {
		name       string
		rng        QueryRange
		start, end string
	}{
		{"today", QueryRange{Kind: RangeToday}, "2024-03-31", "2024-03-31"},
		{"tomorrow", QueryRange{Kind: RangeTomorrow}, "2024-04-01", "2024-04-01"},
		{"this week", QueryRange{Kind: RangeThisWeek}, "2024-03-25", "2024-03-31"},
		{"next week", QueryRange{Kind: RangeNextWeek}, "2024-04-01", "2024-04-07"},
		{"from", QueryRange{Kind: RangeFrom, Start: "2024-04-10"}, "2024-04-10", "9999-12-31"},
		{"until", QueryRange{Kind: RangeUntil, End: "2024-04-10"}, "0001-01-01", "2024-04-10"},
		{"between", QueryRange{Kind: RangeBetween, Start: "2024-04-01", End: "2024-04-10"}, "2024-04-01", "2024-04-10"},
		{"between reversed endpoints swap", QueryRange{Kind: RangeBetween, Start: "2024-04-10", End: "2024-04-01"}, "2024-04-01", "2024-04-10"},
		{"lowercase kind", QueryRange{Kind: "today"}, "2024-03-31", "2024-03-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, st := newTestQueryService()
			res, err := svc.Query(context.Background(), QueryRequest{Intent: IntentCount, Range: tc.rng})
			require.NoError(t, err)
			assert.Equal(t, tc.start, res.Start)
			assert.Equal(t, tc.end, res.End)
			assert.Equal(t, tc.start, st.lastArg.start)
			assert.Equal(t, tc.end, st.lastArg.end)
		})
	}
}

func TestQuery_EndpointGrammar(t *testing.T) {
	cases := []struct {
		name  string
		start string
		want  string
	}{
		{"literal date", "2024-05-01", "2024-05-01"},
		{"rel days plus", "REL_DAYS:+3", "2024-04-03"},
		{"rel days bare", "REL_DAYS:3", "2024-04-03"},
		{"rel days negative", "REL_DAYS:-1", "2024-03-30"},
		{"rel days zero", "REL_DAYS:0", "2024-03-31"},
		{"weekday this week", "WEEKDAY:수", "2024-03-27"},
		{"weekday next week", "WEEKDAY:수:NEXT", "2024-04-03"},
		{"weekday english label", "WEEKDAY:WED:NEXT", "2024-04-03"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestQueryService()
			res, err := svc.Query(context.Background(), QueryRequest{
				Intent: IntentCount,
				Range:  QueryRange{Kind: RangeFrom, Start: tc.start},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Start)
		})
	}
}

func TestQuery_EndpointErrors(t *testing.T) {
	cases := []struct {
		name  string
		start string
	}{
		{"empty", ""},
		{"gibberish", "someday"},
		{"rel days non-numeric", "REL_DAYS:soon"},
		{"weekday unknown label", "WEEKDAY:FUNDAY"},
		{"weekday bad qualifier", "WEEKDAY:수:LAST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestQueryService()
			_, err := svc.Query(context.Background(), QueryRequest{
				Intent: IntentCount,
				Range:  QueryRange{Kind: RangeFrom, Start: tc.start},
			})
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestQuery_Intents(t *testing.T) {
	t.Run("exists true when count positive", func(t *testing.T) {
		svc, st := newTestQueryService()
		st.count = 2
		res, err := svc.Query(context.Background(), QueryRequest{Intent: "EXISTS", Range: QueryRange{Kind: RangeToday}})
		require.NoError(t, err)
		assert.True(t, res.Exists)
		assert.Equal(t, int64(2), res.Count)
	})

	t.Run("exists false when empty", func(t *testing.T) {
		svc, _ := newTestQueryService()
		res, err := svc.Query(context.Background(), QueryRequest{Intent: IntentExists, Range: QueryRange{Kind: RangeToday}})
		require.NoError(t, err)
		assert.False(t, res.Exists)
	})

	t.Run("list returns items and count", func(t *testing.T) {
		svc, st := newTestQueryService()
		st.items = []Record{{ID: 1, Date: "2024-03-31", Content: "brunch"}}
		res, err := svc.Query(context.Background(), QueryRequest{Intent: IntentList, Range: QueryRange{Kind: RangeToday}})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, int64(1), res.Count)
		assert.Equal(t, defaultLimit, st.lastArg.limit)
	})

	t.Run("list clamps limit", func(t *testing.T) {
		svc, st := newTestQueryService()
		_, err := svc.Query(context.Background(), QueryRequest{Intent: IntentList, Range: QueryRange{Kind: RangeToday}, Limit: 10_000})
		require.NoError(t, err)
		assert.Equal(t, maxLimit, st.lastArg.limit)
	})

	t.Run("unknown intent rejected", func(t *testing.T) {
		svc, _ := newTestQueryService()
		_, err := svc.Query(context.Background(), QueryRequest{Intent: "delete", Range: QueryRange{Kind: RangeToday}})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown range kind rejected", func(t *testing.T) {
		svc, _ := newTestQueryService()
		_, err := svc.Query(context.Background(), QueryRequest{Intent: IntentCount, Range: QueryRange{Kind: "FORTNIGHT"}})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestQuery_TimeFilter(t *testing.T) {
	t.Run("slot resolves to clock time", func(t *testing.T) {
		svc, st := newTestQueryService()
		_, err := svc.Query(context.Background(), QueryRequest{
			Intent: IntentCount,
			Range:  QueryRange{Kind: RangeToday},
			Time:   &temporal.TimeToken{Type: temporal.TimeTokenSlot, Slot: "MORNING"},
		})
		require.NoError(t, err)
		assert.Equal(t, "09:00", st.lastArg.timeOfDay)
	})

	t.Run("abs passes normalized value", func(t *testing.T) {
		svc, st := newTestQueryService()
		raw, _ := json.Marshal("9:30")
		_, err := svc.Query(context.Background(), QueryRequest{
			Intent: IntentCount,
			Range:  QueryRange{Kind: RangeToday},
			Time:   &temporal.TimeToken{Type: temporal.TimeTokenAbs, Value: raw},
		})
		require.NoError(t, err)
		assert.Equal(t, "09:30", st.lastArg.timeOfDay)
	})

	t.Run("relative filter rejected", func(t *testing.T) {
		svc, _ := newTestQueryService()
		_, err := svc.Query(context.Background(), QueryRequest{
			Intent: IntentCount,
			Range:  QueryRange{Kind: RangeToday},
			Time:   &temporal.TimeToken{Type: temporal.TimeTokenAfterNHour},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("topic passes through", func(t *testing.T) {
		svc, st := newTestQueryService()
		_, err := svc.Query(context.Background(), QueryRequest{
			Intent: IntentCount,
			Topic:  "dentist",
			Range:  QueryRange{Kind: RangeToday},
		})
		require.NoError(t, err)
		assert.Equal(t, "dentist", st.lastArg.topic)
	})
}
