package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendum/internal/dedup"
	apperrors "agendum/internal/errors"
	"agendum/internal/temporal"
)

type fakeStore struct {
	records   []Record
	insertErr error
	countErr  error
}

func (f *fakeStore) Insert(_ context.Context, rec Record) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.records = append(f.records, rec)
	return int64(len(f.records)), nil
}

func (f *fakeStore) Count(_ context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.records)), nil
}

// clock is a manually advanced time source.
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestAssembler(ttl time.Duration) (*Assembler, *fakeStore, *clock) {
	st := &fakeStore{}
	clk := &clock{t: time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)}
	return NewAssembler(st, dedup.NewCache(ttl), clk.now), st, clk
}

func tokenRequest(content string) SaveRequest {
	return SaveRequest{
		Content:   content,
		AnchorNow: "2024-03-31T10:00:00",
		When: When{
			Mode:      ModeToken,
			DateToken: &temporal.DateToken{Type: temporal.TokenNextMonth, Day: 31},
			TimeToken: &temporal.TimeToken{Type: temporal.TimeTokenSlot, Slot: "AFTERNOON"},
		},
	}
}

func TestSave_TokenResolution(t *testing.T) {
	asm, st, _ := newTestAssembler(0)

	res, err := asm.Save(context.Background(), tokenRequest("dentist appointment"))
	require.NoError(t, err)

	// 2024-03-31 anchor, NEXT_MONTH day 31 clamps to April's last day.
	assert.Equal(t, "2024-04-30", res.Record.Date)
	assert.Equal(t, "화", res.Record.DayOfWeek)
	assert.Equal(t, "15:00", res.Record.Time)
	assert.Equal(t, "dentist appointment", res.Record.Content)
	assert.Equal(t, "2024-03-31T10:00:00Z", res.Record.CreatedAt)
	assert.Equal(t, int64(1), res.Record.ID)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, st.records, 1)
}

func TestSave_AbsoluteMode(t *testing.T) {
	asm, _, _ := newTestAssembler(0)

	res, err := asm.Save(context.Background(), SaveRequest{
		Content: "standup",
		When:    When{Mode: ModeAbsolute, Date: "2024-04-01", Time: "9:30"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", res.Record.Date)
	assert.Equal(t, "월", res.Record.DayOfWeek)
	assert.Equal(t, "09:30", res.Record.Time, "times are zero-padded on the way in")
}

func TestSave_AbsoluteModeNoTime(t *testing.T) {
	asm, _, _ := newTestAssembler(0)

	res, err := asm.Save(context.Background(), SaveRequest{
		Content: "all-day offsite",
		When:    When{Mode: ModeAbsolute, Date: "2024-04-05"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Record.Time)
}

func TestSave_DuplicateWithinWindow(t *testing.T) {
	asm, st, clk := newTestAssembler(90 * time.Second)

	_, err := asm.Save(context.Background(), tokenRequest("dentist appointment"))
	require.NoError(t, err)

	clk.advance(30 * time.Second)
	_, err = asm.Save(context.Background(), tokenRequest("dentist appointment"))
	require.Error(t, err)

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "2024-04-30", dup.Date)
	assert.Equal(t, "15:00", dup.Time)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Len(t, st.records, 1, "duplicate must not reach the store")
}

func TestSave_AcceptsAgainAfterWindow(t *testing.T) {
	asm, st, clk := newTestAssembler(90 * time.Second)

	_, err := asm.Save(context.Background(), tokenRequest("dentist appointment"))
	require.NoError(t, err)

	clk.advance(2 * time.Minute)
	_, err = asm.Save(context.Background(), tokenRequest("dentist appointment"))
	require.NoError(t, err)
	assert.Len(t, st.records, 2)
}

func TestSave_IdempotencyKeyOverridesFingerprint(t *testing.T) {
	asm, st, _ := newTestAssembler(90 * time.Second)

	first := tokenRequest("book flights")
	first.IdempotencyKey = "req-42"
	_, err := asm.Save(context.Background(), first)
	require.NoError(t, err)

	// Different content, same caller-supplied key: still a duplicate.
	second := tokenRequest("completely different content")
	second.IdempotencyKey = "req-42"
	_, err = asm.Save(context.Background(), second)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Len(t, st.records, 1)
}

func TestSave_ValidationErrors(t *testing.T) {
	asm, _, _ := newTestAssembler(0)

	cases := []struct {
		name string
		req  SaveRequest
	}{
		{"empty content", SaveRequest{Content: "   ", When: When{Mode: ModeToken, DateToken: &temporal.DateToken{Type: temporal.TokenThisMonth}}}},
		{"bad mode", SaveRequest{Content: "x", When: When{Mode: "SOMEDAY"}}},
		{"token mode without date token", SaveRequest{Content: "x", When: When{Mode: ModeToken}}},
		{"absolute mode without date", SaveRequest{Content: "x", When: When{Mode: ModeAbsolute}}},
		{"absolute mode with malformed date", SaveRequest{Content: "x", When: When{Mode: ModeAbsolute, Date: "04/01/2024"}}},
		{"absolute mode with malformed time", SaveRequest{Content: "x", When: When{Mode: ModeAbsolute, Date: "2024-04-01", Time: "25:99"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := asm.Save(context.Background(), tc.req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestSave_ModeIsCaseInsensitive(t *testing.T) {
	asm, _, _ := newTestAssembler(0)

	_, err := asm.Save(context.Background(), SaveRequest{
		Content: "x",
		When:    When{Mode: "absolute", Date: "2024-04-01"},
	})
	require.NoError(t, err)
}

func TestSave_PersistenceFailureKeepsKeyRecorded(t *testing.T) {
	asm, st, _ := newTestAssembler(90 * time.Second)
	st.insertErr = errors.New("disk full")

	_, err := asm.Save(context.Background(), tokenRequest("dentist appointment"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	// A blind retry inside the window is reported as duplicate, not re-resolved.
	st.insertErr = nil
	_, err = asm.Save(context.Background(), tokenRequest("dentist appointment"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Empty(t, st.records)
}

func TestSave_CountFailureDegradesTotal(t *testing.T) {
	asm, st, _ := newTestAssembler(0)
	st.countErr = errors.New("count query timed out")

	res, err := asm.Save(context.Background(), tokenRequest("dentist appointment"))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), res.Total)
	assert.NotZero(t, res.Record.ID)
}

func TestSave_DistinctContentNotDeduped(t *testing.T) {
	asm, st, _ := newTestAssembler(90 * time.Second)

	for i := 0; i < 3; i++ {
		_, err := asm.Save(context.Background(), tokenRequest(fmt.Sprintf("task %d", i)))
		require.NoError(t, err)
	}
	assert.Len(t, st.records, 3)
}
