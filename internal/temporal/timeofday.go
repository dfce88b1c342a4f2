package temporal

import (
	"encoding/json"
	"strings"
	"time"

	"agendum/internal/errors"
)

// Time token types.
const (
	TimeTokenAbs        = "ABS"
	TimeTokenSlot       = "SLOT"
	TimeTokenAfterNHour = "AFTER_N_HOUR"
)

// SlotTable maps named time-of-day slots to fixed clock times.
var SlotTable = map[string]string{
	"MORNING":   "09:00",
	"AFTERNOON": "15:00",
	"EVENING":   "19:00",
	"NIGHT":     "21:00",
}

// TimeToken is a structured time-of-day expression. Value is raw because the
// field doubles as an HH:MM literal for ABS and a numeric alias of n for
// AFTER_N_HOUR.
type TimeToken struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
	Slot  string          `json:"slot,omitempty"`
	N     *int            `json:"n,omitempty"`
}

func (t *TimeToken) valueString() string {
	if len(t.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(t.Value, &s); err != nil {
		return ""
	}
	return s
}

func (t *TimeToken) valueInt() *int {
	if len(t.Value) == 0 {
		return nil
	}
	var n int
	if err := json.Unmarshal(t.Value, &n); err != nil {
		return nil
	}
	return &n
}

// ResolveTime converts a time token into an HH:MM string, or "" when the
// token is absent. Time-of-day is optional for every schedule.
func ResolveTime(anchor time.Time, tok *TimeToken) (string, error) {
	if tok == nil {
		return "", nil
	}
	typ := strings.ToUpper(strings.TrimSpace(tok.Type))
	if typ == "" {
		return "", nil
	}

	switch typ {
	case TimeTokenAbs:
		return EnsureHHMM(tok.valueString())
	case TimeTokenSlot:
		slot := strings.ToUpper(strings.TrimSpace(tok.Slot))
		fixed, ok := SlotTable[slot]
		if !ok {
			return "", errors.InvalidInputf("unknown slot: %s", tok.Slot)
		}
		return fixed, nil
	case TimeTokenAfterNHour:
		n := absOffset(firstOf(tok.N, tok.valueInt()))
		// Only the clock face matters here; a wrap past midnight does not
		// move the resolved date.
		target := anchor.Add(time.Duration(n) * time.Hour)
		return target.Format(TimeLayout), nil
	default:
		return "", errors.InvalidInputf("unknown time_token.type: %s", typ)
	}
}

// EnsureHHMM validates an HH:MM literal and returns it zero-padded.
func EnsureHHMM(value string) (string, error) {
	parsed, err := time.Parse(TimeLayout, strings.TrimSpace(value))
	if err != nil {
		return "", errors.InvalidInputf("invalid time %q, expected HH:MM", value)
	}
	return parsed.Format(TimeLayout), nil
}
