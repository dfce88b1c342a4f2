package temporal

import (
	"strings"
	"time"

	"agendum/internal/errors"
)

// Date token types.
const (
	TokenThisMonth         = "THIS_MONTH"
	TokenNextMonth         = "NEXT_MONTH"
	TokenSameMonthData     = "SAME_MONTH_DATA"
	TokenAfterNDay         = "AFTER_N_DAY"
	TokenThisWeek          = "THIS_WEEK"
	TokenNextWeek          = "NEXT_WEEK"
	TokenAfterNWeek        = "AFTER_N_WEEK"
	TokenWeekdayOf         = "WEEKDAY_OF"
	TokenNthWeekdayOfMonth = "NTH_WEEKDAY_OF_MONTH"
	TokenEndOfMonth        = "END_OF_MONTH"
	TokenBeginOfMonth      = "BEGIN_OF_MONTH"
)

// DateToken is a structured date expression relative to an anchor.
// N and Value are aliases; upstream agents routinely confuse the two, so the
// first non-zero of the pair wins.
type DateToken struct {
	Type    string `json:"type"`
	Day     int    `json:"day,omitempty"`
	N       *int   `json:"n,omitempty"`
	Value   *int   `json:"value,omitempty"`
	Weekday string `json:"weekday,omitempty"`
	Anchor  string `json:"anchor,omitempty"`
}

// ResolveDate converts a date token into a concrete date relative to anchor.
// The returned time keeps the anchor's clock; only the calendar date is
// significant to callers.
func ResolveDate(anchor time.Time, tok DateToken) (time.Time, error) {
	typ := strings.ToUpper(strings.TrimSpace(tok.Type))
	if typ == "" {
		return time.Time{}, errors.InvalidInput("date_token.type is required")
	}

	switch typ {
	case TokenThisMonth:
		day := anchor.Day()
		// An out-of-range day override is ignored, not rejected. See the
		// clamp policy note below.
		if tok.Day >= 1 && tok.Day <= daysInMonth(anchor.Year(), anchor.Month()) {
			day = tok.Day
		}
		return withDay(anchor, day), nil

	case TokenNextMonth:
		y, m := nextMonth(anchor.Year(), anchor.Month())
		day := anchor.Day()
		if tok.Day != 0 {
			if tok.Day < 1 {
				return time.Time{}, errors.InvalidInputf("date_token.day %d is not a calendar day", tok.Day)
			}
			day = tok.Day
		}
		if max := daysInMonth(y, m); day > max {
			day = max
		}
		return time.Date(y, m, day, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC), nil

	case TokenSameMonthData:
		if tok.Day == 0 {
			return time.Time{}, errors.InvalidInput("date_token.day is required")
		}
		if tok.Day < 1 || tok.Day > daysInMonth(anchor.Year(), anchor.Month()) {
			return time.Time{}, errors.InvalidInputf("date_token.day %d is out of range for %s", tok.Day, anchor.Format("2006-01"))
		}
		return withDay(anchor, tok.Day), nil

	case TokenAfterNDay:
		return anchor.AddDate(0, 0, absOffset(firstOf(tok.N, tok.Value))), nil

	case TokenThisWeek, TokenNextWeek, TokenAfterNWeek:
		base, err := weekAnchor(anchor, typ, tok.N)
		if err != nil {
			return time.Time{}, err
		}
		if strings.TrimSpace(tok.Weekday) == "" {
			return base, nil
		}
		wd, err := ParseWeekday(tok.Weekday)
		if err != nil {
			return time.Time{}, err
		}
		return StartOfWeek(base).AddDate(0, 0, wd), nil

	case TokenWeekdayOf:
		wd, err := ParseWeekday(tok.Weekday)
		if err != nil {
			return time.Time{}, err
		}
		base, err := weekAnchor(anchor, strings.ToUpper(strings.TrimSpace(tok.Anchor)), tok.N)
		if err != nil {
			return time.Time{}, err
		}
		return StartOfWeek(base).AddDate(0, 0, wd), nil

	case TokenNthWeekdayOfMonth:
		n := firstOf(tok.N, tok.Value)
		if n == 0 {
			return time.Time{}, errors.InvalidInput("date_token.n is required")
		}
		if n < 1 {
			return time.Time{}, errors.InvalidInputf("date_token.n %d is not a valid occurrence", n)
		}
		wd, err := ParseWeekday(tok.Weekday)
		if err != nil {
			return time.Time{}, err
		}
		y, m := anchor.Year(), anchor.Month()
		if strings.ToUpper(strings.TrimSpace(tok.Anchor)) == TokenNextMonth {
			y, m = nextMonth(y, m)
		}
		first := time.Date(y, m, 1, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
		day := 1 + (wd-WeekdayIndex(first)+7)%7 + (n-1)*7
		if day > daysInMonth(y, m) {
			// Unlike the month-day overflow above, a missing n-th occurrence
			// is never clamped.
			return time.Time{}, errors.InvalidInputf("%d-th %s does not exist in %04d-%02d", n, tok.Weekday, y, int(m))
		}
		return time.Date(y, m, day, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC), nil

	case TokenEndOfMonth:
		return withDay(anchor, daysInMonth(anchor.Year(), anchor.Month())), nil

	case TokenBeginOfMonth:
		return withDay(anchor, 1), nil

	default:
		return time.Time{}, errors.InvalidInputf("unknown date_token.type: %s", typ)
	}
}

// weekAnchor moves the anchor to the start date of the requested week.
// AFTER_N_WEEK defaults n to 1 when the field is absent.
func weekAnchor(base time.Time, kind string, n *int) (time.Time, error) {
	switch kind {
	case "", TokenThisWeek:
		return base, nil
	case TokenNextWeek:
		return base.AddDate(0, 0, 7), nil
	case TokenAfterNWeek:
		weeks := 1
		if n != nil {
			weeks = absOffset(*n)
		}
		return base.AddDate(0, 0, 7*weeks), nil
	default:
		return time.Time{}, errors.InvalidInputf("unknown anchor: %s", kind)
	}
}

// Clamp policy: numeric offsets from upstream agents arrive with stray minus
// signs often enough that AFTER_N_DAY, AFTER_N_WEEK and AFTER_N_HOUR all use
// the absolute value of n. This is a fixed contract, not past-dating support.
func absOffset(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// firstOf returns the first non-zero of the n/value alias pair.
func firstOf(n, value *int) int {
	if n != nil && *n != 0 {
		return *n
	}
	if value != nil && *value != 0 {
		return *value
	}
	return 0
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func withDay(t time.Time, day int) time.Time {
	return time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
