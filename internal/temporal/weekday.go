package temporal

import (
	"strings"
	"time"

	"agendum/internal/errors"
)

// WeekdayKO holds the canonical weekday labels, indexed 0=Monday..6=Sunday.
var WeekdayKO = [7]string{"월", "화", "수", "목", "금", "토", "일"}

var weekdayEN = map[string]int{
	"MON": 0, "TUE": 1, "WED": 2, "THU": 3, "FRI": 4, "SAT": 5, "SUN": 6,
}

// WeekdayIndex converts Go's Sunday-based weekday to the Monday-based index.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayLabel returns the canonical label for the date's weekday.
func WeekdayLabel(t time.Time) string {
	return WeekdayKO[WeekdayIndex(t)]
}

// ParseWeekday accepts a single-character Korean label or an English
// three-letter abbreviation and returns the Monday-based index.
func ParseWeekday(label string) (int, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return 0, errors.InvalidInput("weekday is required")
	}
	for i, ko := range WeekdayKO {
		if trimmed == ko {
			return i, nil
		}
	}
	if idx, ok := weekdayEN[strings.ToUpper(trimmed)]; ok {
		return idx, nil
	}
	return 0, errors.InvalidInputf("unknown weekday: %s", trimmed)
}

// StartOfWeek returns the Monday of the week containing t, keeping the clock.
func StartOfWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -WeekdayIndex(t))
}
