// Package temporal resolves structured date and time expressions against a
// single naive reference timestamp. All arithmetic happens on one implicit
// timeline; the package never converts between zones.
package temporal

import (
	"log/slog"
	"strings"
	"time"
)

// DateLayout and TimeLayout are the wire formats for resolved values.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// anchorLayouts are the accepted ISO-8601 shapes for anchor_now, tried in order.
var anchorLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// ResolveAnchor produces the reference "now" for one resolution call. A
// parseable anchorNow wins, with any offset stripped: the wall-clock fields
// are kept verbatim. A parse failure is logged and treated as no anchor.
func ResolveAnchor(anchorNow string, now func() time.Time) time.Time {
	candidate := strings.TrimSpace(anchorNow)
	if candidate != "" {
		for _, layout := range anchorLayouts {
			t, err := time.Parse(layout, candidate)
			if err != nil {
				continue
			}
			return stripZone(t)
		}
		slog.Warn("anchor_now parse failed, falling back to current time", "value", candidate)
	}
	return now().UTC()
}

// stripZone keeps the wall-clock reading and discards the offset.
func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
