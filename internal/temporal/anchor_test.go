package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
}

func TestResolveAnchor_Formats(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-03-31T10:00:00Z", time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)},
		{"no zone", "2024-03-31T10:00:00", time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)},
		{"minutes only", "2024-03-31T10:00", time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)},
		{"space separator", "2024-03-31 10:00:00", time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)},
		{"date only", "2024-03-31", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveAnchor(tc.input, fixedNow)
			require.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
		})
	}
}

func TestResolveAnchor_StripsOffset(t *testing.T) {
	// The wall-clock reading is kept verbatim; the offset is discarded, not
	// converted.
	got := ResolveAnchor("2024-03-31T10:00:00+09:00", fixedNow)
	require.Equal(t, 10, got.Hour())
	require.Equal(t, time.UTC, got.Location())
}

func TestResolveAnchor_FallsBackOnGarbage(t *testing.T) {
	got := ResolveAnchor("next tuesday-ish", fixedNow)
	require.True(t, got.Equal(fixedNow()))
}

func TestResolveAnchor_FallsBackWhenEmpty(t *testing.T) {
	got := ResolveAnchor("", fixedNow)
	require.True(t, got.Equal(fixedNow()))
}
