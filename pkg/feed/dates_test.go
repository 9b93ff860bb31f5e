package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tbl := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc1123z", "Mon, 02 Jan 2006 15:04:05 -0700", time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))},
		{"rfc1123", "Mon, 02 Jan 2006 15:04:05 UTC", time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"rfc3339", "2006-01-02T15:04:05Z", time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"single digit day", "Mon, 2 Jan 2006 15:04:05 -0700", time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))},
		{"naive iso datetime assumed utc", "2006-01-02T15:04:05", time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"naive iso date assumed utc", "2006-01-02", time.Date(2006, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"padded input", "  2006-01-02T15:04:05Z  ", time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "32 Foo 2006", "12345"} {
		t.Run(in, func(t *testing.T) {
			_, ok := parseDate(in)
			assert.False(t, ok)
		})
	}
}
