package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
)

func TestParseDateInputFormats(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	now := time.Date(2024, 6, 20, 14, 35, 10, 0, loc)

	tests := []struct {
		name string
		raw  string
	}{
		{"iso", "2024-01-15"},
		{"slash dmy", "15/01/2024"},
		{"dash dmy", "15-01-2024"},
		{"slash ymd", "2024/01/15"},
		{"dot dmy", "15.01.2024"},
		{"space dmy", "15 01 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateInput(tt.raw, now)
			require.NoError(t, err)
			assert.Equal(t, 2024, got.Year())
			assert.Equal(t, time.January, got.Month())
			assert.Equal(t, 15, got.Day())
			// Time of day comes from now, not midnight.
			assert.Equal(t, 14, got.Hour())
			assert.Equal(t, 35, got.Minute())
			assert.Equal(t, loc.String(), got.Location().String())
		})
	}
}

func TestParseDateInputAmbiguousPrefersISO(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

	// 2024-05-06 parses under the first layout, so May 6, not June 5.
	got, err := ParseDateInput("2024-05-06", now)
	require.NoError(t, err)
	assert.Equal(t, time.May, got.Month())
	assert.Equal(t, 6, got.Day())
}

func TestParseDateInputRejectsFuture(t *testing.T) {
	now := time.Date(2024, 6, 20, 23, 59, 0, 0, time.UTC)

	_, err := ParseDateInput("2024-06-21", now)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrFutureDate))
}

func TestParseDateInputAcceptsToday(t *testing.T) {
	now := time.Date(2024, 6, 20, 0, 30, 0, 0, time.UTC)

	got, err := ParseDateInput("2024-06-20", now)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Day())
}

func TestParseDateInputInvalid(t *testing.T) {
	now := time.Now()

	for _, raw := range []string{"", "   ", "not-a-date", "2024-13-45", "15th of January"} {
		_, err := ParseDateInput(raw, now)
		require.Error(t, err, "input %q", raw)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidDate) || appErrors.Is(err, appErrors.ErrFutureDate))
	}
}
