package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utc8 = FixedZone(8)

func TestDayWindow(t *testing.T) {
	start, end, err := DayWindow("2025-03-10", time.Time{}, utc8)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC), end)
}

func TestDayWindowDefaultsToToday(t *testing.T) {
	// UTC 17:00 在 UTC+8 已是隔天
	now := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	start, end, err := DayWindow(" ", now, utc8)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestDayWindowInvalid(t *testing.T) {
	for _, date := range []string{"2025/03/10", "2025-13-01", "today"} {
		_, _, err := DayWindow(date, time.Now(), utc8)
		assert.ErrorIs(t, err, ErrInvalidDate, date)
	}
}

func TestParseSubmitTime(t *testing.T) {
	want := time.Date(2025, 3, 10, 1, 30, 0, 0, time.UTC)
	for _, value := range []string{
		"2025-03-10 09:30:00",
		"2025/03/10 09:30:00",
		"2025-03-10T09:30:00",
		"2025-03-10 09:30",
		"2025-03-10T01:30:00Z",
		"2025-03-10T09:30:00+08:00",
	} {
		got, err := ParseSubmitTime(value, utc8)
		require.NoError(t, err, value)
		assert.Equal(t, want, got, value)
	}

	_, err := ParseSubmitTime("10 March", utc8)
	assert.Error(t, err)
}

func TestFormatLocal(t *testing.T) {
	assert.Equal(t, "2025-03-11 00:05:00", FormatLocal(time.Date(2025, 3, 10, 16, 5, 0, 0, time.UTC), utc8))
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 2, Limit: 50, Total: 101, TotalPages: 3}, NewPagination(2, 50, 101))
	assert.Equal(t, 0, NewPagination(1, 50, 0).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 10).TotalPages)
}
