package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestYesterday(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-06-02", "2025-06-01"},
		{"2025-06-01", "2025-05-31"},
		{"2025-01-01", "2024-12-31"},
		{"2024-03-01", "2024-02-29"}, // leap year
		{"garbage", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Yesterday(tt.date), "date %q", tt.date)
	}
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2025-06", MonthOf("2025-06-15"))
	assert.Equal(t, "", MonthOf("bad"))
}

func TestFormatDateAndMonth(t *testing.T) {
	ts := time.Date(2025, 6, 2, 23, 15, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-02", FormatDate(ts))
	assert.Equal(t, "2025-06", FormatMonth(ts))
}

func TestDateStringsSortLexicographically(t *testing.T) {
	// Streak comparisons rely on string order matching date order.
	assert.True(t, "2025-05-31" < "2025-06-01")
	assert.True(t, "2024-12-31" < "2025-01-01")
	assert.True(t, Yesterday("2025-06-02") < "2025-06-02")
}
