package budget_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pennywise/internal/budget"
)

func TestMonthKey(t *testing.T) {
	type testCase struct {
		name string
		date time.Time
		want string
	}

	tests := []testCase{
		{
			name: "March",
			date: time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC),
			want: "March-2025",
		},
		{
			name: "LastInstantOfDecember",
			date: time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
			want: "December-2024",
		},
		{
			name: "FirstInstantOfJanuary",
			date: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: "January-2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, budget.MonthKey(tt.date))
		})
	}
}

func TestParseMonthKey(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		month, year, err := budget.ParseMonthKey("March-2025")

		require.NoError(t, err)
		assert.Equal(t, time.March, month)
		assert.Equal(t, 2025, year)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, key := range []string{"", "March", "03-2025", "Mars-2025", "March-twenty"} {
			_, _, err := budget.ParseMonthKey(key)
			assert.Error(t, err, key)
		}
	})
}
