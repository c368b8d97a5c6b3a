package budget

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("budget not found")
	ErrDuplicate = errors.New("budget already exists for this category and month")
)

// Budget caps spending for one (user, category, month) bucket. Spent tracks
// the net expense total for the bucket incrementally and is not clamped: it
// may go negative or exceed the limit.
type Budget struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Category  string
	Month     string
	Limit     decimal.Decimal
	Spent     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// MonthKey derives the "MonthName-Year" bucket key that joins a transaction
// date to a budget, e.g. "March-2025". Month names are the fixed English set
// regardless of locale.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%s-%d", t.Month(), t.Year())
}

// ParseMonthKey validates a bucket key and returns its month and year.
func ParseMonthKey(key string) (time.Month, int, error) {
	name, yearStr, found := strings.Cut(key, "-")
	if !found {
		return 0, 0, fmt.Errorf("invalid month key %q", key)
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in month key %q", key)
	}

	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, year, nil
		}
	}

	return 0, 0, fmt.Errorf("invalid month name in month key %q", key)
}
