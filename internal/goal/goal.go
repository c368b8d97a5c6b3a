package goal

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("goal not found")
	ErrPriorityRange = errors.New("priority must be between 1 and 5")
)

const (
	MinPriority = 1
	MaxPriority = 5
)

// Status is the lifecycle state of a goal. Achieved is terminal: a goal that
// reached its target is never demoted by a later deadline expiry.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusAchieved   Status = "achieved"
	StatusExpired    Status = "expired"
)

// Goal is a savings target competing for income allocations by priority.
type Goal struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
	Deadline     time.Time
	Priority     int
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func validPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}
