package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("transaction not found")

	// ErrKindCategoryChange rejects updates that change both the kind and
	// the category of an already-accounted transaction in one request;
	// funds would silently move between buckets with no audit trail.
	ErrKindCategoryChange = errors.New("cannot change kind and category in the same update")

	ErrInvalidKind       = errors.New("kind must be income or expense")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Kind classifies a transaction. Amounts are always stored positive; the
// accounting sign is derived from the kind.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is one ledger entry owned by a user.
type Transaction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      Kind
	Category  string
	Amount    decimal.Decimal
	Date      time.Time
	Notes     string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// HasTag reports whether the transaction carries the named tag.
func (t *Transaction) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}

	return false
}
