package transaction

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/budget"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	ListTransactions(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error)
}

// Accountant adjusts the spent total of the budget bucket matching an
// expense transaction.
type Accountant interface {
	ApplyDelta(ctx context.Context, userID uuid.UUID, category, month string, delta decimal.Decimal) error
}

// Allocator distributes an income amount across the user's savings goals.
type Allocator interface {
	AllocateIncome(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
}

// Service sequences every transaction mutation: ledger write first, then the
// kind-specific side effect with the signed delta. Side-effect failures after
// a successful ledger write are logged, not rolled back; the ledger is the
// durable record and cross-entity consistency is best-effort.
type Service struct {
	repo       Repository
	accountant Accountant
	allocator  Allocator
}

func NewService(repo Repository, accountant Accountant, allocator Allocator) *Service {
	return &Service{repo: repo, accountant: accountant, allocator: allocator}
}

type CreateParams struct {
	Kind     Kind
	Category string
	Amount   decimal.Decimal
	Notes    string
	Tags     []string
}

type ListFilter struct {
	Kind     *Kind
	Category *string
	Tag      *string
	From     *time.Time
	To       *time.Time
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Transaction, error) {
	if !params.Kind.Valid() {
		return nil, ErrInvalidKind
	}

	if params.Amount.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}

	tx := &Transaction{
		UserID:   userID,
		Kind:     params.Kind,
		Category: params.Category,
		Amount:   params.Amount,
		Date:     time.Now().UTC(),
		Notes:    params.Notes,
		Tags:     dedupeTags(params.Tags),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.applyEffect(ctx, tx, tx.Amount)

	return tx, nil
}

type UpdateParams struct {
	Kind     *Kind
	Category *string
	Amount   *decimal.Decimal
	Date     *time.Time
	Notes    *string
	Tags     []string
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	kindChanged := params.Kind != nil && *params.Kind != tx.Kind
	categoryChanged := params.Category != nil && *params.Category != tx.Category

	if kindChanged && categoryChanged && !tx.Amount.IsZero() {
		return nil, ErrKindCategoryChange
	}

	oldAmount := tx.Amount

	if params.Kind != nil {
		if !params.Kind.Valid() {
			return nil, ErrInvalidKind
		}

		tx.Kind = *params.Kind
	}

	if params.Category != nil {
		tx.Category = *params.Category
	}

	if params.Amount != nil {
		if params.Amount.Sign() <= 0 {
			return nil, ErrNonPositiveAmount
		}

		tx.Amount = *params.Amount
	}

	if params.Date != nil {
		tx.Date = *params.Date
	}

	if params.Notes != nil {
		tx.Notes = *params.Notes
	}

	if params.Tags != nil {
		tx.Tags = dedupeTags(params.Tags)
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	// The delta lands in the bucket of the updated category and date.
	s.applyEffect(ctx, tx, tx.Amount.Sub(oldAmount))

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.applyEffect(ctx, tx, tx.Amount.Neg())

	return nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, filter)
}

// AddTags appends the given tags to the transaction, ignoring duplicates.
func (s *Service) AddTags(ctx context.Context, userID, id uuid.UUID, tags []string) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	for _, tag := range dedupeTags(tags) {
		if !tx.HasTag(tag) {
			tx.Tags = append(tx.Tags, tag)
		}
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) RemoveTag(ctx context.Context, userID, id uuid.UUID, name string) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	kept := tx.Tags[:0]

	for _, tag := range tx.Tags {
		if tag != name {
			kept = append(kept, tag)
		}
	}

	tx.Tags = kept

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// applyEffect routes the signed amount delta to the side-effect engine for
// the transaction's kind: expenses adjust the matching budget bucket, income
// feeds the goal allocator. The allocator treats non-positive deltas as a
// no-op, so income reversal deliberately leaves goal savings untouched.
func (s *Service) applyEffect(ctx context.Context, tx *Transaction, delta decimal.Decimal) {
	var err error

	switch tx.Kind {
	case KindExpense:
		err = s.accountant.ApplyDelta(ctx, tx.UserID, tx.Category, budget.MonthKey(tx.Date), delta)
	case KindIncome:
		err = s.allocator.AllocateIncome(ctx, tx.UserID, delta)
	}

	if err != nil {
		slog.Error("transaction side effect failed",
			"transaction_id", tx.ID, "user_id", tx.UserID, "kind", tx.Kind, "error", err)
	}
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))

	var out []string

	for _, tag := range tags {
		if tag == "" {
			continue
		}

		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}

		out = append(out, tag)
	}

	return out
}
