package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, userID, id uuid.UUID) (*Budget, error)
	ListBudgets(ctx context.Context, userID uuid.UUID) ([]*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	DeleteBudget(ctx context.Context, userID, id uuid.UUID) error

	// AddSpent atomically increments spent for the (user, category, month)
	// bucket and returns the updated record, or ErrNotFound when no budget
	// is configured for the bucket.
	AddSpent(ctx context.Context, userID uuid.UUID, category, month string, delta decimal.Decimal) (*Budget, error)
}

type Notifier interface {
	BudgetExceeded(ctx context.Context, userID uuid.UUID, category string)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// ApplyDelta adjusts the spent total of the matching budget by delta. A
// transaction in a category with no configured budget is a successful no-op.
// Every call that leaves the budget over its limit records another exceeded
// notification, not just the crossing one.
func (s *Service) ApplyDelta(ctx context.Context, userID uuid.UUID, category, month string, delta decimal.Decimal) error {
	b, err := s.repo.AddSpent(ctx, userID, category, month, delta)
	if errors.Is(err, ErrNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("applying budget delta: %w", err)
	}

	if b.Spent.GreaterThan(b.Limit) {
		s.notifier.BudgetExceeded(ctx, userID, b.Category)
	}

	return nil
}

type CreateParams struct {
	Category string
	Month    string
	Limit    decimal.Decimal
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Budget, error) {
	if params.Category == "" {
		return nil, errors.New("category is required")
	}

	if params.Limit.Sign() <= 0 {
		return nil, errors.New("limit must be positive")
	}

	if _, _, err := ParseMonthKey(params.Month); err != nil {
		return nil, err
	}

	b := &Budget{
		UserID:   userID,
		Category: params.Category,
		Month:    params.Month,
		Limit:    params.Limit,
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Budget, error) {
	return s.repo.GetBudget(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx, userID)
}

type UpdateParams struct {
	Category *string
	Month    *string
	Limit    *decimal.Decimal
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Category != nil {
		b.Category = *params.Category
	}

	if params.Month != nil {
		if _, _, err := ParseMonthKey(*params.Month); err != nil {
			return nil, err
		}

		b.Month = *params.Month
	}

	if params.Limit != nil {
		if params.Limit.Sign() <= 0 {
			return nil, errors.New("limit must be positive")
		}

		b.Limit = *params.Limit
	}

	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, userID, id)
}
