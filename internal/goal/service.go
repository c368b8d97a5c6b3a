package goal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=goal
type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, userID, id uuid.UUID) (*Goal, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]*Goal, error)

	// ListInProgress returns the user's in-progress goals ordered by
	// priority descending, ties broken by creation time ascending.
	ListInProgress(ctx context.Context, userID uuid.UUID) ([]*Goal, error)

	UpdateGoal(ctx context.Context, g *Goal) error
	DeleteGoal(ctx context.Context, userID, id uuid.UUID) error

	// AddSaved atomically increments the saved amount, flips the status to
	// achieved when the target is reached, and returns the updated record.
	AddSaved(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*Goal, error)

	// ExpireOverdue flips in-progress goals whose deadline has passed to
	// expired and returns the goals it flipped.
	ExpireOverdue(ctx context.Context, now time.Time) ([]*Goal, error)
}

type Notifier interface {
	GoalAchieved(ctx context.Context, userID uuid.UUID, title string)
	GoalExpired(ctx context.Context, userID uuid.UUID, title string)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// AllocateIncome splits an income amount across the user's in-progress goals,
// weighted by priority. Each goal's share is fixed against the total priority
// at the start of the pass and clamped to its remaining headroom; amounts a
// capped goal cannot absorb are not redistributed. Non-positive amounts are a
// no-op, so reversing an income transaction never claws back goal savings.
func (s *Service) AllocateIncome(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return nil
	}

	goals, err := s.repo.ListInProgress(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing goals: %w", err)
	}

	if len(goals) == 0 {
		return nil
	}

	totalPriority := decimal.Zero
	for _, g := range goals {
		totalPriority = totalPriority.Add(decimal.NewFromInt(int64(g.Priority)))
	}

	remaining := amount

	for _, g := range goals {
		if remaining.Sign() <= 0 {
			break
		}

		share := amount.Mul(decimal.NewFromInt(int64(g.Priority))).Div(totalPriority)

		headroom := g.TargetAmount.Sub(g.SavedAmount)
		if headroom.Sign() < 0 {
			headroom = decimal.Zero
		}

		applied := decimal.Min(share, headroom)

		updated, err := s.repo.AddSaved(ctx, g.ID, applied)
		if err != nil {
			return fmt.Errorf("saving goal %s: %w", g.ID, err)
		}

		if updated.Status == StatusAchieved && g.Status != StatusAchieved {
			s.notifier.GoalAchieved(ctx, userID, g.Title)
		}

		remaining = remaining.Sub(applied)
	}

	return nil
}

// ExpireOverdue sweeps goals past their deadline and notifies each owner.
func (s *Service) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expiring goals: %w", err)
	}

	for _, g := range expired {
		s.notifier.GoalExpired(ctx, g.UserID, g.Title)
	}

	if len(expired) > 0 {
		slog.Info("expired overdue goals", "count", len(expired))
	}

	return len(expired), nil
}

type CreateParams struct {
	Title        string
	TargetAmount decimal.Decimal
	SavedAmount  *decimal.Decimal
	Deadline     time.Time
	Priority     *int
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Goal, error) {
	if params.Title == "" {
		return nil, errors.New("title is required")
	}

	if params.TargetAmount.Sign() <= 0 {
		return nil, errors.New("target amount must be positive")
	}

	if params.Deadline.IsZero() {
		return nil, errors.New("deadline is required")
	}

	if params.Priority != nil && !validPriority(*params.Priority) {
		return nil, ErrPriorityRange
	}

	g := &Goal{
		UserID:       userID,
		Title:        params.Title,
		TargetAmount: params.TargetAmount,
		// New goals start with one unit saved rather than zero.
		SavedAmount: decimal.NewFromInt(1),
		Deadline:    params.Deadline,
		Priority:    MinPriority,
		Status:      StatusInProgress,
	}

	if params.SavedAmount != nil {
		g.SavedAmount = *params.SavedAmount
	}

	if params.Priority != nil {
		g.Priority = *params.Priority
	}

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	return s.repo.GetGoal(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Goal, error) {
	return s.repo.ListGoals(ctx, userID)
}

type UpdateParams struct {
	Title        *string
	TargetAmount *decimal.Decimal
	Deadline     *time.Time
	Priority     *int

	// SavedDelta is added to the current saved amount.
	SavedDelta *decimal.Decimal
}

// Update merges the given fields over the goal and re-evaluates its status:
// reaching the target marks it achieved (with a notification), and a past
// deadline marks an unachieved goal expired.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Goal, error) {
	g, err := s.repo.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Priority != nil {
		if !validPriority(*params.Priority) {
			return nil, ErrPriorityRange
		}

		g.Priority = *params.Priority
	}

	if params.Title != nil {
		g.Title = *params.Title
	}

	if params.TargetAmount != nil {
		if params.TargetAmount.Sign() <= 0 {
			return nil, errors.New("target amount must be positive")
		}

		g.TargetAmount = *params.TargetAmount
	}

	if params.Deadline != nil {
		g.Deadline = *params.Deadline
	}

	if params.SavedDelta != nil {
		g.SavedAmount = g.SavedAmount.Add(*params.SavedDelta)
	}

	wasAchieved := g.Status == StatusAchieved

	if g.SavedAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = StatusAchieved
	}

	if g.Deadline.Before(time.Now()) && g.Status != StatusAchieved {
		g.Status = StatusExpired
	}

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}

	if g.Status == StatusAchieved && !wasAchieved {
		s.notifier.GoalAchieved(ctx, userID, g.Title)
	}

	return g, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteGoal(ctx, userID, id)
}

// Progress reports how far along a goal is, as a percentage of its target
// rounded to two decimal places.
func (s *Service) Progress(ctx context.Context, userID, id uuid.UUID) (decimal.Decimal, *Goal, error) {
	g, err := s.repo.GetGoal(ctx, userID, id)
	if err != nil {
		return decimal.Zero, nil, err
	}

	progress := g.SavedAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)

	return progress, g, nil
}
