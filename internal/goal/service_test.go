package goal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pennywise/internal/goal"
)

func decEq(v string) gomock.Matcher {
	want := decimal.RequireFromString(v)

	return gomock.Cond(func(got decimal.Decimal) bool { return got.Equal(want) })
}

func TestService_AllocateIncome(t *testing.T) {
	userID := uuid.New()

	t.Run("SplitsByPriorityWeight", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)
		notifier := goal.NewMockNotifier(ctrl)

		vacation := &goal.Goal{
			ID:           uuid.New(),
			UserID:       userID,
			Title:        "Vacation",
			TargetAmount: decimal.NewFromInt(1000),
			SavedAmount:  decimal.NewFromInt(100),
			Priority:     3,
			Status:       goal.StatusInProgress,
		}
		bike := &goal.Goal{
			ID:           uuid.New(),
			UserID:       userID,
			Title:        "Bike",
			TargetAmount: decimal.NewFromInt(500),
			SavedAmount:  decimal.NewFromInt(50),
			Priority:     1,
			Status:       goal.StatusInProgress,
		}

		repo.EXPECT().ListInProgress(gomock.Any(), userID).Return([]*goal.Goal{vacation, bike}, nil)
		repo.EXPECT().
			AddSaved(gomock.Any(), vacation.ID, decEq("30")).
			Return(&goal.Goal{ID: vacation.ID, Status: goal.StatusInProgress}, nil)
		repo.EXPECT().
			AddSaved(gomock.Any(), bike.ID, decEq("10")).
			Return(&goal.Goal{ID: bike.ID, Status: goal.StatusInProgress}, nil)

		svc := goal.NewService(repo, notifier)
		require.NoError(t, svc.AllocateIncome(context.Background(), userID, decimal.NewFromInt(40)))
	})

	t.Run("ClampsShareToHeadroomAndNotifiesOnAchieve", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)
		notifier := goal.NewMockNotifier(ctrl)

		almostDone := &goal.Goal{
			ID:           uuid.New(),
			UserID:       userID,
			Title:        "Emergency fund",
			TargetAmount: decimal.NewFromInt(100),
			SavedAmount:  decimal.NewFromInt(99),
			Priority:     5,
			Status:       goal.StatusInProgress,
		}

		repo.EXPECT().ListInProgress(gomock.Any(), userID).Return([]*goal.Goal{almostDone}, nil)
		repo.EXPECT().
			AddSaved(gomock.Any(), almostDone.ID, decEq("1")).
			Return(&goal.Goal{
				ID:          almostDone.ID,
				Title:       "Emergency fund",
				SavedAmount: decimal.NewFromInt(100),
				Status:      goal.StatusAchieved,
			}, nil)
		notifier.EXPECT().GoalAchieved(gomock.Any(), userID, "Emergency fund")

		svc := goal.NewService(repo, notifier)
		require.NoError(t, svc.AllocateIncome(context.Background(), userID, decimal.NewFromInt(5)))
	})

	t.Run("CappedShareIsNotRedistributed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)
		notifier := goal.NewMockNotifier(ctrl)

		capped := &goal.Goal{
			ID:           uuid.New(),
			UserID:       userID,
			Title:        "Capped",
			TargetAmount: decimal.NewFromInt(100),
			SavedAmount:  decimal.NewFromInt(95),
			Priority:     1,
			Status:       goal.StatusInProgress,
		}
		open := &goal.Goal{
			ID:           uuid.New(),
			UserID:       userID,
			Title:        "Open",
			TargetAmount: decimal.NewFromInt(1000),
			SavedAmount:  decimal.NewFromInt(10),
			Priority:     1,
			Status:       goal.StatusInProgress,
		}

		repo.EXPECT().ListInProgress(gomock.Any(), userID).Return([]*goal.Goal{capped, open}, nil)
		// Equal priorities split 20 into 10 each; the capped goal absorbs
		// only 5 and the surplus is dropped, not handed to the open goal.
		repo.EXPECT().
			AddSaved(gomock.Any(), capped.ID, decEq("5")).
			Return(&goal.Goal{ID: capped.ID, Status: goal.StatusAchieved, Title: "Capped"}, nil)
		repo.EXPECT().
			AddSaved(gomock.Any(), open.ID, decEq("10")).
			Return(&goal.Goal{ID: open.ID, Status: goal.StatusInProgress}, nil)
		notifier.EXPECT().GoalAchieved(gomock.Any(), userID, "Capped")

		svc := goal.NewService(repo, notifier)
		require.NoError(t, svc.AllocateIncome(context.Background(), userID, decimal.NewFromInt(20)))
	})

	t.Run("NonPositiveAmountIsNoop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)

		svc := goal.NewService(repo, goal.NewMockNotifier(ctrl))

		require.NoError(t, svc.AllocateIncome(context.Background(), userID, decimal.Zero))
		require.NoError(t, svc.AllocateIncome(context.Background(), userID, decimal.NewFromInt(-100)))
	})

	t.Run("NoGoalsIsNoop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)

		repo.EXPECT().ListInProgress(gomock.Any(), userID).Return(nil, nil)

		svc := goal.NewService(repo, goal.NewMockNotifier(ctrl))
		require.NoError(t, svc.AllocateIncome(context.Background(), userID, decimal.NewFromInt(40)))
	})

	t.Run("RepoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)

		repo.EXPECT().ListInProgress(gomock.Any(), userID).Return(nil, errors.New("db error"))

		svc := goal.NewService(repo, goal.NewMockNotifier(ctrl))
		assert.Error(t, svc.AllocateIncome(context.Background(), userID, decimal.NewFromInt(40)))
	})
}

func TestService_ExpireOverdue(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := goal.NewMockRepository(ctrl)
	notifier := goal.NewMockNotifier(ctrl)

	userA := uuid.New()
	userB := uuid.New()
	now := time.Now()

	repo.EXPECT().ExpireOverdue(gomock.Any(), now).Return([]*goal.Goal{
		{ID: uuid.New(), UserID: userA, Title: "Vacation", Status: goal.StatusExpired},
		{ID: uuid.New(), UserID: userB, Title: "Bike", Status: goal.StatusExpired},
	}, nil)
	notifier.EXPECT().GoalExpired(gomock.Any(), userA, "Vacation")
	notifier.EXPECT().GoalExpired(gomock.Any(), userB, "Bike")

	svc := goal.NewService(repo, notifier)
	count, err := svc.ExpireOverdue(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_Create(t *testing.T) {
	userID := uuid.New()
	deadline := time.Now().AddDate(0, 6, 0)

	t.Run("DefaultsSeedAndPriority", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)

		repo.EXPECT().
			CreateGoal(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, g *goal.Goal) error {
				g.ID = uuid.New()
				return nil
			})

		svc := goal.NewService(repo, goal.NewMockNotifier(ctrl))
		got, err := svc.Create(context.Background(), userID, goal.CreateParams{
			Title:        "Vacation",
			TargetAmount: decimal.NewFromInt(1000),
			Deadline:     deadline,
		})

		require.NoError(t, err)
		assert.True(t, got.SavedAmount.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, goal.MinPriority, got.Priority)
		assert.Equal(t, goal.StatusInProgress, got.Status)
	})

	t.Run("PriorityOutOfRange", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)

		six := 6

		svc := goal.NewService(repo, goal.NewMockNotifier(ctrl))
		_, err := svc.Create(context.Background(), userID, goal.CreateParams{
			Title:        "Vacation",
			TargetAmount: decimal.NewFromInt(1000),
			Deadline:     deadline,
			Priority:     &six,
		})

		assert.ErrorIs(t, err, goal.ErrPriorityRange)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := goal.NewMockRepository(ctrl)

		svc := goal.NewService(repo, goal.NewMockNotifier(ctrl))
		_, err := svc.Create(context.Background(), userID, goal.CreateParams{
			TargetAmount: decimal.NewFromInt(1000),
			Deadline:     deadline,
		})

		assert.Error(t, err)
	})
}

func TestService_Progress(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := goal.NewMockRepository(ctrl)

	userID := uuid.New()
	goalID := uuid.New()

	repo.EXPECT().GetGoal(gomock.Any(), userID, goalID).Return(&goal.Goal{
		ID:           goalID,
		UserID:       userID,
		TargetAmount: decimal.NewFromInt(300),
		SavedAmount:  decimal.NewFromInt(100),
	}, nil)

	svc := goal.NewService(repo, goal.NewMockNotifier(ctrl))
	pct, _, err := svc.Progress(context.Background(), userID, goalID)

	require.NoError(t, err)
	assert.Equal(t, "33.33", pct.String())
}
