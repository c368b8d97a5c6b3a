package budget_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pennywise/internal/budget"
)

func TestService_ApplyDelta(t *testing.T) {
	userID := uuid.New()
	month := "March-2025"

	type testCase struct {
		name      string
		delta     decimal.Decimal
		setupMock func(repo *budget.MockRepository, notifier *budget.MockNotifier)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:  "NoBudgetConfiguredIsNoop",
			delta: decimal.NewFromInt(30),
			setupMock: func(repo *budget.MockRepository, _ *budget.MockNotifier) {
				repo.EXPECT().
					AddSpent(gomock.Any(), userID, "groceries", month, gomock.Any()).
					Return(nil, budget.ErrNotFound)
			},
		},
		{
			name:  "CrossingLimitNotifies",
			delta: decimal.NewFromInt(30),
			setupMock: func(repo *budget.MockRepository, notifier *budget.MockNotifier) {
				repo.EXPECT().
					AddSpent(gomock.Any(), userID, "groceries", month, gomock.Any()).
					Return(&budget.Budget{
						UserID:   userID,
						Category: "groceries",
						Month:    month,
						Limit:    decimal.NewFromInt(500),
						Spent:    decimal.NewFromInt(510),
					}, nil)
				notifier.EXPECT().BudgetExceeded(gomock.Any(), userID, "groceries")
			},
		},
		{
			name:  "AlreadyOverLimitNotifiesAgain",
			delta: decimal.NewFromInt(1),
			setupMock: func(repo *budget.MockRepository, notifier *budget.MockNotifier) {
				repo.EXPECT().
					AddSpent(gomock.Any(), userID, "groceries", month, gomock.Any()).
					Return(&budget.Budget{
						UserID:   userID,
						Category: "groceries",
						Month:    month,
						Limit:    decimal.NewFromInt(500),
						Spent:    decimal.NewFromInt(511),
					}, nil)
				notifier.EXPECT().BudgetExceeded(gomock.Any(), userID, "groceries")
			},
		},
		{
			name:  "ExactlyAtLimitStaysQuiet",
			delta: decimal.NewFromInt(20),
			setupMock: func(repo *budget.MockRepository, _ *budget.MockNotifier) {
				repo.EXPECT().
					AddSpent(gomock.Any(), userID, "groceries", month, gomock.Any()).
					Return(&budget.Budget{
						UserID:   userID,
						Category: "groceries",
						Month:    month,
						Limit:    decimal.NewFromInt(500),
						Spent:    decimal.NewFromInt(500),
					}, nil)
			},
		},
		{
			name:  "NegativeDeltaRefundsWithoutNotifying",
			delta: decimal.NewFromInt(-40),
			setupMock: func(repo *budget.MockRepository, _ *budget.MockNotifier) {
				repo.EXPECT().
					AddSpent(gomock.Any(), userID, "groceries", month, gomock.Any()).
					Return(&budget.Budget{
						UserID:   userID,
						Category: "groceries",
						Month:    month,
						Limit:    decimal.NewFromInt(500),
						Spent:    decimal.NewFromInt(460),
					}, nil)
			},
		},
		{
			name:  "RepoError",
			delta: decimal.NewFromInt(30),
			setupMock: func(repo *budget.MockRepository, _ *budget.MockNotifier) {
				repo.EXPECT().
					AddSpent(gomock.Any(), userID, "groceries", month, gomock.Any()).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := budget.NewMockRepository(ctrl)
			notifier := budget.NewMockNotifier(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo, notifier)
			}

			svc := budget.NewService(repo, notifier)
			err := svc.ApplyDelta(context.Background(), userID, "groceries", month, tt.delta)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Create(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name      string
		params    budget.CreateParams
		setupMock func(repo *budget.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			params: budget.CreateParams{
				Category: "groceries",
				Month:    "March-2025",
				Limit:    decimal.NewFromInt(500),
			},
			setupMock: func(repo *budget.MockRepository) {
				repo.EXPECT().
					CreateBudget(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *budget.Budget) error {
						b.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "MissingCategory",
			params: budget.CreateParams{
				Month: "March-2025",
				Limit: decimal.NewFromInt(500),
			},
			wantErr: true,
		},
		{
			name: "NonPositiveLimit",
			params: budget.CreateParams{
				Category: "groceries",
				Month:    "March-2025",
				Limit:    decimal.Zero,
			},
			wantErr: true,
		},
		{
			name: "MalformedMonthKey",
			params: budget.CreateParams{
				Category: "groceries",
				Month:    "2025-03",
				Limit:    decimal.NewFromInt(500),
			},
			wantErr: true,
		},
		{
			name: "DuplicateBucket",
			params: budget.CreateParams{
				Category: "groceries",
				Month:    "March-2025",
				Limit:    decimal.NewFromInt(500),
			},
			setupMock: func(repo *budget.MockRepository) {
				repo.EXPECT().
					CreateBudget(gomock.Any(), gomock.Any()).
					Return(budget.ErrDuplicate)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := budget.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := budget.NewService(repo, budget.NewMockNotifier(ctrl))
			got, err := svc.Create(context.Background(), userID, tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, userID, got.UserID)
		})
	}
}
