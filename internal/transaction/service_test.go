package transaction_test

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

	"pennywise/internal/transaction"
)

// decEq matches decimal arguments by numeric value rather than internal
// representation.
func decEq(v string) gomock.Matcher {
	want := decimal.RequireFromString(v)

	return gomock.Cond(func(got decimal.Decimal) bool { return got.Equal(want) })
}

func newMocks(t *testing.T) (*transaction.MockRepository, *transaction.MockAccountant, *transaction.MockAllocator) {
	t.Helper()

	ctrl := gomock.NewController(t)

	return transaction.NewMockRepository(ctrl),
		transaction.NewMockAccountant(ctrl),
		transaction.NewMockAllocator(ctrl)
}

func TestService_Create(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name      string
		params    transaction.CreateParams
		setupMock func(repo *transaction.MockRepository, acc *transaction.MockAccountant, alloc *transaction.MockAllocator)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "ExpenseChargesBudgetBucket",
			params: transaction.CreateParams{
				Kind:     transaction.KindExpense,
				Category: "groceries",
				Amount:   decimal.NewFromInt(30),
			},
			setupMock: func(repo *transaction.MockRepository, acc *transaction.MockAccountant, _ *transaction.MockAllocator) {
				repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						return nil
					})
				acc.EXPECT().
					ApplyDelta(gomock.Any(), userID, "groceries", gomock.Any(), decEq("30")).
					Return(nil)
			},
		},
		{
			name: "IncomeFeedsAllocator",
			params: transaction.CreateParams{
				Kind:     transaction.KindIncome,
				Category: "salary",
				Amount:   decimal.NewFromInt(1200),
			},
			setupMock: func(repo *transaction.MockRepository, _ *transaction.MockAccountant, alloc *transaction.MockAllocator) {
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				alloc.EXPECT().
					AllocateIncome(gomock.Any(), userID, decEq("1200")).
					Return(nil)
			},
		},
		{
			name: "InvalidKind",
			params: transaction.CreateParams{
				Kind:   transaction.Kind("transfer"),
				Amount: decimal.NewFromInt(10),
			},
			wantErr: transaction.ErrInvalidKind,
		},
		{
			name: "NonPositiveAmount",
			params: transaction.CreateParams{
				Kind:   transaction.KindExpense,
				Amount: decimal.Zero,
			},
			wantErr: transaction.ErrNonPositiveAmount,
		},
		{
			name: "SideEffectFailureDoesNotFailCreate",
			params: transaction.CreateParams{
				Kind:     transaction.KindExpense,
				Category: "rent",
				Amount:   decimal.NewFromInt(900),
			},
			setupMock: func(repo *transaction.MockRepository, acc *transaction.MockAccountant, _ *transaction.MockAllocator) {
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				acc.EXPECT().
					ApplyDelta(gomock.Any(), userID, "rent", gomock.Any(), decEq("900")).
					Return(errors.New("budget store down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, acc, alloc := newMocks(t)
			if tt.setupMock != nil {
				tt.setupMock(repo, acc, alloc)
			}

			svc := transaction.NewService(repo, acc, alloc)
			got, err := svc.Create(context.Background(), userID, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, userID, got.UserID)
			assert.WithinDuration(t, time.Now().UTC(), got.Date, 5*time.Second)
		})
	}
}

func TestService_Create_DedupesTags(t *testing.T) {
	repo, acc, alloc := newMocks(t)

	repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	acc.EXPECT().ApplyDelta(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	svc := transaction.NewService(repo, acc, alloc)
	got, err := svc.Create(context.Background(), uuid.New(), transaction.CreateParams{
		Kind:     transaction.KindExpense,
		Category: "travel",
		Amount:   decimal.NewFromInt(50),
		Tags:     []string{"work", "", "work", "flight"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"work", "flight"}, got.Tags)
}

func TestService_Update(t *testing.T) {
	userID := uuid.New()
	txID := uuid.New()
	date := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	existing := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:       txID,
			UserID:   userID,
			Kind:     transaction.KindExpense,
			Category: "groceries",
			Amount:   decimal.NewFromInt(40),
			Date:     date,
		}
	}

	kindIncome := transaction.KindIncome
	dining := "dining"
	amount55 := decimal.NewFromInt(55)

	type testCase struct {
		name      string
		params    transaction.UpdateParams
		setupMock func(repo *transaction.MockRepository, acc *transaction.MockAccountant, alloc *transaction.MockAllocator)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "AmountChangeAppliesDelta",
			params: transaction.UpdateParams{Amount: &amount55},
			setupMock: func(repo *transaction.MockRepository, acc *transaction.MockAccountant, _ *transaction.MockAllocator) {
				repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(existing(), nil)
				repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				acc.EXPECT().
					ApplyDelta(gomock.Any(), userID, "groceries", "March-2025", decEq("15")).
					Return(nil)
			},
		},
		{
			name:   "CategoryChangeRoutesDeltaToNewBucket",
			params: transaction.UpdateParams{Category: &dining},
			setupMock: func(repo *transaction.MockRepository, acc *transaction.MockAccountant, _ *transaction.MockAllocator) {
				repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(existing(), nil)
				repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				acc.EXPECT().
					ApplyDelta(gomock.Any(), userID, "dining", "March-2025", decEq("0")).
					Return(nil)
			},
		},
		{
			name:   "KindAndCategoryTogetherRejected",
			params: transaction.UpdateParams{Kind: &kindIncome, Category: &dining},
			setupMock: func(repo *transaction.MockRepository, _ *transaction.MockAccountant, _ *transaction.MockAllocator) {
				repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(existing(), nil)
			},
			wantErr: transaction.ErrKindCategoryChange,
		},
		{
			name:   "KindChangeAloneAllowed",
			params: transaction.UpdateParams{Kind: &kindIncome},
			setupMock: func(repo *transaction.MockRepository, _ *transaction.MockAccountant, alloc *transaction.MockAllocator) {
				repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(existing(), nil)
				repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
				alloc.EXPECT().
					AllocateIncome(gomock.Any(), userID, decEq("0")).
					Return(nil)
			},
		},
		{
			name:   "NotFound",
			params: transaction.UpdateParams{Amount: &amount55},
			setupMock: func(repo *transaction.MockRepository, _ *transaction.MockAccountant, _ *transaction.MockAllocator) {
				repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(nil, transaction.ErrNotFound)
			},
			wantErr: transaction.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, acc, alloc := newMocks(t)
			if tt.setupMock != nil {
				tt.setupMock(repo, acc, alloc)
			}

			svc := transaction.NewService(repo, acc, alloc)
			got, err := svc.Update(context.Background(), userID, txID, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
		})
	}
}

func TestService_Delete(t *testing.T) {
	userID := uuid.New()
	txID := uuid.New()
	date := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("ExpenseDeletionRefundsBudget", func(t *testing.T) {
		repo, acc, alloc := newMocks(t)

		repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(&transaction.Transaction{
			ID:       txID,
			UserID:   userID,
			Kind:     transaction.KindExpense,
			Category: "groceries",
			Amount:   decimal.NewFromInt(40),
			Date:     date,
		}, nil)
		repo.EXPECT().DeleteTransaction(gomock.Any(), userID, txID).Return(nil)
		acc.EXPECT().
			ApplyDelta(gomock.Any(), userID, "groceries", "March-2025", decEq("-40")).
			Return(nil)

		svc := transaction.NewService(repo, acc, alloc)
		require.NoError(t, svc.Delete(context.Background(), userID, txID))
	})

	t.Run("IncomeDeletionPassesNegativeAmountToAllocator", func(t *testing.T) {
		repo, acc, alloc := newMocks(t)

		repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(&transaction.Transaction{
			ID:     txID,
			UserID: userID,
			Kind:   transaction.KindIncome,
			Amount: decimal.NewFromInt(100),
			Date:   date,
		}, nil)
		repo.EXPECT().DeleteTransaction(gomock.Any(), userID, txID).Return(nil)
		alloc.EXPECT().
			AllocateIncome(gomock.Any(), userID, decEq("-100")).
			Return(nil)

		svc := transaction.NewService(repo, acc, alloc)
		require.NoError(t, svc.Delete(context.Background(), userID, txID))
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, acc, alloc := newMocks(t)

		repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(nil, transaction.ErrNotFound)

		svc := transaction.NewService(repo, acc, alloc)
		assert.ErrorIs(t, svc.Delete(context.Background(), userID, txID), transaction.ErrNotFound)
	})
}

func TestService_Tags(t *testing.T) {
	userID := uuid.New()
	txID := uuid.New()

	t.Run("AddSkipsExisting", func(t *testing.T) {
		repo, acc, alloc := newMocks(t)

		repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(&transaction.Transaction{
			ID:     txID,
			UserID: userID,
			Kind:   transaction.KindExpense,
			Amount: decimal.NewFromInt(10),
			Tags:   []string{"food"},
		}, nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		svc := transaction.NewService(repo, acc, alloc)
		got, err := svc.AddTags(context.Background(), userID, txID, []string{"food", "lunch"})

		require.NoError(t, err)
		assert.Equal(t, []string{"food", "lunch"}, got.Tags)
	})

	t.Run("RemoveMissingTagIsNoop", func(t *testing.T) {
		repo, acc, alloc := newMocks(t)

		repo.EXPECT().GetTransaction(gomock.Any(), userID, txID).Return(&transaction.Transaction{
			ID:     txID,
			UserID: userID,
			Kind:   transaction.KindExpense,
			Amount: decimal.NewFromInt(10),
			Tags:   []string{"food"},
		}, nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		svc := transaction.NewService(repo, acc, alloc)
		got, err := svc.RemoveTag(context.Background(), userID, txID, "travel")

		require.NoError(t, err)
		assert.Equal(t, []string{"food"}, got.Tags)
	})
}
