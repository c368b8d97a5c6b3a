package report_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pennywise/internal/report"
	"pennywise/internal/transaction"
)

func newTxService(t *testing.T) (*transaction.Service, *transaction.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	return transaction.NewService(repo, transaction.NewMockAccountant(ctrl), transaction.NewMockAllocator(ctrl)), repo
}

func TestService_Monthly(t *testing.T) {
	userID := uuid.New()

	txSvc, repo := newTxService(t)

	repo.EXPECT().
		ListTransactions(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, filter.From)
			require.NotNil(t, filter.To)
			assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), *filter.From)
			assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), *filter.To)

			return []*transaction.Transaction{
				{
					Kind:     transaction.KindIncome,
					Category: "salary",
					Amount:   decimal.NewFromInt(1200),
					Date:     time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
				},
				{
					Kind:     transaction.KindExpense,
					Category: "groceries",
					Amount:   decimal.NewFromInt(300),
					Date:     time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
				},
				{
					Kind:     transaction.KindExpense,
					Category: "rent",
					Amount:   decimal.NewFromInt(700),
					Date:     time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		})

	svc := report.NewService(txSvc)
	got, err := svc.Monthly(context.Background(), userID, 2025, time.March)

	require.NoError(t, err)
	assert.Equal(t, "March-2025", got.Month)
	assert.Equal(t, "1200", got.TotalIncome.String())
	assert.Equal(t, "1000", got.TotalExpense.String())
	assert.Equal(t, "200", got.Net.String())
	assert.Len(t, got.Transactions, 3)
}

func TestService_WriteCSV(t *testing.T) {
	txSvc, _ := newTxService(t)
	svc := report.NewService(txSvc)

	monthly := &report.Monthly{
		Month: "March-2025",
		Net:   decimal.NewFromInt(200),
		Transactions: []*transaction.Transaction{
			{
				Kind:     transaction.KindExpense,
				Category: "groceries",
				Amount:   decimal.RequireFromString("42.50"),
				Date:     time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
				Notes:    "Supermarket",
				Tags:     []string{"food", "weekly"},
			},
		},
	}

	var sb strings.Builder
	require.NoError(t, svc.WriteCSV(&sb, monthly))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,kind,category,amount,notes,tags", lines[0])
	assert.Equal(t, "2025-03-10,expense,groceries,42.5,Supermarket,food;weekly", lines[1])
	assert.Equal(t, ",,net,200,,", lines[2])
}
