package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/budget"
	"pennywise/internal/transaction"
)

// Service summarizes one month of a user's ledger.
type Service struct {
	transactions *transaction.Service
}

func NewService(txService *transaction.Service) *Service {
	return &Service{transactions: txService}
}

type Monthly struct {
	Month        string
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	Transactions []*transaction.Transaction
}

// Monthly totals the user's income and expenses for the calendar month. The
// window is [first of month, first of next month), so a transaction on any
// day of March 2025 lands in "March-2025" and nowhere else.
func (s *Service) Monthly(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*Monthly, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	txs, err := s.transactions.List(ctx, userID, transaction.ListFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	r := &Monthly{
		Month:        budget.MonthKey(from),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Transactions: txs,
	}

	for _, tx := range txs {
		switch tx.Kind {
		case transaction.KindIncome:
			r.TotalIncome = r.TotalIncome.Add(tx.Amount)
		case transaction.KindExpense:
			r.TotalExpense = r.TotalExpense.Add(tx.Amount)
		}
	}

	r.Net = r.TotalIncome.Sub(r.TotalExpense)

	return r, nil
}

// WriteCSV renders the month's ledger as CSV with a trailing totals row.
func (s *Service) WriteCSV(w io.Writer, r *Monthly) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "kind", "category", "amount", "notes", "tags"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range r.Transactions {
		row := []string{
			tx.Date.Format(time.DateOnly),
			string(tx.Kind),
			tx.Category,
			tx.Amount.String(),
			tx.Notes,
			strings.Join(tx.Tags, ";"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	totals := []string{"", "", "net", r.Net.String(), "", ""}
	if err := cw.Write(totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	cw.Flush()

	return cw.Error()
}
