package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"pennywise/internal/transaction"
)

// Service turns parsed statement rows into ledger entries. Creation goes
// through the transaction orchestrator, so imported expenses hit budgets and
// imported income feeds goals exactly like hand-entered transactions.
type Service struct {
	transactions *transaction.Service
}

func NewService(txService *transaction.Service) *Service {
	return &Service{transactions: txService}
}

// Preview parses the statement without touching the ledger.
func (s *Service) Preview(r io.Reader) ([]Row, error) {
	return Parse(r)
}

type CommitResult struct {
	Created []*transaction.Transaction
	Failed  int
}

// Commit creates one transaction per row. A failed row is counted and
// skipped; the rest of the statement still imports.
func (s *Service) Commit(ctx context.Context, userID uuid.UUID, rows []Row) (*CommitResult, error) {
	result := &CommitResult{}

	for _, row := range rows {
		tx, err := s.transactions.Create(ctx, userID, transaction.CreateParams{
			Kind:     row.Kind,
			Category: row.Category,
			Amount:   row.Amount,
			Notes:    row.Notes,
		})
		if err != nil {
			result.Failed++
			continue
		}

		// Creation stamps the server clock; move the entry back to its
		// statement date through the same update path a user would take.
		date := row.Date
		if updated, err := s.transactions.Update(ctx, userID, tx.ID, transaction.UpdateParams{Date: &date}); err == nil {
			tx = updated
		} else {
			slog.Warn("failed to backdate imported transaction", "transaction_id", tx.ID, "error", err)
		}

		result.Created = append(result.Created, tx)
	}

	if len(result.Created) == 0 && result.Failed > 0 {
		return nil, fmt.Errorf("no rows imported (%d failed)", result.Failed)
	}

	return result, nil
}
