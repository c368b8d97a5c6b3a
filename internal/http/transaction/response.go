package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/transaction"
)

type transactionResponse struct {
	ID        uuid.UUID        `json:"id"`
	Kind      transaction.Kind `json:"kind"`
	Category  string           `json:"category"`
	Amount    decimal.Decimal  `json:"amount"`
	Date      time.Time        `json:"date"`
	Notes     string           `json:"notes,omitempty"`
	Tags      []string         `json:"tags"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	tags := tx.Tags
	if tags == nil {
		tags = []string{}
	}

	return transactionResponse{
		ID:        tx.ID,
		Kind:      tx.Kind,
		Category:  tx.Category,
		Amount:    tx.Amount,
		Date:      tx.Date,
		Notes:     tx.Notes,
		Tags:      tags,
		CreatedAt: tx.CreatedAt,
		UpdatedAt: tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
