package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pennywise/internal/auth"
	txResponse "pennywise/internal/http/transaction"
	"pennywise/internal/importer"
	"pennywise/internal/transaction"
)

const maxUploadSize = 10 << 20 // 10 MiB

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/csv", h.preview)
	r.Post("/csv/commit", h.commit)
}

type rowPayload struct {
	Kind     transaction.Kind `json:"kind"`
	Category string           `json:"category"`
	Amount   decimal.Decimal  `json:"amount"`
	Date     time.Time        `json:"date"`
	Notes    string           `json:"notes"`
}

// preview accepts a multipart "statement" file and returns the parsed rows
// without creating anything.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserID(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("statement")
	if err != nil {
		http.Error(w, "statement file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := h.svc.Preview(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, toPayloadList(rows))
}

type commitRequest struct {
	Rows []rowPayload `json:"rows"`
}

type commitResponse struct {
	Created any `json:"created"`
	Failed  int `json:"failed"`
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Rows) == 0 {
		http.Error(w, "rows are required", http.StatusBadRequest)
		return
	}

	rows := make([]importer.Row, len(req.Rows))
	for i, p := range req.Rows {
		rows[i] = importer.Row{
			Kind:     p.Kind,
			Category: p.Category,
			Amount:   p.Amount,
			Date:     p.Date,
			Notes:    p.Notes,
		}
	}

	result, err := h.svc.Commit(r.Context(), userID, rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, commitResponse{
		Created: txResponse.ToResponseList(result.Created),
		Failed:  result.Failed,
	})
}

func toPayloadList(rows []importer.Row) []rowPayload {
	out := make([]rowPayload, len(rows))
	for i, row := range rows {
		out[i] = rowPayload{
			Kind:     row.Kind,
			Category: row.Category,
			Amount:   row.Amount,
			Date:     row.Date,
			Notes:    row.Notes,
		}
	}

	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
