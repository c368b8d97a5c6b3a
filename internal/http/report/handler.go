package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/auth"
	"pennywise/internal/report"
	txResponse "pennywise/internal/http/transaction"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/monthly", h.monthly)
	r.Get("/monthly/export", h.exportCSV)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	userID, year, month, ok := h.params(w, r)
	if !ok {
		return
	}

	rep, err := h.svc.Monthly(r.Context(), userID, year, month)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rep))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	userID, year, month, ok := h.params(w, r)
	if !ok {
		return
	}

	rep, err := h.svc.Monthly(r.Context(), userID, year, month)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="report-%s.csv"`, rep.Month))

	if err := h.svc.WriteCSV(w, rep); err != nil {
		slog.Error("failed to write report csv", "error", err)
	}
}

func (h *Handler) params(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, time.Month, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, 0, 0, false
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return uuid.Nil, 0, 0, false
	}

	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return uuid.Nil, 0, 0, false
	}

	return userID, year, time.Month(monthNum), true
}

type monthlyResponse struct {
	Month        string          `json:"month"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Transactions any             `json:"transactions"`
}

func toResponse(rep *report.Monthly) monthlyResponse {
	return monthlyResponse{
		Month:        rep.Month,
		TotalIncome:  rep.TotalIncome,
		TotalExpense: rep.TotalExpense,
		Net:          rep.Net,
		Transactions: txResponse.ToResponseList(rep.Transactions),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
