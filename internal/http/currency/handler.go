package currency

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pennywise/internal/currency"
)

type Handler struct {
	svc *currency.Service
}

func NewHandler(svc *currency.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rate", h.rate)
}

type rateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

func (h *Handler) rate(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	target := r.URL.Query().Get("target")

	if base == "" || target == "" {
		http.Error(w, "base and target are required", http.StatusBadRequest)
		return
	}

	rate, err := h.svc.Rate(r.Context(), base, target)
	if err != nil {
		if errors.Is(err, currency.ErrRateUnavailable) {
			http.Error(w, "failed to fetch exchange rate", http.StatusBadGateway)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(rateResponse{Rate: rate}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
