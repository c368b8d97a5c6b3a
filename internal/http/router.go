package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pennywise/internal/auth"
	budgetHandler "pennywise/internal/http/budget"
	currencyHandler "pennywise/internal/http/currency"
	goalHandler "pennywise/internal/http/goal"
	importHandler "pennywise/internal/http/importcsv"
	notificationHandler "pennywise/internal/http/notification"
	realtimeHandler "pennywise/internal/http/realtime"
	reportHandler "pennywise/internal/http/report"
	txHandler "pennywise/internal/http/transaction"
	"pennywise/internal/metrics"
)

func New(
	authManager *auth.Manager,
	m *metrics.Metrics,
	allowedOrigins []string,
	transactionsV1 *txHandler.Handler,
	budgetsV1 *budgetHandler.Handler,
	goalsV1 *goalHandler.Handler,
	notificationsV1 *notificationHandler.Handler,
	reportsV1 *reportHandler.Handler,
	currencyV1 *currencyHandler.Handler,
	importV1 *importHandler.Handler,
	wsV1 *realtimeHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Get("/metrics", m.Handler().ServeHTTP)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		// Websocket upgrades authenticate via query token inside the handler.
		r.Get("/ws", wsV1.Serve)

		r.Group(func(r chi.Router) {
			r.Use(authManager.Middleware)

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				transactionsV1.Routes(r)
			})

			r.Route("/budgets", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				budgetsV1.Routes(r)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				goalsV1.Routes(r)
			})

			r.Route("/notifications", notificationsV1.Routes)
			r.Route("/reports", reportsV1.Routes)
			r.Route("/currency", currencyV1.Routes)
			r.Route("/import", importV1.Routes)
		})
	})

	return router
}
