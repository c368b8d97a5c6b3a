package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"pennywise/internal/auth"
	"pennywise/internal/budget"
	budgetStore "pennywise/internal/budget/store"
	"pennywise/internal/config"
	"pennywise/internal/currency"
	"pennywise/internal/database"
	"pennywise/internal/goal"
	goalStore "pennywise/internal/goal/store"
	pennyHttp "pennywise/internal/http"
	budgetHandler "pennywise/internal/http/budget"
	currencyHandler "pennywise/internal/http/currency"
	goalHandler "pennywise/internal/http/goal"
	importHandler "pennywise/internal/http/importcsv"
	notificationHandler "pennywise/internal/http/notification"
	realtimeHandler "pennywise/internal/http/realtime"
	reportHandler "pennywise/internal/http/report"
	txHandler "pennywise/internal/http/transaction"
	"pennywise/internal/importer"
	"pennywise/internal/metrics"
	"pennywise/internal/notification"
	notificationStore "pennywise/internal/notification/store"
	"pennywise/internal/realtime"
	"pennywise/internal/report"
	"pennywise/internal/transaction"
	txStore "pennywise/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var (
		authManager = auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		registry    = realtime.NewRegistry()
		m           = metrics.New()

		notificationService = notification.NewService(notificationStore.New(db), registry)
		budgetService       = budget.NewService(budgetStore.New(db), notificationService)
		goalService         = goal.NewService(goalStore.New(db), notificationService)
		transactionService  = transaction.NewService(txStore.New(db), budgetService, goalService)
		reportService       = report.NewService(transactionService)
		importService       = importer.NewService(transactionService)
		currencyService     = currency.NewService(cfg.Forex.BaseURL, cfg.Forex.APIKey)
	)

	var (
		transactionH  = txHandler.NewHandler(transactionService)
		budgetH       = budgetHandler.NewHandler(budgetService)
		goalH         = goalHandler.NewHandler(goalService)
		notificationH = notificationHandler.NewHandler(notificationService)
		reportH       = reportHandler.NewHandler(reportService)
		currencyH     = currencyHandler.NewHandler(currencyService)
		importH       = importHandler.NewHandler(importService)
		wsH           = realtimeHandler.NewHandler(authManager, registry)
	)

	router := pennyHttp.New(
		authManager, m, cfg.Server.AllowedOrigins,
		transactionH, budgetH, goalH, notificationH, reportH, currencyH, importH, wsH,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "port", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	sweep := m.TrackJob("goal_expiry_sweep", func(ctx context.Context) error {
		_, err := goalService.ExpireOverdue(ctx, time.Now())
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Sweep.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := sweep(ctx); err != nil {
					slog.Error("goal expiry sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
