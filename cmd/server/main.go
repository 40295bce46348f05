package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CountToFour/finance-mate/internal/config"
	"github.com/CountToFour/finance-mate/internal/db"
	"github.com/CountToFour/finance-mate/internal/handlers"
	"github.com/CountToFour/finance-mate/internal/scheduler"
	"github.com/CountToFour/finance-mate/internal/services"
	"github.com/CountToFour/finance-mate/internal/store"
	"github.com/CountToFour/finance-mate/internal/websocket"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	categories := store.NewCategoryStore(database)
	transactions := store.NewTransactionStore(database)
	recurring := store.NewRecurringStore(database)
	budgets := store.NewBudgetStore(database)
	rates := store.NewRateStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	budgetService := services.NewBudgetService(txRunner, budgets, categories)
	ledgerService := services.NewLedgerService(txRunner, accounts, categories, transactions, rates, budgetService, users, audit, hub)
	accountService := services.NewAccountService(txRunner, accounts, rates, users, audit)
	recurringService := services.NewRecurringService(txRunner, recurring, accounts, categories, ledgerService, logger)

	sched := scheduler.New(recurringService, budgetService, logger)
	if err := sched.Start(cfg.RecurringCron); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	handler := handlers.New(txRunner, cfg, users, categories, rates, ledgerService, accountService, budgetService, recurringService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("finance API listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("shutdown error")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	if cfg.AppEnv == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
