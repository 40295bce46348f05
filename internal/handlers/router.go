package handlers

import (
	"net/http"

	"github.com/CountToFour/finance-mate/internal/config"
	"github.com/CountToFour/finance-mate/internal/db"
	"github.com/CountToFour/finance-mate/internal/middleware"
	"github.com/CountToFour/finance-mate/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner   db.TxRunner
	cfg        config.Config
	users      UserStore
	categories CategoryStore
	rates      RateStore
	ledger     LedgerService
	accounts   AccountService
	budgets    BudgetService
	recurring  RecurringService
	hub        *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, categories CategoryStore, rates RateStore, ledger LedgerService, accounts AccountService, budgets BudgetService, recurring RecurringService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:   txRunner,
		cfg:        cfg,
		users:      users,
		categories: categories,
		rates:      rates,
		ledger:     ledger,
		accounts:   accounts,
		budgets:    budgets,
		recurring:  recurring,
		hub:        hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Put("/me/currency", h.SetMainCurrency)
	})
	router.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateAccount)
		r.Get("/", h.ListAccounts)
		r.Get("/total", h.TotalBalance)
		r.Post("/transfer", h.Transfer)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Delete("/{id}", h.DeleteAccount)
		r.Post("/{id}/archive", h.ToggleArchived)
		r.Post("/{id}/stats", h.ToggleIncludeInStats)
	})
	router.Route("/transactions", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.PostTransaction)
		r.Get("/", h.ListTransactions)
		r.Get("/overview", h.GetOverview)
		r.Get("/categories", h.GetCategoryTotals)
		r.Put("/{id}", h.EditTransaction)
		r.Delete("/{id}", h.DeleteTransaction)
	})
	router.Route("/recurring", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateRecurring)
		r.Get("/", h.ListRecurring)
		r.Get("/{id}", h.GetRecurring)
		r.Put("/{id}", h.EditRecurring)
		r.Delete("/{id}", h.DeleteRecurring)
		r.Post("/{id}/toggle", h.ToggleRecurring)
	})
	router.Route("/budgets", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/", h.CreateBudget)
		r.Get("/", h.ListBudgets)
		r.Get("/{id}", h.GetBudget)
		r.Put("/{id}", h.UpdateBudget)
		r.Delete("/{id}", h.DeleteBudget)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/categories", h.ListCategories)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/currencies", h.ListCurrencies)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/rates", h.ListRates)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/rates", h.SetRate)
	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
