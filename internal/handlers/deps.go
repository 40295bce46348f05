package handlers

import (
	"context"
	"time"

	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/services"
	"github.com/CountToFour/finance-mate/internal/store"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash, mainCurrency string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	SetMainCurrency(ctx context.Context, tx store.Execer, userID, currency string) error
}

type CategoryStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.Category, error)
}

type RateStore interface {
	GetCurrency(ctx context.Context, code string) (models.Currency, error)
	ListCurrencies(ctx context.Context) ([]models.Currency, error)
	ListRates(ctx context.Context) ([]models.ExchangeRate, error)
	SetRate(ctx context.Context, tx store.Execer, fromCurrency, toCurrency string, rate decimal.Decimal) error
}

type LedgerService interface {
	PostTransaction(ctx context.Context, req services.PostTransactionRequest) (models.Transaction, error)
	Transfer(ctx context.Context, req services.TransferRequest) error
	EditTransaction(ctx context.Context, transactionID, userID string, req services.EditTransactionRequest) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID, userID string) error
	ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	GetOverview(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (services.Overview, error)
	GetCategoryTotals(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]services.CategoryAmount, error)
}

type AccountService interface {
	Create(ctx context.Context, userID string, req services.AccountRequest) (models.Account, error)
	Get(ctx context.Context, accountID, userID string) (models.Account, error)
	List(ctx context.Context, userID string) ([]models.Account, error)
	Update(ctx context.Context, accountID, userID string, req services.AccountRequest) (models.Account, error)
	ToggleArchived(ctx context.Context, accountID, userID string) error
	ToggleIncludeInStats(ctx context.Context, accountID, userID string) error
	Delete(ctx context.Context, accountID, userID string) error
	TotalBalance(ctx context.Context, userID string) (decimal.Decimal, string, error)
}

type BudgetService interface {
	Create(ctx context.Context, userID string, req services.BudgetRequest) (models.Budget, error)
	Get(ctx context.Context, budgetID, userID string) (models.Budget, error)
	List(ctx context.Context, userID string) ([]models.Budget, error)
	UpdateLimit(ctx context.Context, budgetID, userID string, amount decimal.Decimal) (models.Budget, error)
	Delete(ctx context.Context, budgetID, userID string) error
}

type RecurringService interface {
	Create(ctx context.Context, req services.RecurringRequest) (models.RecurringTransaction, error)
	Get(ctx context.Context, recurringID, userID string) (models.RecurringTransaction, error)
	List(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error)
	Edit(ctx context.Context, recurringID, userID string, req services.EditRecurringRequest) (models.RecurringTransaction, error)
	ToggleActive(ctx context.Context, recurringID, userID string) error
	Delete(ctx context.Context, recurringID, userID string) error
}
