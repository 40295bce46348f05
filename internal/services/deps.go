package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/store"
	"github.com/CountToFour/finance-mate/internal/websocket"
)

// Store interfaces are declared on the consumer side so services can be
// exercised against stubs.

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.AccountInput) error
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)
	ListIncludedInStats(ctx context.Context, userID string) ([]models.Account, error)
	UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance decimal.Decimal) error
	UpdateDetails(ctx context.Context, tx store.Execer, accountID, name, description, color string) error
	SetArchived(ctx context.Context, tx store.Execer, accountID string, archived bool) error
	SetIncludeInStats(ctx context.Context, tx store.Execer, accountID string, include bool) error
	Delete(ctx context.Context, tx store.Execer, accountID string) error
}

type CategoryStore interface {
	GetByID(ctx context.Context, categoryID string) (models.Category, error)
}

type TransactionStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	GetByID(ctx context.Context, transactionID string) (models.Transaction, error)
	GetForUpdate(ctx context.Context, tx store.Getter, transactionID string) (models.Transaction, error)
	Update(ctx context.Context, tx store.Execer, transactionID string, categoryID, categoryName string, amount decimal.Decimal, description string, occurredOn time.Time) error
	Delete(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
	ListByUser(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	TotalsForPeriod(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (store.OverviewTotals, error)
	TotalsByCategory(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]store.CategoryTotal, error)
}

type RecurringStore interface {
	Create(ctx context.Context, tx store.Execer, input store.RecurringInput) error
	GetByID(ctx context.Context, recurringID string) (models.RecurringTransaction, error)
	ListActive(ctx context.Context) ([]models.RecurringTransaction, error)
	ListByUser(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error)
	AdvanceDate(ctx context.Context, tx store.Execer, recurringID string, nextDate time.Time) error
	SetActive(ctx context.Context, tx store.Execer, recurringID string, active bool) error
	Update(ctx context.Context, tx store.Execer, recurringID string, input store.RecurringInput) error
	Delete(ctx context.Context, tx store.Execer, recurringID string) (int64, error)
}

type BudgetStore interface {
	CreateOpen(ctx context.Context, tx store.Execer, input store.BudgetInput) error
	GetByID(ctx context.Context, budgetID string) (models.Budget, error)
	GetOpenForUpdate(ctx context.Context, tx store.Getter, userID, categoryID string) (models.Budget, error)
	ListByUser(ctx context.Context, userID string) ([]models.Budget, error)
	AddSpent(ctx context.Context, tx store.Execer, budgetID string, amount decimal.Decimal) error
	UpdateLimit(ctx context.Context, tx store.Execer, budgetID string, amount decimal.Decimal) error
	CloseExpired(ctx context.Context, tx store.Execer, asOf time.Time) (int64, error)
	Delete(ctx context.Context, tx store.Execer, budgetID string) (int64, error)
}

type RateStore interface {
	GetRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
	GetCurrency(ctx context.Context, code string) (models.Currency, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// requireOwner is the single ownership check every ledger operation funnels
// through: the entity exists but belongs to someone else.
func requireOwner(entityUserID, userID string) error {
	if entityUserID != userID {
		return ErrAccessDenied
	}
	return nil
}
