package services

import (
	"context"
	"time"

	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/store"
	"github.com/CountToFour/finance-mate/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubUserStore struct {
	getByIDFn func(ctx context.Context, userID string) (models.User, error)
	existsFn  func(ctx context.Context, userID string) (bool, error)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID, MainCurrency: "USD"}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) Exists(ctx context.Context, userID string) (bool, error) {
	if s.existsFn == nil {
		return true, nil
	}
	return s.existsFn(ctx, userID)
}

type stubAccountStore struct {
	createFn              func(ctx context.Context, tx store.Execer, input store.AccountInput) error
	getByIDFn             func(ctx context.Context, accountID string) (models.Account, error)
	getForUpdateFn        func(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	listByUserFn          func(ctx context.Context, userID string) ([]models.Account, error)
	listIncludedInStatsFn func(ctx context.Context, userID string) ([]models.Account, error)
	updateBalanceFn       func(ctx context.Context, tx store.Execer, accountID string, balance decimal.Decimal) error
	updateDetailsFn       func(ctx context.Context, tx store.Execer, accountID, name, description, color string) error
	setArchivedFn         func(ctx context.Context, tx store.Execer, accountID string, archived bool) error
	setIncludeInStatsFn   func(ctx context.Context, tx store.Execer, accountID string, include bool) error
	deleteFn              func(ctx context.Context, tx store.Execer, accountID string) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, input store.AccountInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	if s.getByIDFn == nil {
		return models.Account{}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountStore) GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (models.Account, error) {
	return s.getForUpdateFn(ctx, tx, accountID)
}

func (s stubAccountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubAccountStore) ListIncludedInStats(ctx context.Context, userID string) ([]models.Account, error) {
	if s.listIncludedInStatsFn == nil {
		return nil, nil
	}
	return s.listIncludedInStatsFn(ctx, userID)
}

func (s stubAccountStore) UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance decimal.Decimal) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, accountID, balance)
}

func (s stubAccountStore) UpdateDetails(ctx context.Context, tx store.Execer, accountID, name, description, color string) error {
	if s.updateDetailsFn == nil {
		return nil
	}
	return s.updateDetailsFn(ctx, tx, accountID, name, description, color)
}

func (s stubAccountStore) SetArchived(ctx context.Context, tx store.Execer, accountID string, archived bool) error {
	if s.setArchivedFn == nil {
		return nil
	}
	return s.setArchivedFn(ctx, tx, accountID, archived)
}

func (s stubAccountStore) SetIncludeInStats(ctx context.Context, tx store.Execer, accountID string, include bool) error {
	if s.setIncludeInStatsFn == nil {
		return nil
	}
	return s.setIncludeInStatsFn(ctx, tx, accountID, include)
}

func (s stubAccountStore) Delete(ctx context.Context, tx store.Execer, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, accountID)
}

type stubCategoryStore struct {
	getByIDFn func(ctx context.Context, categoryID string) (models.Category, error)
}

func (s stubCategoryStore) GetByID(ctx context.Context, categoryID string) (models.Category, error) {
	if s.getByIDFn == nil {
		return models.Category{ID: categoryID, Name: "Groceries"}, nil
	}
	return s.getByIDFn(ctx, categoryID)
}

type stubTransactionStore struct {
	insertFn           func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	getByIDFn          func(ctx context.Context, transactionID string) (models.Transaction, error)
	getForUpdateFn     func(ctx context.Context, tx store.Getter, transactionID string) (models.Transaction, error)
	updateFn           func(ctx context.Context, tx store.Execer, transactionID string, categoryID, categoryName string, amount decimal.Decimal, description string, occurredOn time.Time) error
	deleteFn           func(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
	listByUserFn       func(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	totalsForPeriodFn  func(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (store.OverviewTotals, error)
	totalsByCategoryFn func(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]store.CategoryTotal, error)
}

func (s stubTransactionStore) Insert(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, input)
}

func (s stubTransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	if s.getByIDFn == nil {
		return models.Transaction{}, nil
	}
	return s.getByIDFn(ctx, transactionID)
}

func (s stubTransactionStore) GetForUpdate(ctx context.Context, tx store.Getter, transactionID string) (models.Transaction, error) {
	return s.getForUpdateFn(ctx, tx, transactionID)
}

func (s stubTransactionStore) Update(ctx context.Context, tx store.Execer, transactionID string, categoryID, categoryName string, amount decimal.Decimal, description string, occurredOn time.Time) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, transactionID, categoryID, categoryName, amount, description, occurredOn)
}

func (s stubTransactionStore) Delete(ctx context.Context, tx store.Execer, transactionID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, transactionID)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, filter)
}

func (s stubTransactionStore) TotalsForPeriod(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (store.OverviewTotals, error) {
	if s.totalsForPeriodFn == nil {
		return store.OverviewTotals{}, nil
	}
	return s.totalsForPeriodFn(ctx, userID, start, end, txType)
}

func (s stubTransactionStore) TotalsByCategory(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]store.CategoryTotal, error) {
	if s.totalsByCategoryFn == nil {
		return nil, nil
	}
	return s.totalsByCategoryFn(ctx, userID, start, end, txType)
}

type stubRecurringStore struct {
	createFn      func(ctx context.Context, tx store.Execer, input store.RecurringInput) error
	getByIDFn     func(ctx context.Context, recurringID string) (models.RecurringTransaction, error)
	listActiveFn  func(ctx context.Context) ([]models.RecurringTransaction, error)
	listByUserFn  func(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error)
	advanceDateFn func(ctx context.Context, tx store.Execer, recurringID string, nextDate time.Time) error
	setActiveFn   func(ctx context.Context, tx store.Execer, recurringID string, active bool) error
	updateFn      func(ctx context.Context, tx store.Execer, recurringID string, input store.RecurringInput) error
	deleteFn      func(ctx context.Context, tx store.Execer, recurringID string) (int64, error)
}

func (s stubRecurringStore) Create(ctx context.Context, tx store.Execer, input store.RecurringInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubRecurringStore) GetByID(ctx context.Context, recurringID string) (models.RecurringTransaction, error) {
	if s.getByIDFn == nil {
		return models.RecurringTransaction{}, nil
	}
	return s.getByIDFn(ctx, recurringID)
}

func (s stubRecurringStore) ListActive(ctx context.Context) ([]models.RecurringTransaction, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx)
}

func (s stubRecurringStore) ListByUser(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, txType)
}

func (s stubRecurringStore) AdvanceDate(ctx context.Context, tx store.Execer, recurringID string, nextDate time.Time) error {
	if s.advanceDateFn == nil {
		return nil
	}
	return s.advanceDateFn(ctx, tx, recurringID, nextDate)
}

func (s stubRecurringStore) SetActive(ctx context.Context, tx store.Execer, recurringID string, active bool) error {
	if s.setActiveFn == nil {
		return nil
	}
	return s.setActiveFn(ctx, tx, recurringID, active)
}

func (s stubRecurringStore) Update(ctx context.Context, tx store.Execer, recurringID string, input store.RecurringInput) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, tx, recurringID, input)
}

func (s stubRecurringStore) Delete(ctx context.Context, tx store.Execer, recurringID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, recurringID)
}

type stubBudgetStore struct {
	createOpenFn       func(ctx context.Context, tx store.Execer, input store.BudgetInput) error
	getByIDFn          func(ctx context.Context, budgetID string) (models.Budget, error)
	getOpenForUpdateFn func(ctx context.Context, tx store.Getter, userID, categoryID string) (models.Budget, error)
	listByUserFn       func(ctx context.Context, userID string) ([]models.Budget, error)
	addSpentFn         func(ctx context.Context, tx store.Execer, budgetID string, amount decimal.Decimal) error
	updateLimitFn      func(ctx context.Context, tx store.Execer, budgetID string, amount decimal.Decimal) error
	closeExpiredFn     func(ctx context.Context, tx store.Execer, asOf time.Time) (int64, error)
	deleteFn           func(ctx context.Context, tx store.Execer, budgetID string) (int64, error)
}

func (s stubBudgetStore) CreateOpen(ctx context.Context, tx store.Execer, input store.BudgetInput) error {
	if s.createOpenFn == nil {
		return nil
	}
	return s.createOpenFn(ctx, tx, input)
}

func (s stubBudgetStore) GetByID(ctx context.Context, budgetID string) (models.Budget, error) {
	if s.getByIDFn == nil {
		return models.Budget{}, nil
	}
	return s.getByIDFn(ctx, budgetID)
}

func (s stubBudgetStore) GetOpenForUpdate(ctx context.Context, tx store.Getter, userID, categoryID string) (models.Budget, error) {
	return s.getOpenForUpdateFn(ctx, tx, userID, categoryID)
}

func (s stubBudgetStore) ListByUser(ctx context.Context, userID string) ([]models.Budget, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubBudgetStore) AddSpent(ctx context.Context, tx store.Execer, budgetID string, amount decimal.Decimal) error {
	if s.addSpentFn == nil {
		return nil
	}
	return s.addSpentFn(ctx, tx, budgetID, amount)
}

func (s stubBudgetStore) UpdateLimit(ctx context.Context, tx store.Execer, budgetID string, amount decimal.Decimal) error {
	if s.updateLimitFn == nil {
		return nil
	}
	return s.updateLimitFn(ctx, tx, budgetID, amount)
}

func (s stubBudgetStore) CloseExpired(ctx context.Context, tx store.Execer, asOf time.Time) (int64, error) {
	if s.closeExpiredFn == nil {
		return 0, nil
	}
	return s.closeExpiredFn(ctx, tx, asOf)
}

func (s stubBudgetStore) Delete(ctx context.Context, tx store.Execer, budgetID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, tx, budgetID)
}

type stubRateStore struct {
	getRateFn     func(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error)
	getCurrencyFn func(ctx context.Context, code string) (models.Currency, error)
}

func (s stubRateStore) GetRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	if s.getRateFn == nil {
		return decimal.NewFromInt(1), nil
	}
	return s.getRateFn(ctx, fromCurrency, toCurrency)
}

func (s stubRateStore) GetCurrency(ctx context.Context, code string) (models.Currency, error) {
	if s.getCurrencyFn == nil {
		return models.Currency{Code: code}, nil
	}
	return s.getCurrencyFn(ctx, code)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubHub struct {
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.calls = append(s.calls, update)
}

// stubBudgetRecorder satisfies BudgetRecorder for ledger tests that do not
// care about budget accumulation.
type stubBudgetRecorder struct {
	recordFn func(ctx context.Context, tx store.Tx, userID string, category models.Category, occurredOn time.Time, amount decimal.Decimal) error
}

func (s stubBudgetRecorder) RecordExpense(ctx context.Context, tx store.Tx, userID string, category models.Category, occurredOn time.Time, amount decimal.Decimal) error {
	if s.recordFn == nil {
		return nil
	}
	return s.recordFn(ctx, tx, userID, category, occurredOn, amount)
}

func mustDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
