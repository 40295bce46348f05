package handlers

import (
	"context"
	"time"

	"github.com/CountToFour/finance-mate/internal/config"
	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/services"
	"github.com/CountToFour/finance-mate/internal/store"
	"github.com/CountToFour/finance-mate/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn          func(ctx context.Context, tx store.Execer, id, username, email, passwordHash, mainCurrency string) error
	getByEmailFn      func(ctx context.Context, email string) (models.User, error)
	getByIDFn         func(ctx context.Context, userID string) (models.User, error)
	setMainCurrencyFn func(ctx context.Context, tx store.Execer, userID, currency string) error
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash, mainCurrency string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash, mainCurrency)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) SetMainCurrency(ctx context.Context, tx store.Execer, userID, currency string) error {
	if s.setMainCurrencyFn == nil {
		return nil
	}
	return s.setMainCurrencyFn(ctx, tx, userID, currency)
}

type stubCategoryStore struct {
	listByUserFn func(ctx context.Context, userID string) ([]models.Category, error)
}

func (s stubCategoryStore) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubRateStore struct {
	getCurrencyFn    func(ctx context.Context, code string) (models.Currency, error)
	listCurrenciesFn func(ctx context.Context) ([]models.Currency, error)
	listRatesFn      func(ctx context.Context) ([]models.ExchangeRate, error)
	setRateFn        func(ctx context.Context, tx store.Execer, fromCurrency, toCurrency string, rate decimal.Decimal) error
}

func (s stubRateStore) GetCurrency(ctx context.Context, code string) (models.Currency, error) {
	if s.getCurrencyFn == nil {
		return models.Currency{Code: code}, nil
	}
	return s.getCurrencyFn(ctx, code)
}

func (s stubRateStore) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	if s.listCurrenciesFn == nil {
		return nil, nil
	}
	return s.listCurrenciesFn(ctx)
}

func (s stubRateStore) ListRates(ctx context.Context) ([]models.ExchangeRate, error) {
	if s.listRatesFn == nil {
		return nil, nil
	}
	return s.listRatesFn(ctx)
}

func (s stubRateStore) SetRate(ctx context.Context, tx store.Execer, fromCurrency, toCurrency string, rate decimal.Decimal) error {
	if s.setRateFn == nil {
		return nil
	}
	return s.setRateFn(ctx, tx, fromCurrency, toCurrency, rate)
}

type stubLedger struct {
	postFn           func(ctx context.Context, req services.PostTransactionRequest) (models.Transaction, error)
	transferFn       func(ctx context.Context, req services.TransferRequest) error
	editFn           func(ctx context.Context, transactionID, userID string, req services.EditTransactionRequest) (models.Transaction, error)
	deleteFn         func(ctx context.Context, transactionID, userID string) error
	listFn           func(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error)
	overviewFn       func(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (services.Overview, error)
	categoryTotalsFn func(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]services.CategoryAmount, error)
}

func (s stubLedger) PostTransaction(ctx context.Context, req services.PostTransactionRequest) (models.Transaction, error) {
	if s.postFn == nil {
		return models.Transaction{}, nil
	}
	return s.postFn(ctx, req)
}

func (s stubLedger) Transfer(ctx context.Context, req services.TransferRequest) error {
	if s.transferFn == nil {
		return nil
	}
	return s.transferFn(ctx, req)
}

func (s stubLedger) EditTransaction(ctx context.Context, transactionID, userID string, req services.EditTransactionRequest) (models.Transaction, error) {
	if s.editFn == nil {
		return models.Transaction{}, nil
	}
	return s.editFn(ctx, transactionID, userID, req)
}

func (s stubLedger) DeleteTransaction(ctx context.Context, transactionID, userID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, transactionID, userID)
}

func (s stubLedger) ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, filter)
}

func (s stubLedger) GetOverview(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (services.Overview, error) {
	if s.overviewFn == nil {
		return services.Overview{}, nil
	}
	return s.overviewFn(ctx, userID, start, end, txType)
}

func (s stubLedger) GetCategoryTotals(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]services.CategoryAmount, error) {
	if s.categoryTotalsFn == nil {
		return nil, nil
	}
	return s.categoryTotalsFn(ctx, userID, start, end, txType)
}

type stubAccounts struct {
	createFn       func(ctx context.Context, userID string, req services.AccountRequest) (models.Account, error)
	getFn          func(ctx context.Context, accountID, userID string) (models.Account, error)
	listFn         func(ctx context.Context, userID string) ([]models.Account, error)
	updateFn       func(ctx context.Context, accountID, userID string, req services.AccountRequest) (models.Account, error)
	toggleArchFn   func(ctx context.Context, accountID, userID string) error
	toggleStatsFn  func(ctx context.Context, accountID, userID string) error
	deleteFn       func(ctx context.Context, accountID, userID string) error
	totalBalanceFn func(ctx context.Context, userID string) (decimal.Decimal, string, error)
}

func (s stubAccounts) Create(ctx context.Context, userID string, req services.AccountRequest) (models.Account, error) {
	if s.createFn == nil {
		return models.Account{}, nil
	}
	return s.createFn(ctx, userID, req)
}

func (s stubAccounts) Get(ctx context.Context, accountID, userID string) (models.Account, error) {
	if s.getFn == nil {
		return models.Account{}, nil
	}
	return s.getFn(ctx, accountID, userID)
}

func (s stubAccounts) List(ctx context.Context, userID string) ([]models.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID)
}

func (s stubAccounts) Update(ctx context.Context, accountID, userID string, req services.AccountRequest) (models.Account, error) {
	if s.updateFn == nil {
		return models.Account{}, nil
	}
	return s.updateFn(ctx, accountID, userID, req)
}

func (s stubAccounts) ToggleArchived(ctx context.Context, accountID, userID string) error {
	if s.toggleArchFn == nil {
		return nil
	}
	return s.toggleArchFn(ctx, accountID, userID)
}

func (s stubAccounts) ToggleIncludeInStats(ctx context.Context, accountID, userID string) error {
	if s.toggleStatsFn == nil {
		return nil
	}
	return s.toggleStatsFn(ctx, accountID, userID)
}

func (s stubAccounts) Delete(ctx context.Context, accountID, userID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, accountID, userID)
}

func (s stubAccounts) TotalBalance(ctx context.Context, userID string) (decimal.Decimal, string, error) {
	if s.totalBalanceFn == nil {
		return decimal.Zero, "USD", nil
	}
	return s.totalBalanceFn(ctx, userID)
}

type stubBudgets struct {
	createFn      func(ctx context.Context, userID string, req services.BudgetRequest) (models.Budget, error)
	getFn         func(ctx context.Context, budgetID, userID string) (models.Budget, error)
	listFn        func(ctx context.Context, userID string) ([]models.Budget, error)
	updateLimitFn func(ctx context.Context, budgetID, userID string, amount decimal.Decimal) (models.Budget, error)
	deleteFn      func(ctx context.Context, budgetID, userID string) error
}

func (s stubBudgets) Create(ctx context.Context, userID string, req services.BudgetRequest) (models.Budget, error) {
	if s.createFn == nil {
		return models.Budget{}, nil
	}
	return s.createFn(ctx, userID, req)
}

func (s stubBudgets) Get(ctx context.Context, budgetID, userID string) (models.Budget, error) {
	if s.getFn == nil {
		return models.Budget{}, nil
	}
	return s.getFn(ctx, budgetID, userID)
}

func (s stubBudgets) List(ctx context.Context, userID string) ([]models.Budget, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID)
}

func (s stubBudgets) UpdateLimit(ctx context.Context, budgetID, userID string, amount decimal.Decimal) (models.Budget, error) {
	if s.updateLimitFn == nil {
		return models.Budget{}, nil
	}
	return s.updateLimitFn(ctx, budgetID, userID, amount)
}

func (s stubBudgets) Delete(ctx context.Context, budgetID, userID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, budgetID, userID)
}

type stubRecurring struct {
	createFn func(ctx context.Context, req services.RecurringRequest) (models.RecurringTransaction, error)
	getFn    func(ctx context.Context, recurringID, userID string) (models.RecurringTransaction, error)
	listFn   func(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error)
	editFn   func(ctx context.Context, recurringID, userID string, req services.EditRecurringRequest) (models.RecurringTransaction, error)
	toggleFn func(ctx context.Context, recurringID, userID string) error
	deleteFn func(ctx context.Context, recurringID, userID string) error
}

func (s stubRecurring) Create(ctx context.Context, req services.RecurringRequest) (models.RecurringTransaction, error) {
	if s.createFn == nil {
		return models.RecurringTransaction{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubRecurring) Get(ctx context.Context, recurringID, userID string) (models.RecurringTransaction, error) {
	if s.getFn == nil {
		return models.RecurringTransaction{}, nil
	}
	return s.getFn(ctx, recurringID, userID)
}

func (s stubRecurring) List(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, txType)
}

func (s stubRecurring) Edit(ctx context.Context, recurringID, userID string, req services.EditRecurringRequest) (models.RecurringTransaction, error) {
	if s.editFn == nil {
		return models.RecurringTransaction{}, nil
	}
	return s.editFn(ctx, recurringID, userID, req)
}

func (s stubRecurring) ToggleActive(ctx context.Context, recurringID, userID string) error {
	if s.toggleFn == nil {
		return nil
	}
	return s.toggleFn(ctx, recurringID, userID)
}

func (s stubRecurring) Delete(ctx context.Context, recurringID, userID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, recurringID, userID)
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret: "secret",
		TokenTTL:  time.Minute,
	}
}

func newTestHandler(txRunner fakeTxRunner, users stubUserStore, categories stubCategoryStore, rates stubRateStore, ledger stubLedger, accounts stubAccounts, budgets stubBudgets, recurring stubRecurring) *Handler {
	return New(txRunner, testConfig(), users, categories, rates, ledger, accounts, budgets, recurring, websocket.NewHub())
}
