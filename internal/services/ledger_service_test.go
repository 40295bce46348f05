package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/store"

	"github.com/shopspring/decimal"
)

func newLedgerForTest(accounts stubAccountStore, categories stubCategoryStore, journal stubTransactionStore, rates stubRateStore, budgets stubBudgetRecorder, hub *stubHub) *LedgerService {
	return NewLedgerService(fakeTxRunner{}, accounts, categories, journal, rates, budgets, stubUserStore{}, stubAuditStore{}, hub)
}

func TestPostTransactionExpenseNormalizesSign(t *testing.T) {
	var storedBalance decimal.Decimal
	var storedEntry store.TransactionInput
	var recordedSpend decimal.Decimal
	hub := &stubHub{}

	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, UserID: "user-1", Name: "Checking", CurrencyCode: "USD", Balance: mustDecimal("100")}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, _ string, balance decimal.Decimal) error {
			storedBalance = balance
			return nil
		},
	}
	journal := stubTransactionStore{
		insertFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			storedEntry = input
			return nil
		},
	}
	budgets := stubBudgetRecorder{
		recordFn: func(_ context.Context, _ store.Tx, _ string, _ models.Category, _ time.Time, amount decimal.Decimal) error {
			recordedSpend = amount
			return nil
		},
	}
	service := newLedgerForTest(accounts, stubCategoryStore{}, journal, stubRateStore{}, budgets, hub)

	posted, err := service.PostTransaction(context.Background(), PostTransactionRequest{
		UserID:     "user-1",
		AccountID:  "acc-1",
		CategoryID: "cat-1",
		Amount:     mustDecimal("30"),
		Type:       models.Expense,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !storedBalance.Equal(mustDecimal("70")) {
		t.Fatalf("expected balance 70, got %s", storedBalance)
	}
	if !storedEntry.Amount.Equal(mustDecimal("-30")) {
		t.Fatalf("expected stored amount -30, got %s", storedEntry.Amount)
	}
	if !posted.Amount.Equal(mustDecimal("-30")) {
		t.Fatalf("expected posted amount -30, got %s", posted.Amount)
	}
	if !recordedSpend.Equal(mustDecimal("30")) {
		t.Fatalf("expected budget spend 30, got %s", recordedSpend)
	}
	if len(hub.calls) != 1 {
		t.Fatalf("expected one balance broadcast, got %d", len(hub.calls))
	}
	if hub.calls[0].Balance != "70.00" {
		t.Fatalf("expected broadcast balance 70.00, got %s", hub.calls[0].Balance)
	}
}

func TestPostTransactionIncomeSkipsBudget(t *testing.T) {
	var storedBalance decimal.Decimal
	budgets := stubBudgetRecorder{
		recordFn: func(context.Context, store.Tx, string, models.Category, time.Time, decimal.Decimal) error {
			t.Fatal("budget recorder must not run for income")
			return nil
		},
	}
	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "USD", Balance: mustDecimal("100")}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, _ string, balance decimal.Decimal) error {
			storedBalance = balance
			return nil
		},
	}
	service := newLedgerForTest(accounts, stubCategoryStore{}, stubTransactionStore{}, stubRateStore{}, budgets, &stubHub{})

	_, err := service.PostTransaction(context.Background(), PostTransactionRequest{
		UserID:     "user-1",
		AccountID:  "acc-1",
		CategoryID: "cat-1",
		Amount:     mustDecimal("30"),
		Type:       models.Income,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !storedBalance.Equal(mustDecimal("130")) {
		t.Fatalf("expected balance 130, got %s", storedBalance)
	}
}

func TestPostTransactionPassesDateToBudget(t *testing.T) {
	var recordedDay time.Time
	budgets := stubBudgetRecorder{
		recordFn: func(_ context.Context, _ store.Tx, _ string, _ models.Category, occurredOn time.Time, _ decimal.Decimal) error {
			recordedDay = occurredOn
			return nil
		},
	}
	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "USD", Balance: mustDecimal("100")}, nil
		},
	}
	service := newLedgerForTest(accounts, stubCategoryStore{}, stubTransactionStore{}, stubRateStore{}, budgets, &stubHub{})

	backdated := date(2020, 6, 15)
	_, err := service.PostTransaction(context.Background(), PostTransactionRequest{
		UserID:     "user-1",
		AccountID:  "acc-1",
		CategoryID: "cat-1",
		Amount:     mustDecimal("30"),
		Type:       models.Expense,
		OccurredOn: &backdated,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recordedDay.Equal(backdated) {
		t.Fatalf("expected budget recorder to see %s, got %s", backdated, recordedDay)
	}
}

func TestPostTransactionRejectsInvalidInput(t *testing.T) {
	service := newLedgerForTest(stubAccountStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Account, error) {
			t.Fatal("unexpected store call")
			return models.Account{}, nil
		},
	}, stubCategoryStore{}, stubTransactionStore{}, stubRateStore{}, stubBudgetRecorder{}, &stubHub{})

	_, err := service.PostTransaction(context.Background(), PostTransactionRequest{
		UserID: "user-1", AccountID: "acc-1", CategoryID: "cat-1",
		Amount: decimal.Zero, Type: models.Expense,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_, err = service.PostTransaction(context.Background(), PostTransactionRequest{
		UserID: "user-1", AccountID: "acc-1", CategoryID: "cat-1",
		Amount: mustDecimal("10"), Type: models.TransactionType("REFUND"),
	})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestPostTransactionForeignAccount(t *testing.T) {
	service := newLedgerForTest(stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, UserID: "someone-else", Balance: mustDecimal("100")}, nil
		},
	}, stubCategoryStore{}, stubTransactionStore{}, stubRateStore{}, stubBudgetRecorder{}, &stubHub{})

	_, err := service.PostTransaction(context.Background(), PostTransactionRequest{
		UserID: "user-1", AccountID: "acc-1", CategoryID: "cat-1",
		Amount: mustDecimal("10"), Type: models.Expense,
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestTransferSameCurrency(t *testing.T) {
	balances := map[string]decimal.Decimal{}
	hub := &stubHub{}
	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			if accountID == "acc-from" {
				return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "USD", Balance: mustDecimal("100")}, nil
			}
			return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "USD", Balance: mustDecimal("50")}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, accountID string, balance decimal.Decimal) error {
			balances[accountID] = balance
			return nil
		},
	}
	rates := stubRateStore{
		getRateFn: func(context.Context, string, string) (decimal.Decimal, error) {
			t.Fatal("rate lookup must not run for same-currency transfer")
			return decimal.Zero, nil
		},
	}
	journal := stubTransactionStore{
		insertFn: func(context.Context, store.Execer, store.TransactionInput) error {
			t.Fatal("transfers must not write journal entries")
			return nil
		},
	}
	service := newLedgerForTest(accounts, stubCategoryStore{}, journal, rates, stubBudgetRecorder{}, hub)

	err := service.Transfer(context.Background(), TransferRequest{
		UserID: "user-1", FromAccountID: "acc-from", ToAccountID: "acc-to", Amount: mustDecimal("30"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balances["acc-from"].Equal(mustDecimal("70")) {
		t.Fatalf("expected source balance 70, got %s", balances["acc-from"])
	}
	if !balances["acc-to"].Equal(mustDecimal("80")) {
		t.Fatalf("expected target balance 80, got %s", balances["acc-to"])
	}
	if len(hub.calls) != 2 {
		t.Fatalf("expected two broadcasts, got %d", len(hub.calls))
	}
}

func TestTransferConvertsThroughDirectionalRate(t *testing.T) {
	balances := map[string]decimal.Decimal{}
	var rateAsked [2]string
	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			if accountID == "acc-usd" {
				return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "USD", Balance: mustDecimal("100")}, nil
			}
			return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "EUR", Balance: mustDecimal("50")}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, accountID string, balance decimal.Decimal) error {
			balances[accountID] = balance
			return nil
		},
	}
	rates := stubRateStore{
		getRateFn: func(_ context.Context, from, to string) (decimal.Decimal, error) {
			rateAsked = [2]string{from, to}
			return mustDecimal("0.9"), nil
		},
	}
	service := newLedgerForTest(accounts, stubCategoryStore{}, stubTransactionStore{}, rates, stubBudgetRecorder{}, &stubHub{})

	err := service.Transfer(context.Background(), TransferRequest{
		UserID: "user-1", FromAccountID: "acc-usd", ToAccountID: "acc-eur", Amount: mustDecimal("20"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rateAsked != [2]string{"USD", "EUR"} {
		t.Fatalf("expected USD->EUR rate lookup, got %v", rateAsked)
	}
	if !balances["acc-usd"].Equal(mustDecimal("80")) {
		t.Fatalf("expected source balance 80, got %s", balances["acc-usd"])
	}
	if !balances["acc-eur"].Equal(mustDecimal("68")) {
		t.Fatalf("expected target balance 68, got %s", balances["acc-eur"])
	}
}

func TestTransferPersistsUnroundedConversion(t *testing.T) {
	balances := map[string]decimal.Decimal{}
	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			if accountID == "acc-usd" {
				return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "USD", Balance: mustDecimal("100")}, nil
			}
			return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "EUR", Balance: mustDecimal("50")}, nil
		},
		updateBalanceFn: func(_ context.Context, _ store.Execer, accountID string, balance decimal.Decimal) error {
			balances[accountID] = balance
			return nil
		},
	}
	rates := stubRateStore{
		getRateFn: func(context.Context, string, string) (decimal.Decimal, error) {
			return mustDecimal("0.9273"), nil
		},
	}
	service := newLedgerForTest(accounts, stubCategoryStore{}, stubTransactionStore{}, rates, stubBudgetRecorder{}, &stubHub{})

	err := service.Transfer(context.Background(), TransferRequest{
		UserID: "user-1", FromAccountID: "acc-usd", ToAccountID: "acc-eur", Amount: mustDecimal("20.55"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 20.55 * 0.9273 = 19.056015; the write keeps the full six decimal
	// places, rounding happens only at presentation.
	if !balances["acc-eur"].Equal(mustDecimal("69.056015")) {
		t.Fatalf("expected target balance 69.056015, got %s", balances["acc-eur"])
	}
	if !balances["acc-usd"].Equal(mustDecimal("79.45")) {
		t.Fatalf("expected source balance 79.45, got %s", balances["acc-usd"])
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			return models.Account{ID: accountID, UserID: "user-1", CurrencyCode: "USD", Balance: mustDecimal("10")}, nil
		},
		updateBalanceFn: func(context.Context, store.Execer, string, decimal.Decimal) error {
			t.Fatal("no balance may move on insufficient funds")
			return nil
		},
	}
	hub := &stubHub{}
	service := newLedgerForTest(accounts, stubCategoryStore{}, stubTransactionStore{}, stubRateStore{}, stubBudgetRecorder{}, hub)

	err := service.Transfer(context.Background(), TransferRequest{
		UserID: "user-1", FromAccountID: "acc-from", ToAccountID: "acc-to", Amount: mustDecimal("30"),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if len(hub.calls) != 0 {
		t.Fatalf("expected no broadcasts, got %d", len(hub.calls))
	}
}

func TestTransferRejectsSelfAndNonPositive(t *testing.T) {
	service := newLedgerForTest(stubAccountStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (models.Account, error) {
			t.Fatal("unexpected store call")
			return models.Account{}, nil
		},
	}, stubCategoryStore{}, stubTransactionStore{}, stubRateStore{}, stubBudgetRecorder{}, &stubHub{})

	err := service.Transfer(context.Background(), TransferRequest{
		UserID: "user-1", FromAccountID: "acc-1", ToAccountID: "acc-1", Amount: mustDecimal("10"),
	})
	if !errors.Is(err, ErrSameAccountTransfer) {
		t.Fatalf("expected ErrSameAccountTransfer, got %v", err)
	}
	err = service.Transfer(context.Background(), TransferRequest{
		UserID: "user-1", FromAccountID: "acc-1", ToAccountID: "acc-2", Amount: decimal.Zero,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransferForeignTargetDenied(t *testing.T) {
	accounts := stubAccountStore{
		getForUpdateFn: func(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
			owner := "user-1"
			if accountID == "acc-to" {
				owner = "someone-else"
			}
			return models.Account{ID: accountID, UserID: owner, CurrencyCode: "USD", Balance: mustDecimal("100")}, nil
		},
	}
	service := newLedgerForTest(accounts, stubCategoryStore{}, stubTransactionStore{}, stubRateStore{}, stubBudgetRecorder{}, &stubHub{})

	err := service.Transfer(context.Background(), TransferRequest{
		UserID: "user-1", FromAccountID: "acc-from", ToAccountID: "acc-to", Amount: mustDecimal("10"),
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}
