package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/services"
	"github.com/CountToFour/finance-mate/internal/store"

	"github.com/shopspring/decimal"
)

func TestPostTransactionSuccess(t *testing.T) {
	var captured services.PostTransactionRequest
	ledger := stubLedger{
		postFn: func(_ context.Context, req services.PostTransactionRequest) (models.Transaction, error) {
			captured = req
			return models.Transaction{ID: "tx-1", Amount: req.Amount.Neg()}, nil
		},
	}
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubCategoryStore{}, stubRateStore{}, ledger, stubAccounts{}, stubBudgets{}, stubRecurring{})
	router := handler.Routes()

	body := []byte(`{"account_id":"acc-1","category_id":"cat-1","amount":"30.00","type":"EXPENSE","date":"2024-03-10"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/transactions/", body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if captured.Type != models.Expense {
		t.Fatalf("expected EXPENSE, got %s", captured.Type)
	}
	if captured.OccurredOn == nil || !captured.OccurredOn.Equal(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date 2024-03-10, got %v", captured.OccurredOn)
	}
}

func TestPostTransactionRejectsBadAmount(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubCategoryStore{}, stubRateStore{}, stubLedger{}, stubAccounts{}, stubBudgets{}, stubRecurring{})
	router := handler.Routes()

	for _, amount := range []string{"0", "-5", "1.999", "abc", ""} {
		body := []byte(`{"account_id":"acc-1","category_id":"cat-1","amount":"` + amount + `","type":"EXPENSE"}`)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authedRequest(t, http.MethodPost, "/transactions/", body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: expected 400, got %d", amount, rr.Code)
		}
	}
}

func TestListTransactionsBuildsFilter(t *testing.T) {
	var captured store.TransactionFilter
	ledger := stubLedger{
		listFn: func(_ context.Context, _ string, filter store.TransactionFilter) ([]models.Transaction, error) {
			captured = filter
			return nil, nil
		},
	}
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubCategoryStore{}, stubRateStore{}, ledger, stubAccounts{}, stubBudgets{}, stubRecurring{})
	router := handler.Routes()

	rr := httptest.NewRecorder()
	target := "/transactions/?category=Groceries&type=EXPENSE&min_amount=10.00&max_amount=100.00&start_date=2024-03-01&end_date=2024-03-31&account=Checking"
	router.ServeHTTP(rr, authedRequest(t, http.MethodGet, target, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured.Category != "Groceries" || captured.AccountName != "Checking" {
		t.Fatalf("unexpected filter %+v", captured)
	}
	if captured.Type != models.Expense {
		t.Fatalf("expected EXPENSE filter, got %s", captured.Type)
	}
	if captured.MinAmount == nil || captured.MaxAmount == nil {
		t.Fatal("expected amount bounds")
	}
	if captured.StartDate == nil || captured.EndDate == nil {
		t.Fatal("expected date bounds")
	}
}

func TestListTransactionsRejectsBadType(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubCategoryStore{}, stubRateStore{}, stubLedger{}, stubAccounts{}, stubBudgets{}, stubRecurring{})
	router := handler.Routes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodGet, "/transactions/?type=REFUND", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	ledger := stubLedger{
		deleteFn: func(context.Context, string, string) error {
			return services.ErrTransactionNotFound
		},
	}
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubCategoryStore{}, stubRateStore{}, ledger, stubAccounts{}, stubBudgets{}, stubRecurring{})
	router := handler.Routes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodDelete, "/transactions/tx-404", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestEditTransactionPassesPatch(t *testing.T) {
	var captured services.EditTransactionRequest
	ledger := stubLedger{
		editFn: func(_ context.Context, transactionID, userID string, req services.EditTransactionRequest) (models.Transaction, error) {
			if transactionID != "tx-1" || userID != "user-1" {
				t.Fatalf("unexpected identifiers %q %q", transactionID, userID)
			}
			captured = req
			return models.Transaction{ID: transactionID}, nil
		},
	}
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubCategoryStore{}, stubRateStore{}, ledger, stubAccounts{}, stubBudgets{}, stubRecurring{})
	router := handler.Routes()

	body := []byte(`{"price":"25.00","description":"corrected"}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodPut, "/transactions/tx-1", body))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured.Price == nil || !captured.Price.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected price 25.00, got %v", captured.Price)
	}
	if captured.Description == nil || *captured.Description != "corrected" {
		t.Fatalf("expected description patch, got %v", captured.Description)
	}
	if captured.CategoryID != nil || captured.OccurredOn != nil {
		t.Fatal("expected untouched fields to stay nil")
	}
}

func TestPeriodFromQueryDefaultWindow(t *testing.T) {
	start, end, err := periodFromQuery(map[string][]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Day() != 1 {
		t.Fatalf("expected window to open on the 1st, got %s", start)
	}
	// Inclusive bounds: the window closes on the month's last day, not on
	// the 1st of the next month.
	if !end.AddDate(0, 0, 1).Equal(start.AddDate(0, 1, 0)) {
		t.Fatalf("expected end on the last day of the month, got %s", end)
	}
	if got := end.Sub(start); got < 27*24*time.Hour || got > 30*24*time.Hour {
		t.Fatalf("unexpected window length: %s", got)
	}
}

func TestPeriodFromQueryExplicitBounds(t *testing.T) {
	start, end, err := periodFromQuery(map[string][]string{
		"start_date": {"2024-03-01"},
		"end_date":   {"2024-03-15"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %s", start)
	}
	if !end.Equal(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %s", end)
	}
}

func TestGetOverviewDefaultsToExpense(t *testing.T) {
	var capturedType models.TransactionType
	ledger := stubLedger{
		overviewFn: func(_ context.Context, _ string, _, _ time.Time, txType models.TransactionType) (services.Overview, error) {
			capturedType = txType
			return services.Overview{}, nil
		},
	}
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubCategoryStore{}, stubRateStore{}, ledger, stubAccounts{}, stubBudgets{}, stubRecurring{})
	router := handler.Routes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(t, http.MethodGet, "/transactions/overview", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if capturedType != models.Expense {
		t.Fatalf("expected EXPENSE default, got %s", capturedType)
	}
}
