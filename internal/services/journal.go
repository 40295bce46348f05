package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/money"
	"github.com/CountToFour/finance-mate/internal/store"
	"github.com/CountToFour/finance-mate/internal/websocket"
)

// EditTransactionRequest patches a posted transaction. Nil fields are left
// untouched. Type is immutable after posting.
type EditTransactionRequest struct {
	CategoryID  *string
	Price       *decimal.Decimal
	Description *string
	OccurredOn  *time.Time
}

// EditTransaction applies a partial update. A price change adjusts the
// owning account's balance by the signed difference only, so the balance
// reflects the increment and not the new value.
func (s *LedgerService) EditTransaction(ctx context.Context, transactionID, userID string, req EditTransactionRequest) (models.Transaction, error) {
	if req.Price != nil && req.Price.LessThanOrEqual(decimal.Zero) {
		return models.Transaction{}, ErrInvalidAmount
	}
	var edited models.Transaction
	var balanceAfter decimal.Decimal
	var currency string
	var balanceChanged bool
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := s.journal.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if err := requireOwner(existing.UserID, userID); err != nil {
			return err
		}

		categoryID := existing.CategoryID
		categoryName := existing.CategoryName
		if req.CategoryID != nil && *req.CategoryID != existing.CategoryID {
			category, err := s.categories.GetByID(ctx, *req.CategoryID)
			if err != nil {
				return notFound(err, ErrCategoryNotFound)
			}
			categoryID = category.ID
			categoryName = category.Name
		}

		amount := existing.Amount
		if req.Price != nil && !req.Price.Abs().Equal(existing.Amount.Abs()) {
			newSigned := req.Price.Abs()
			if existing.Type == models.Expense {
				newSigned = newSigned.Neg()
			}
			delta := newSigned.Sub(existing.Amount)
			balanceAfter, currency, err = s.applyBalanceDelta(ctx, tx, existing.AccountID, existing.UserID, delta)
			if err != nil {
				return err
			}
			amount = newSigned
			balanceChanged = true
		}

		description := existing.Description
		if req.Description != nil {
			description = *req.Description
		}
		occurredOn := existing.OccurredOn
		if req.OccurredOn != nil {
			occurredOn = dateOnly(*req.OccurredOn)
		}

		if err := s.journal.Update(ctx, tx, existing.ID, categoryID, categoryName, amount, description, occurredOn); err != nil {
			return err
		}
		edited = existing
		edited.CategoryID = categoryID
		edited.CategoryName = categoryName
		edited.Amount = amount
		edited.Description = description
		edited.OccurredOn = occurredOn

		data, _ := json.Marshal(map[string]string{
			"amount": amount.String(),
		})
		return s.audit.Log(ctx, tx, userID, "edit_transaction", "transaction", existing.ID, string(data))
	})
	if err != nil {
		return models.Transaction{}, err
	}
	if balanceChanged {
		s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
			AccountID: edited.AccountID,
			Balance:   money.Format(balanceAfter),
			Currency:  currency,
		})
	}
	return edited, nil
}

// DeleteTransaction removes the journal entry only. Posted history is
// financially immutable: the account balance and budget spent are left as
// they were, and corrections are made by posting an offsetting transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, transactionID, userID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := s.journal.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if err := requireOwner(existing.UserID, userID); err != nil {
			return err
		}
		deleted, err := s.journal.Delete(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrTransactionNotFound
		}
		return s.audit.Log(ctx, tx, userID, "delete_transaction", "transaction", transactionID, "{}")
	})
}

// ListTransactions returns the user's journal entries matching the filter.
// Filters compose conjunctively; absent filters are no-ops.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]models.Transaction, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	return s.journal.ListByUser(ctx, userID, filter)
}

type Overview struct {
	Total          decimal.Decimal `json:"total"`
	DailyAverage   decimal.Decimal `json:"daily_average"`
	Count          int             `json:"count"`
	TotalChangePct decimal.Decimal `json:"total_change_pct"`
	CountChange    int             `json:"count_change"`
}

// GetOverview summarizes a period and compares it against the same window
// one month earlier.
func (s *LedgerService) GetOverview(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (Overview, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	if !exists {
		return Overview{}, ErrUserNotFound
	}
	current, err := s.journal.TotalsForPeriod(ctx, userID, start, end, txType)
	if err != nil {
		return Overview{}, err
	}
	previous, err := s.journal.TotalsForPeriod(ctx, userID, addMonthsClipped(start, -1), addMonthsClipped(end, -1), txType)
	if err != nil {
		return Overview{}, err
	}
	changePct := decimal.Zero
	if !previous.Total.IsZero() {
		changePct = current.Total.Div(previous.Total).Mul(decimal.NewFromInt(100)).Round(1).Sub(decimal.NewFromInt(100))
	}
	return Overview{
		Total:          money.Round2(current.Total),
		DailyAverage:   money.Round2(current.Total.Div(decimal.NewFromInt(30))),
		Count:          current.Count,
		TotalChangePct: changePct,
		CountChange:    current.Count - previous.Count,
	}, nil
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Share    decimal.Decimal `json:"share"`
}

// GetCategoryTotals breaks a period down per category, with each category's
// share of the transaction count.
func (s *LedgerService) GetCategoryTotals(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]CategoryAmount, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	totals, err := s.journal.TotalsByCategory(ctx, userID, start, end, txType)
	if err != nil {
		return nil, err
	}
	totalCount := 0
	for _, total := range totals {
		totalCount += total.Count
	}
	result := make([]CategoryAmount, 0, len(totals))
	for _, total := range totals {
		share := decimal.Zero
		if totalCount > 0 {
			share = decimal.NewFromInt(int64(total.Count)).Div(decimal.NewFromInt(int64(totalCount))).Round(4)
		}
		result = append(result, CategoryAmount{
			Category: total.Category,
			Total:    money.Round2(total.Total),
			Count:    total.Count,
			Share:    share,
		})
	}
	return result, nil
}
