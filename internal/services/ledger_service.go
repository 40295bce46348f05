package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/db"
	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/money"
	"github.com/CountToFour/finance-mate/internal/store"
	"github.com/CountToFour/finance-mate/internal/websocket"
)

// LedgerService is the only mutator of account balances. Posting, transfers
// and edits stage the balance write, the journal write and the budget update
// inside one serializable transaction, so either all land or none do.
type LedgerService struct {
	txRunner   db.TxRunner
	accounts   AccountStore
	categories CategoryStore
	journal    TransactionStore
	rates      RateStore
	budgets    BudgetRecorder
	users      UserStore
	audit      AuditStore
	hub        BalanceHub
}

// BudgetRecorder accumulates expense spend inside the posting transaction.
type BudgetRecorder interface {
	RecordExpense(ctx context.Context, tx store.Tx, userID string, category models.Category, occurredOn time.Time, amount decimal.Decimal) error
}

func NewLedgerService(txRunner db.TxRunner, accounts AccountStore, categories CategoryStore, journal TransactionStore, rates RateStore, budgets BudgetRecorder, users UserStore, audit AuditStore, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:   txRunner,
		accounts:   accounts,
		categories: categories,
		journal:    journal,
		rates:      rates,
		budgets:    budgets,
		users:      users,
		audit:      audit,
		hub:        hub,
	}
}

type PostTransactionRequest struct {
	UserID      string
	AccountID   string
	CategoryID  string
	Amount      decimal.Decimal
	Type        models.TransactionType
	Description string
	OccurredOn  *time.Time
}

// PostResult carries what a posting changed: the journal entry plus the
// account balance it left behind.
type PostResult struct {
	Transaction  models.Transaction
	BalanceAfter decimal.Decimal
	Currency     string
}

// PostTransaction validates ownership, normalizes the sign, applies the
// balance delta and appends the journal entry as one atomic unit. EXPENSE
// postings also accumulate the open budget for the category.
func (s *LedgerService) PostTransaction(ctx context.Context, req PostTransactionRequest) (models.Transaction, error) {
	var result PostResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = s.PostInTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		AccountID: result.Transaction.AccountID,
		Balance:   money.Format(result.BalanceAfter),
		Currency:  result.Currency,
	})
	return result.Transaction, nil
}

// PostInTx is the posting path shared with the recurring schedule engine,
// which wraps each template materialization in its own transaction.
func (s *LedgerService) PostInTx(ctx context.Context, tx store.Tx, req PostTransactionRequest) (PostResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return PostResult{}, ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return PostResult{}, ErrInvalidType
	}
	account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
	if err != nil {
		return PostResult{}, notFound(err, ErrAccountNotFound)
	}
	if err := requireOwner(account.UserID, req.UserID); err != nil {
		return PostResult{}, err
	}
	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return PostResult{}, notFound(err, ErrCategoryNotFound)
	}

	signed := req.Amount.Abs()
	if req.Type == models.Expense {
		signed = signed.Neg()
	}
	occurredOn := dateOnly(time.Now())
	if req.OccurredOn != nil {
		occurredOn = dateOnly(*req.OccurredOn)
	}

	balanceAfter := account.Balance.Add(signed)
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, balanceAfter); err != nil {
		return PostResult{}, err
	}

	entry := store.TransactionInput{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		AccountID:    account.ID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Type:         req.Type,
		Amount:       signed,
		Description:  req.Description,
		OccurredOn:   occurredOn,
	}
	if err := s.journal.Insert(ctx, tx, entry); err != nil {
		return PostResult{}, err
	}

	if req.Type == models.Expense {
		if err := s.budgets.RecordExpense(ctx, tx, req.UserID, category, occurredOn, signed.Abs()); err != nil {
			return PostResult{}, err
		}
	}

	data, _ := json.Marshal(map[string]string{
		"account_id": account.ID,
		"amount":     signed.String(),
		"type":       string(req.Type),
	})
	if err := s.audit.Log(ctx, tx, req.UserID, "post_transaction", "transaction", entry.ID, string(data)); err != nil {
		return PostResult{}, err
	}

	return PostResult{
		Transaction: models.Transaction{
			ID:           entry.ID,
			UserID:       entry.UserID,
			AccountID:    entry.AccountID,
			AccountName:  account.Name,
			CategoryID:   entry.CategoryID,
			CategoryName: entry.CategoryName,
			Type:         entry.Type,
			Amount:       entry.Amount,
			Description:  entry.Description,
			OccurredOn:   entry.OccurredOn,
		},
		BalanceAfter: balanceAfter,
		Currency:     account.CurrencyCode,
	}, nil
}

type TransferRequest struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

// Transfer moves value between two of the user's accounts, converting
// through the directional rate when currencies differ. Transfers are
// balance-only: no journal entry is written, by contract.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) error {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return ErrSameAccountTransfer
	}
	var fromAfter, toAfter decimal.Decimal
	var fromCurrency, toCurrency string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		fromAccount, toAccount, err := s.lockTwoAccounts(ctx, tx, req.FromAccountID, req.ToAccountID)
		if err != nil {
			return notFound(err, ErrAccountNotFound)
		}
		if err := requireOwner(fromAccount.UserID, req.UserID); err != nil {
			return err
		}
		if err := requireOwner(toAccount.UserID, req.UserID); err != nil {
			return err
		}
		// Sufficiency is checked in the source currency, before conversion.
		if fromAccount.Balance.LessThan(req.Amount) {
			return ErrInsufficientFunds
		}
		converted := req.Amount
		if fromAccount.CurrencyCode != toAccount.CurrencyCode {
			rate, err := s.rates.GetRate(ctx, fromAccount.CurrencyCode, toAccount.CurrencyCode)
			if err != nil {
				return notFound(err, ErrRateNotFound)
			}
			converted = req.Amount.Mul(rate)
		}
		fromAfter = fromAccount.Balance.Sub(req.Amount)
		toAfter = toAccount.Balance.Add(converted)
		fromCurrency = fromAccount.CurrencyCode
		toCurrency = toAccount.CurrencyCode
		if err := s.accounts.UpdateBalance(ctx, tx, fromAccount.ID, fromAfter); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, toAccount.ID, toAfter); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"from_account_id": fromAccount.ID,
			"to_account_id":   toAccount.ID,
			"amount":          req.Amount.String(),
			"converted":       converted.String(),
		})
		return s.audit.Log(ctx, tx, req.UserID, "transfer", "account", fromAccount.ID, string(data))
	})
	if err != nil {
		return err
	}
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		AccountID: req.FromAccountID,
		Balance:   money.Format(fromAfter),
		Currency:  fromCurrency,
	})
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		AccountID: req.ToAccountID,
		Balance:   money.Format(toAfter),
		Currency:  toCurrency,
	})
	return nil
}

// applyBalanceDelta is the low-level primitive behind edits. Not exposed
// as a public set-balance operation.
func (s *LedgerService) applyBalanceDelta(ctx context.Context, tx store.Tx, accountID, userID string, delta decimal.Decimal) (decimal.Decimal, string, error) {
	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, "", notFound(err, ErrAccountNotFound)
	}
	if err := requireOwner(account.UserID, userID); err != nil {
		return decimal.Zero, "", err
	}
	balanceAfter := account.Balance.Add(delta)
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, balanceAfter); err != nil {
		return decimal.Zero, "", err
	}
	return balanceAfter, account.CurrencyCode, nil
}

// lockTwoAccounts takes FOR UPDATE locks in a stable ID order so two
// concurrent transfers over the same pair cannot deadlock.
func (s *LedgerService) lockTwoAccounts(ctx context.Context, tx store.Getter, firstID, secondID string) (models.Account, models.Account, error) {
	leftID, rightID := firstID, secondID
	if rightID < leftID {
		leftID, rightID = rightID, leftID
	}
	left, err := s.accounts.GetForUpdate(ctx, tx, leftID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	right, err := s.accounts.GetForUpdate(ctx, tx, rightID)
	if err != nil {
		return models.Account{}, models.Account{}, err
	}
	if firstID == leftID {
		return left, right, nil
	}
	return right, left, nil
}
