package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/db"
	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/money"
	"github.com/CountToFour/finance-mate/internal/store"
)

// AccountService owns account lifecycle. Balance changes are not part of
// it: only the ledger applies deltas, and update requests carrying a
// different balance or currency are rejected outright.
type AccountService struct {
	txRunner db.TxRunner
	accounts AccountStore
	rates    RateStore
	users    UserStore
	audit    AuditStore
}

func NewAccountService(txRunner db.TxRunner, accounts AccountStore, rates RateStore, users UserStore, audit AuditStore) *AccountService {
	return &AccountService{
		txRunner: txRunner,
		accounts: accounts,
		rates:    rates,
		users:    users,
		audit:    audit,
	}
}

type AccountRequest struct {
	Name         string
	Description  string
	Color        string
	CurrencyCode string
	Balance      decimal.Decimal
}

func (s *AccountService) Create(ctx context.Context, userID string, req AccountRequest) (models.Account, error) {
	currency, err := s.rates.GetCurrency(ctx, req.CurrencyCode)
	if err != nil {
		return models.Account{}, notFound(err, ErrCurrencyNotFound)
	}
	account := models.Account{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		Color:          req.Color,
		CurrencyCode:   currency.Code,
		Balance:        req.Balance,
		IncludeInStats: true,
		Archived:       false,
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, store.AccountInput{
			ID:             account.ID,
			UserID:         account.UserID,
			Name:           account.Name,
			Description:    account.Description,
			Color:          account.Color,
			CurrencyCode:   account.CurrencyCode,
			Balance:        account.Balance,
			IncludeInStats: account.IncludeInStats,
			Archived:       account.Archived,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"currency": account.CurrencyCode,
			"balance":  account.Balance.String(),
		})
		return s.audit.Log(ctx, tx, userID, "create_account", "account", account.ID, string(data))
	})
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, accountID, userID string) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, notFound(err, ErrAccountNotFound)
	}
	if err := requireOwner(account.UserID, userID); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *AccountService) List(ctx context.Context, userID string) ([]models.Account, error) {
	return s.accounts.ListByUser(ctx, userID)
}

// Update patches display metadata. A client-supplied balance or currency
// that differs from the stored one is an illegal operation: balances move
// only through the ledger, and an account's denomination is fixed.
func (s *AccountService) Update(ctx context.Context, accountID, userID string, req AccountRequest) (models.Account, error) {
	account, err := s.Get(ctx, accountID, userID)
	if err != nil {
		return models.Account{}, err
	}
	if !req.Balance.Equal(account.Balance) {
		return models.Account{}, ErrBalanceNotEditable
	}
	if req.CurrencyCode != account.CurrencyCode {
		return models.Account{}, ErrCurrencyNotEditable
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.accounts.UpdateDetails(ctx, tx, accountID, req.Name, req.Description, req.Color)
	})
	if err != nil {
		return models.Account{}, err
	}
	account.Name = req.Name
	account.Description = req.Description
	account.Color = req.Color
	return account, nil
}

// ToggleArchived flips the soft-delete flag; the balance is retained.
func (s *AccountService) ToggleArchived(ctx context.Context, accountID, userID string) error {
	account, err := s.Get(ctx, accountID, userID)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.accounts.SetArchived(ctx, tx, accountID, !account.Archived)
	})
}

func (s *AccountService) ToggleIncludeInStats(ctx context.Context, accountID, userID string) error {
	account, err := s.Get(ctx, accountID, userID)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.accounts.SetIncludeInStats(ctx, tx, accountID, !account.IncludeInStats)
	})
}

func (s *AccountService) Delete(ctx context.Context, accountID, userID string) error {
	if _, err := s.Get(ctx, accountID, userID); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Delete(ctx, tx, accountID); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, userID, "delete_account", "account", accountID, "{}")
	})
}

// TotalBalance sums the user's stats-included accounts converted into the
// user's main currency through directional rates, rounded for presentation.
func (s *AccountService) TotalBalance(ctx context.Context, userID string) (decimal.Decimal, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, "", notFound(err, ErrUserNotFound)
	}
	accounts, err := s.accounts.ListIncludedInStats(ctx, userID)
	if err != nil {
		return decimal.Zero, "", err
	}
	total := decimal.Zero
	for _, account := range accounts {
		if account.CurrencyCode == user.MainCurrency {
			total = total.Add(account.Balance)
			continue
		}
		rate, err := s.rates.GetRate(ctx, account.CurrencyCode, user.MainCurrency)
		if err != nil {
			return decimal.Zero, "", notFound(err, ErrRateNotFound)
		}
		total = total.Add(account.Balance.Mul(rate))
	}
	return money.Round2(total), user.MainCurrency, nil
}
