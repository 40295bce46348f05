package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/models"
)

type AccountStore struct {
	db DB
}

type AccountInput struct {
	ID             string
	UserID         string
	Name           string
	Description    string
	Color          string
	CurrencyCode   string
	Balance        decimal.Decimal
	IncludeInStats bool
	Archived       bool
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, input AccountInput) error {
	query := `
		INSERT INTO accounts (id, user_id, name, description, color, currency_code, balance, include_in_stats, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.Name, input.Description, input.Color,
		input.CurrencyCode, input.Balance, input.IncludeInStats, input.Archived,
	)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, description, color, currency_code, balance, include_in_stats, archived, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

// GetForUpdate locks the account row for the duration of the transaction.
// Every balance mutation goes through this read first.
func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, name, description, color, currency_code, balance, include_in_stats, archived, created_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, description, color, currency_code, balance, include_in_stats, archived, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) ListIncludedInStats(ctx context.Context, userID string) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, description, color, currency_code, balance, include_in_stats, archived, created_at
		FROM accounts
		WHERE user_id = $1 AND include_in_stats = TRUE AND archived = FALSE
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, accountID string, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	return err
}

func (s *AccountStore) UpdateDetails(ctx context.Context, tx Execer, accountID, name, description, color string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET name = $1, description = $2, color = $3, updated_at = NOW()
		WHERE id = $4
	`, name, description, color, accountID)
	return err
}

func (s *AccountStore) SetArchived(ctx context.Context, tx Execer, accountID string, archived bool) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts SET archived = $1, updated_at = NOW() WHERE id = $2
	`, archived, accountID)
	return err
}

func (s *AccountStore) SetIncludeInStats(ctx context.Context, tx Execer, accountID string, include bool) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts SET include_in_stats = $1, updated_at = NOW() WHERE id = $2
	`, include, accountID)
	return err
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	return err
}
