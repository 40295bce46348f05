package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/models"
)

type RecurringStore struct {
	db DB
}

type RecurringInput struct {
	ID           string
	UserID       string
	AccountID    string
	CategoryID   string
	CategoryName string
	Type         models.TransactionType
	Amount       decimal.Decimal
	Description  string
	PeriodType   models.PeriodType
	NextDate     time.Time
	Active       bool
}

func NewRecurringStore(db DB) *RecurringStore {
	return &RecurringStore{db: db}
}

func (s *RecurringStore) Create(ctx context.Context, tx Execer, input RecurringInput) error {
	query := `
		INSERT INTO recurring_transactions (id, user_id, account_id, category_id, category_name, transaction_type, amount, description, period_type, next_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.AccountID, input.CategoryID, input.CategoryName,
		input.Type, input.Amount, input.Description, input.PeriodType, input.NextDate, input.Active,
	)
	return err
}

func (s *RecurringStore) GetByID(ctx context.Context, recurringID string) (models.RecurringTransaction, error) {
	var row models.RecurringTransaction
	err := s.db.GetContext(ctx, &row, `
		SELECT r.id, r.user_id, r.account_id, a.name AS account_name,
		       r.category_id, r.category_name, r.transaction_type, r.amount,
		       r.description, r.period_type, r.next_date, r.active, r.created_at
		FROM recurring_transactions r
		JOIN accounts a ON a.id = r.account_id
		WHERE r.id = $1
	`, recurringID)
	if err != nil {
		return models.RecurringTransaction{}, err
	}
	return row, nil
}

// ListActive returns every template the schedule engine considers on a run.
func (s *RecurringStore) ListActive(ctx context.Context) ([]models.RecurringTransaction, error) {
	var rows []models.RecurringTransaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.user_id, r.account_id, a.name AS account_name,
		       r.category_id, r.category_name, r.transaction_type, r.amount,
		       r.description, r.period_type, r.next_date, r.active, r.created_at
		FROM recurring_transactions r
		JOIN accounts a ON a.id = r.account_id
		WHERE r.active = TRUE
		ORDER BY r.next_date
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RecurringStore) ListByUser(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error) {
	query := `
		SELECT r.id, r.user_id, r.account_id, a.name AS account_name,
		       r.category_id, r.category_name, r.transaction_type, r.amount,
		       r.description, r.period_type, r.next_date, r.active, r.created_at
		FROM recurring_transactions r
		JOIN accounts a ON a.id = r.account_id
		WHERE r.user_id = $1
	`
	args := []any{userID}
	if txType != "" {
		query += " AND r.transaction_type = $2"
		args = append(args, txType)
	}
	query += " ORDER BY r.next_date"
	var rows []models.RecurringTransaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RecurringStore) AdvanceDate(ctx context.Context, tx Execer, recurringID string, nextDate time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE recurring_transactions SET next_date = $1 WHERE id = $2
	`, nextDate, recurringID)
	return err
}

func (s *RecurringStore) SetActive(ctx context.Context, tx Execer, recurringID string, active bool) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE recurring_transactions SET active = $1 WHERE id = $2
	`, active, recurringID)
	return err
}

func (s *RecurringStore) Update(ctx context.Context, tx Execer, recurringID string, input RecurringInput) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE recurring_transactions
		SET account_id = $1, category_id = $2, category_name = $3, amount = $4,
		    description = $5, period_type = $6, next_date = $7
		WHERE id = $8
	`, input.AccountID, input.CategoryID, input.CategoryName, input.Amount,
		input.Description, input.PeriodType, input.NextDate, recurringID)
	return err
}

func (s *RecurringStore) Delete(ctx context.Context, tx Execer, recurringID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = $1`, recurringID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
