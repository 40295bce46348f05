package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/models"
)

type BudgetStore struct {
	db DB
}

type BudgetInput struct {
	ID           string
	UserID       string
	CategoryID   string
	CategoryName string
	PeriodType   models.PeriodType
	StartDate    time.Time
	EndDate      time.Time
	Amount       decimal.Decimal
}

func NewBudgetStore(db DB) *BudgetStore {
	return &BudgetStore{db: db}
}

// CreateOpen inserts an OPEN budget. The partial unique index on
// (user_id, category_id) WHERE status = 'OPEN' backs the at-most-one-open
// invariant; this is the only insertion path for budgets.
func (s *BudgetStore) CreateOpen(ctx context.Context, tx Execer, input BudgetInput) error {
	query := `
		INSERT INTO budgets (id, user_id, category_id, category_name, period_type, start_date, end_date, amount, spent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 'OPEN')
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.CategoryID, input.CategoryName,
		input.PeriodType, input.StartDate, input.EndDate, input.Amount,
	)
	return err
}

func (s *BudgetStore) GetByID(ctx context.Context, budgetID string) (models.Budget, error) {
	var row models.Budget
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, category_id, category_name, period_type, start_date, end_date, amount, spent, status, created_at
		FROM budgets
		WHERE id = $1
	`, budgetID)
	if err != nil {
		return models.Budget{}, err
	}
	return row, nil
}

// GetOpenForUpdate locks the single OPEN budget for a category so spent
// accumulation serializes with concurrent expense postings.
func (s *BudgetStore) GetOpenForUpdate(ctx context.Context, tx Getter, userID, categoryID string) (models.Budget, error) {
	var row models.Budget
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, category_id, category_name, period_type, start_date, end_date, amount, spent, status, created_at
		FROM budgets
		WHERE user_id = $1 AND category_id = $2 AND status = 'OPEN'
		FOR UPDATE
	`, userID, categoryID)
	if err != nil {
		return models.Budget{}, err
	}
	return row, nil
}

func (s *BudgetStore) ListByUser(ctx context.Context, userID string) ([]models.Budget, error) {
	var rows []models.Budget
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, category_id, category_name, period_type, start_date, end_date, amount, spent, status, created_at
		FROM budgets
		WHERE user_id = $1
		ORDER BY start_date DESC, category_name
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BudgetStore) AddSpent(ctx context.Context, tx Execer, budgetID string, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE budgets SET spent = spent + $1 WHERE id = $2
	`, amount, budgetID)
	return err
}

func (s *BudgetStore) UpdateLimit(ctx context.Context, tx Execer, budgetID string, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE budgets SET amount = $1 WHERE id = $2
	`, amount, budgetID)
	return err
}

func (s *BudgetStore) CloseExpired(ctx context.Context, tx Execer, asOf time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE budgets SET status = 'CLOSED' WHERE status = 'OPEN' AND end_date < $1
	`, asOf)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *BudgetStore) Delete(ctx context.Context, tx Execer, budgetID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, budgetID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
