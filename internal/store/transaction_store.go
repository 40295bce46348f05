package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/models"
)

// TransactionStore is the journal: one signed row per monetary event,
// denominated in the owning account's currency.
type TransactionStore struct {
	db DB
}

type TransactionInput struct {
	ID           string
	UserID       string
	AccountID    string
	CategoryID   string
	CategoryName string
	Type         models.TransactionType
	Amount       decimal.Decimal
	Description  string
	OccurredOn   time.Time
}

// TransactionFilter composes conjunctively; zero-valued fields are no-ops.
type TransactionFilter struct {
	Category    string
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Type        models.TransactionType
	AccountName string
}

type CategoryTotal struct {
	Category string          `db:"category_name"`
	Total    decimal.Decimal `db:"total"`
	Count    int             `db:"count"`
}

type OverviewTotals struct {
	Total decimal.Decimal `db:"total"`
	Count int             `db:"count"`
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Insert(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, category_id, category_name, transaction_type, amount, description, occurred_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.AccountID, input.CategoryID, input.CategoryName,
		input.Type, input.Amount, input.Description, input.OccurredOn,
	)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT t.id, t.user_id, t.account_id, a.name AS account_name,
		       t.category_id, t.category_name, t.transaction_type, t.amount,
		       t.description, t.occurred_on, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = $1
	`, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// GetForUpdate locks the journal row so a concurrent edit of the same
// transaction cannot interleave with the paired balance adjustment.
func (s *TransactionStore) GetForUpdate(ctx context.Context, tx Getter, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT t.id, t.user_id, t.account_id, a.name AS account_name,
		       t.category_id, t.category_name, t.transaction_type, t.amount,
		       t.description, t.occurred_on, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) Update(ctx context.Context, tx Execer, transactionID string, categoryID, categoryName string, amount decimal.Decimal, description string, occurredOn time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = $1, category_name = $2, amount = $3, description = $4, occurred_on = $5
		WHERE id = $6
	`, categoryID, categoryName, amount, description, occurredOn, transactionID)
	return err
}

func (s *TransactionStore) Delete(ctx context.Context, tx Execer, transactionID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.user_id, t.account_id, a.name AS account_name,
		       t.category_id, t.category_name, t.transaction_type, t.amount,
		       t.description, t.occurred_on, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.user_id = $1
	`
	args := []any{userID}
	param := 2
	if filter.Category != "" {
		query += " AND t.category_name = $" + itoa(param)
		args = append(args, filter.Category)
		param++
	}
	if filter.MinAmount != nil {
		query += " AND ABS(t.amount) >= $" + itoa(param)
		args = append(args, *filter.MinAmount)
		param++
	}
	if filter.MaxAmount != nil {
		query += " AND ABS(t.amount) <= $" + itoa(param)
		args = append(args, *filter.MaxAmount)
		param++
	}
	if filter.StartDate != nil {
		query += " AND t.occurred_on >= $" + itoa(param)
		args = append(args, *filter.StartDate)
		param++
	}
	if filter.EndDate != nil {
		query += " AND t.occurred_on <= $" + itoa(param)
		args = append(args, *filter.EndDate)
		param++
	}
	if filter.Type != "" {
		query += " AND t.transaction_type = $" + itoa(param)
		args = append(args, filter.Type)
		param++
	}
	if filter.AccountName != "" {
		query += " AND a.name = $" + itoa(param)
		args = append(args, filter.AccountName)
		param++
	}
	query += " ORDER BY t.occurred_on DESC, t.created_at DESC"
	var rows []models.Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) TotalsForPeriod(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) (OverviewTotals, error) {
	var row OverviewTotals
	err := s.db.GetContext(ctx, &row, `
		SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM transactions
		WHERE user_id = $1 AND transaction_type = $2 AND occurred_on BETWEEN $3 AND $4
	`, userID, txType, start, end)
	if err != nil {
		return OverviewTotals{}, err
	}
	return row, nil
}

func (s *TransactionStore) TotalsByCategory(ctx context.Context, userID string, start, end time.Time, txType models.TransactionType) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := s.db.SelectContext(ctx, &rows, `
		SELECT category_name, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM transactions
		WHERE user_id = $1 AND transaction_type = $2 AND occurred_on BETWEEN $3 AND $4
		GROUP BY category_name
		ORDER BY category_name
	`, userID, txType, start, end)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func itoa(value int) string {
	return fmt.Sprintf("%d", value)
}
