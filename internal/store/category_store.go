package store

import (
	"context"

	"github.com/CountToFour/finance-mate/internal/models"
)

// CategoryStore is the read surface the ledger consumes. Category CRUD
// itself lives with the categories feature, not the ledger core.
type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) GetByID(ctx context.Context, categoryID string) (models.Category, error) {
	var row models.Category
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, group_name, color
		FROM categories
		WHERE id = $1
	`, categoryID)
	if err != nil {
		return models.Category{}, err
	}
	return row, nil
}

func (s *CategoryStore) ListByUser(ctx context.Context, userID string) ([]models.Category, error) {
	var rows []models.Category
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, group_name, color
		FROM categories
		WHERE user_id = $1
		ORDER BY group_name, name
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
