package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/db"
	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/store"
)

// BudgetService tracks per-category spending limits. There is at most one
// OPEN budget per (user, category); CreateOpen is the only insertion path,
// so the invariant is enforced in exactly one place.
type BudgetService struct {
	txRunner   db.TxRunner
	budgets    BudgetStore
	categories CategoryStore
}

func NewBudgetService(txRunner db.TxRunner, budgets BudgetStore, categories CategoryStore) *BudgetService {
	return &BudgetService{
		txRunner:   txRunner,
		budgets:    budgets,
		categories: categories,
	}
}

type BudgetRequest struct {
	CategoryID string
	Amount     decimal.Decimal
	StartDate  *time.Time
}

func (s *BudgetService) Create(ctx context.Context, userID string, req BudgetRequest) (models.Budget, error) {
	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return models.Budget{}, notFound(err, ErrCategoryNotFound)
	}
	start := dateOnly(time.Now())
	if req.StartDate != nil {
		start = dateOnly(*req.StartDate)
	}
	budget := models.Budget{
		ID:           uuid.NewString(),
		UserID:       userID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		PeriodType:   models.PeriodMonthly,
		StartDate:    start,
		EndDate:      addMonthsClipped(start, 1),
		Amount:       req.Amount,
		Spent:        decimal.Zero,
		Status:       models.BudgetOpen,
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := s.budgets.GetOpenForUpdate(ctx, tx, userID, category.ID)
		if err == nil {
			return ErrBudgetAlreadyExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return s.budgets.CreateOpen(ctx, tx, store.BudgetInput{
			ID:           budget.ID,
			UserID:       budget.UserID,
			CategoryID:   budget.CategoryID,
			CategoryName: budget.CategoryName,
			PeriodType:   budget.PeriodType,
			StartDate:    budget.StartDate,
			EndDate:      budget.EndDate,
			Amount:       budget.Amount,
		})
	})
	if err != nil {
		return models.Budget{}, err
	}
	return budget, nil
}

// RecordExpense accumulates spend on the category's open budget inside the
// posting transaction. Only expenses dated inside the budget's period count;
// a posting dated outside the open window leaves spent untouched. A category
// with no open budget gets a zero-limit one created on the spot, anchored at
// the expense date, so the expense is never silently dropped.
func (s *BudgetService) RecordExpense(ctx context.Context, tx store.Tx, userID string, category models.Category, occurredOn time.Time, amount decimal.Decimal) error {
	day := dateOnly(occurredOn)
	budget, err := s.budgets.GetOpenForUpdate(ctx, tx, userID, category.ID)
	if errors.Is(err, sql.ErrNoRows) {
		start := day
		budget = models.Budget{
			ID:           uuid.NewString(),
			UserID:       userID,
			CategoryID:   category.ID,
			CategoryName: category.Name,
			PeriodType:   models.PeriodMonthly,
			StartDate:    start,
			EndDate:      addMonthsClipped(start, 1),
			Amount:       decimal.Zero,
		}
		if err := s.budgets.CreateOpen(ctx, tx, store.BudgetInput{
			ID:           budget.ID,
			UserID:       budget.UserID,
			CategoryID:   budget.CategoryID,
			CategoryName: budget.CategoryName,
			PeriodType:   budget.PeriodType,
			StartDate:    budget.StartDate,
			EndDate:      budget.EndDate,
			Amount:       budget.Amount,
		}); err != nil {
			return err
		}
	} else if err != nil {
		return err
	} else if day.Before(budget.StartDate) || day.After(budget.EndDate) {
		return nil
	}
	return s.budgets.AddSpent(ctx, tx, budget.ID, amount)
}

func (s *BudgetService) Get(ctx context.Context, budgetID, userID string) (models.Budget, error) {
	budget, err := s.budgets.GetByID(ctx, budgetID)
	if err != nil {
		return models.Budget{}, notFound(err, ErrBudgetNotFound)
	}
	if err := requireOwner(budget.UserID, userID); err != nil {
		return models.Budget{}, err
	}
	return budget, nil
}

func (s *BudgetService) List(ctx context.Context, userID string) ([]models.Budget, error) {
	return s.budgets.ListByUser(ctx, userID)
}

func (s *BudgetService) UpdateLimit(ctx context.Context, budgetID, userID string, amount decimal.Decimal) (models.Budget, error) {
	budget, err := s.Get(ctx, budgetID, userID)
	if err != nil {
		return models.Budget{}, err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.budgets.UpdateLimit(ctx, tx, budgetID, amount)
	})
	if err != nil {
		return models.Budget{}, err
	}
	budget.Amount = amount
	return budget, nil
}

func (s *BudgetService) Delete(ctx context.Context, budgetID, userID string) error {
	if _, err := s.Get(ctx, budgetID, userID); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleted, err := s.budgets.Delete(ctx, tx, budgetID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrBudgetNotFound
		}
		return nil
	})
}

// CloseExpired closes every open budget whose period has ended. Rollover to
// the next period is deliberately not performed.
func (s *BudgetService) CloseExpired(ctx context.Context, asOf time.Time) (int64, error) {
	var closed int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		closed, err = s.budgets.CloseExpired(ctx, tx, dateOnly(asOf))
		return err
	})
	return closed, err
}
