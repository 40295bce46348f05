package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/db"
	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/store"
)

// TransactionPoster is the ledger posting path the schedule engine drives.
type TransactionPoster interface {
	PostInTx(ctx context.Context, tx store.Tx, req PostTransactionRequest) (PostResult, error)
}

// RecurringService materializes journal entries from recurring templates.
// Each run advances a due template by exactly one period; missed periods
// are not backfilled beyond the single next occurrence.
type RecurringService struct {
	txRunner   db.TxRunner
	templates  RecurringStore
	accounts   AccountStore
	categories CategoryStore
	ledger     TransactionPoster
	log        zerolog.Logger
}

func NewRecurringService(txRunner db.TxRunner, templates RecurringStore, accounts AccountStore, categories CategoryStore, ledger TransactionPoster, log zerolog.Logger) *RecurringService {
	return &RecurringService{
		txRunner:   txRunner,
		templates:  templates,
		accounts:   accounts,
		categories: categories,
		ledger:     ledger,
		log:        log,
	}
}

type RecurringRequest struct {
	UserID      string
	AccountID   string
	CategoryID  string
	Amount      decimal.Decimal
	Type        models.TransactionType
	Description string
	PeriodType  models.PeriodType
	StartDate   *time.Time
}

// Create registers a template. An anchor date not in the future is
// materialized immediately through the ledger, then the anchor advances.
func (s *RecurringService) Create(ctx context.Context, req RecurringRequest) (models.RecurringTransaction, error) {
	if !req.PeriodType.Valid() || req.PeriodType == models.PeriodNone {
		return models.RecurringTransaction{}, ErrInvalidPeriodType
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return models.RecurringTransaction{}, ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return models.RecurringTransaction{}, ErrInvalidType
	}
	today := dateOnly(time.Now())
	anchor := today
	if req.StartDate != nil {
		anchor = dateOnly(*req.StartDate)
	}

	signed := req.Amount.Abs()
	if req.Type == models.Expense {
		signed = signed.Neg()
	}

	template := models.RecurringTransaction{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        req.Type,
		Amount:      signed,
		Description: req.Description,
		PeriodType:  req.PeriodType,
		NextDate:    anchor,
		Active:      true,
	}

	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if !anchor.After(today) {
			result, err := s.ledger.PostInTx(ctx, tx, PostTransactionRequest{
				UserID:      req.UserID,
				AccountID:   req.AccountID,
				CategoryID:  req.CategoryID,
				Amount:      req.Amount.Abs(),
				Type:        req.Type,
				Description: req.Description,
				OccurredOn:  &anchor,
			})
			if err != nil {
				return err
			}
			template.CategoryName = result.Transaction.CategoryName
			template.AccountName = result.Transaction.AccountName
			if req.PeriodType == models.PeriodOnce {
				template.Active = false
			} else {
				template.NextDate = Advance(anchor, req.PeriodType)
			}
		} else {
			account, err := s.accounts.GetByID(ctx, req.AccountID)
			if err != nil {
				return notFound(err, ErrAccountNotFound)
			}
			if err := requireOwner(account.UserID, req.UserID); err != nil {
				return err
			}
			category, err := s.categories.GetByID(ctx, req.CategoryID)
			if err != nil {
				return notFound(err, ErrCategoryNotFound)
			}
			template.AccountName = account.Name
			template.CategoryName = category.Name
		}
		return s.templates.Create(ctx, tx, store.RecurringInput{
			ID:           template.ID,
			UserID:       template.UserID,
			AccountID:    template.AccountID,
			CategoryID:   template.CategoryID,
			CategoryName: template.CategoryName,
			Type:         template.Type,
			Amount:       template.Amount,
			Description:  template.Description,
			PeriodType:   template.PeriodType,
			NextDate:     template.NextDate,
			Active:       template.Active,
		})
	})
	if err != nil {
		return models.RecurringTransaction{}, err
	}
	return template, nil
}

// RunReport tags the outcome of one scheduler pass.
type RunReport struct {
	Generated int
	Skipped   int
	Failed    int
}

// RunOnce processes every active template as of now. Each due template is
// materialized in its own transaction: the journal entry is dated with the
// template's anchor, and the anchor advances one period (ONCE templates
// deactivate instead). A failing template is logged and skipped; it never
// aborts the rest of the run.
func (s *RecurringService) RunOnce(ctx context.Context, now time.Time) (RunReport, error) {
	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return RunReport{}, err
	}
	today := dateOnly(now)
	var report RunReport
	for _, template := range templates {
		if dateOnly(template.NextDate).After(today) {
			report.Skipped++
			continue
		}
		if err := s.materializeOne(ctx, template); err != nil {
			report.Failed++
			s.log.Error().
				Err(err).
				Str("template_id", template.ID).
				Str("user_id", template.UserID).
				Msg("recurring materialization failed")
			continue
		}
		report.Generated++
	}
	s.log.Info().
		Int("generated", report.Generated).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("recurring run finished")
	return report, nil
}

func (s *RecurringService) materializeOne(ctx context.Context, template models.RecurringTransaction) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		due := dateOnly(template.NextDate)
		if _, err := s.ledger.PostInTx(ctx, tx, PostTransactionRequest{
			UserID:      template.UserID,
			AccountID:   template.AccountID,
			CategoryID:  template.CategoryID,
			Amount:      template.Amount.Abs(),
			Type:        template.Type,
			Description: template.Description,
			OccurredOn:  &due,
		}); err != nil {
			return err
		}
		if template.PeriodType == models.PeriodOnce {
			return s.templates.SetActive(ctx, tx, template.ID, false)
		}
		return s.templates.AdvanceDate(ctx, tx, template.ID, Advance(due, template.PeriodType))
	})
}

func (s *RecurringService) Get(ctx context.Context, recurringID, userID string) (models.RecurringTransaction, error) {
	template, err := s.templates.GetByID(ctx, recurringID)
	if err != nil {
		return models.RecurringTransaction{}, notFound(err, ErrRecurringNotFound)
	}
	if err := requireOwner(template.UserID, userID); err != nil {
		return models.RecurringTransaction{}, err
	}
	return template, nil
}

func (s *RecurringService) List(ctx context.Context, userID string, txType models.TransactionType) ([]models.RecurringTransaction, error) {
	return s.templates.ListByUser(ctx, userID, txType)
}

type EditRecurringRequest struct {
	CategoryID  *string
	Price       *decimal.Decimal
	Description *string
	NextDate    *time.Time
	PeriodType  *models.PeriodType
	AccountID   *string
}

// Edit patches a template. Changing a template never rewrites entries it
// already materialized.
func (s *RecurringService) Edit(ctx context.Context, recurringID, userID string, req EditRecurringRequest) (models.RecurringTransaction, error) {
	template, err := s.Get(ctx, recurringID, userID)
	if err != nil {
		return models.RecurringTransaction{}, err
	}
	if req.CategoryID != nil && *req.CategoryID != template.CategoryID {
		category, err := s.categories.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return models.RecurringTransaction{}, notFound(err, ErrCategoryNotFound)
		}
		template.CategoryID = category.ID
		template.CategoryName = category.Name
	}
	if req.Price != nil {
		if req.Price.LessThanOrEqual(decimal.Zero) {
			return models.RecurringTransaction{}, ErrInvalidAmount
		}
		signed := req.Price.Abs()
		if template.Type == models.Expense {
			signed = signed.Neg()
		}
		template.Amount = signed
	}
	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.NextDate != nil {
		template.NextDate = dateOnly(*req.NextDate)
	}
	if req.PeriodType != nil && *req.PeriodType != models.PeriodNone {
		if !req.PeriodType.Valid() {
			return models.RecurringTransaction{}, ErrInvalidPeriodType
		}
		template.PeriodType = *req.PeriodType
	}
	if req.AccountID != nil && *req.AccountID != template.AccountID {
		account, err := s.accounts.GetByID(ctx, *req.AccountID)
		if err != nil {
			return models.RecurringTransaction{}, notFound(err, ErrAccountNotFound)
		}
		if err := requireOwner(account.UserID, userID); err != nil {
			return models.RecurringTransaction{}, err
		}
		template.AccountID = account.ID
		template.AccountName = account.Name
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.templates.Update(ctx, tx, template.ID, store.RecurringInput{
			AccountID:    template.AccountID,
			CategoryID:   template.CategoryID,
			CategoryName: template.CategoryName,
			Amount:       template.Amount,
			Description:  template.Description,
			PeriodType:   template.PeriodType,
			NextDate:     template.NextDate,
		})
	})
	if err != nil {
		return models.RecurringTransaction{}, err
	}
	return template, nil
}

// ToggleActive flips the template on or off; inactive templates are never
// materialized.
func (s *RecurringService) ToggleActive(ctx context.Context, recurringID, userID string) error {
	template, err := s.Get(ctx, recurringID, userID)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.templates.SetActive(ctx, tx, template.ID, !template.Active)
	})
}

func (s *RecurringService) Delete(ctx context.Context, recurringID, userID string) error {
	if _, err := s.Get(ctx, recurringID, userID); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleted, err := s.templates.Delete(ctx, tx, recurringID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrRecurringNotFound
		}
		return nil
	})
}
