package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/CountToFour/finance-mate/internal/models"
)

// RateStore is the currency-pair lookup the ledger consumes. Rates are
// directional: A->B and B->A are independent rows, never reciprocals.
type RateStore struct {
	db DB
}

func NewRateStore(db DB) *RateStore {
	return &RateStore{db: db}
}

func (s *RateStore) GetRate(ctx context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.db.GetContext(ctx, &rate, `
		SELECT rate
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2
	`, fromCurrency, toCurrency)
	if err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

// SetRate upserts one direction only; the caller is an external collaborator
// fetching each direction as an independent market quote.
func (s *RateStore) SetRate(ctx context.Context, tx Execer, fromCurrency, toCurrency string, rate decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (from_currency, to_currency)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()
	`, fromCurrency, toCurrency, rate)
	return err
}

func (s *RateStore) ListRates(ctx context.Context) ([]models.ExchangeRate, error) {
	var rows []models.ExchangeRate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT from_currency, to_currency, rate, updated_at
		FROM exchange_rates
		ORDER BY from_currency, to_currency
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RateStore) GetCurrency(ctx context.Context, code string) (models.Currency, error) {
	var row models.Currency
	err := s.db.GetContext(ctx, &row, `
		SELECT code, name, symbol FROM currencies WHERE code = $1
	`, code)
	if err != nil {
		return models.Currency{}, err
	}
	return row, nil
}

func (s *RateStore) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	var rows []models.Currency
	err := s.db.SelectContext(ctx, &rows, `
		SELECT code, name, symbol FROM currencies ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
