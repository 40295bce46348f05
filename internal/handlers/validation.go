package handlers

import (
	"errors"
	"time"

	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/money"

	"github.com/shopspring/decimal"
)

var errInvalidAmount = errors.New("invalid amount")
var errInvalidRate = errors.New("invalid rate")
var errInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
var errInvalidType = errors.New("invalid transaction type")

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := money.ParsePositive(raw)
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}
	return amount, nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errInvalidRate
	}
	if rate.Exponent() < -6 {
		return decimal.Zero, errInvalidRate
	}
	return rate, nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return date, nil
}

// parseType accepts an empty string as "no filter".
func parseType(raw string) (models.TransactionType, error) {
	if raw == "" {
		return "", nil
	}
	txType := models.TransactionType(raw)
	if !txType.Valid() {
		return "", errInvalidType
	}
	return txType, nil
}
