package services

import (
	"database/sql"
	"errors"
)

// Domain errors the service layer exposes. Callers branch on these; any
// other error is an internal failure and surfaces untyped.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCurrencyNotFound    = errors.New("currency not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrRecurringNotFound   = errors.New("recurring transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrRateNotFound        = errors.New("exchange rate not found")

	ErrAccessDenied = errors.New("entity does not belong to user")

	ErrSameAccountTransfer  = errors.New("cannot transfer to the same account")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrBalanceNotEditable   = errors.New("balance cannot be changed directly")
	ErrCurrencyNotEditable  = errors.New("currency cannot be changed")
	ErrBudgetAlreadyExists  = errors.New("an open budget already exists for this category")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidPeriodType    = errors.New("period type must be specified for recurring transactions")
)

// notFound translates the store's no-rows result into the matching domain
// error, leaving unexpected failures untouched.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
