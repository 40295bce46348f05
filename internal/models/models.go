package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Expense TransactionType = "EXPENSE"
	Income  TransactionType = "INCOME"
)

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

type PeriodType string

const (
	PeriodNone    PeriodType = "NONE"
	PeriodOnce    PeriodType = "ONCE"
	PeriodDaily   PeriodType = "DAILY"
	PeriodWeekly  PeriodType = "WEEKLY"
	PeriodMonthly PeriodType = "MONTHLY"
	PeriodYearly  PeriodType = "YEARLY"
)

func (p PeriodType) Valid() bool {
	switch p {
	case PeriodNone, PeriodOnce, PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

type BudgetStatus string

const (
	BudgetOpen   BudgetStatus = "OPEN"
	BudgetClosed BudgetStatus = "CLOSED"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	MainCurrency string    `db:"main_currency" json:"main_currency"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Currency struct {
	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`
	Symbol string `db:"symbol" json:"symbol"`
}

// ExchangeRate is a directional market quote. The reverse direction is a
// separate row, never derived as a reciprocal.
type ExchangeRate struct {
	FromCurrency string          `db:"from_currency" json:"from_currency"`
	ToCurrency   string          `db:"to_currency" json:"to_currency"`
	Rate         decimal.Decimal `db:"rate" json:"rate"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

type Category struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"user_id"`
	Name      string `db:"name" json:"name"`
	GroupName string `db:"group_name" json:"group_name"`
	Color     string `db:"color" json:"color"`
}

type Account struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"user_id"`
	Name           string          `db:"name" json:"name"`
	Description    string          `db:"description" json:"description"`
	Color          string          `db:"color" json:"color"`
	CurrencyCode   string          `db:"currency_code" json:"currency_code"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	IncludeInStats bool            `db:"include_in_stats" json:"include_in_stats"`
	Archived       bool            `db:"archived" json:"archived"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Transaction is a single signed monetary event: negative for EXPENSE,
// positive for INCOME, always denominated in the owning account's currency.
type Transaction struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	AccountID    string          `db:"account_id" json:"account_id"`
	AccountName  string          `db:"account_name" json:"account_name"`
	CategoryID   string          `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name"`
	Type         TransactionType `db:"transaction_type" json:"transaction_type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Description  string          `db:"description" json:"description"`
	OccurredOn   time.Time       `db:"occurred_on" json:"occurred_on"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// RecurringTransaction is a template that the schedule engine materializes
// into Transactions. NextDate is the anchor the engine advances.
type RecurringTransaction struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	AccountID    string          `db:"account_id" json:"account_id"`
	AccountName  string          `db:"account_name" json:"account_name"`
	CategoryID   string          `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name"`
	Type         TransactionType `db:"transaction_type" json:"transaction_type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Description  string          `db:"description" json:"description"`
	PeriodType   PeriodType      `db:"period_type" json:"period_type"`
	NextDate     time.Time       `db:"next_date" json:"next_date"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

type Budget struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	CategoryID   string          `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name"`
	PeriodType   PeriodType      `db:"period_type" json:"period_type"`
	StartDate    time.Time       `db:"start_date" json:"start_date"`
	EndDate      time.Time       `db:"end_date" json:"end_date"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Spent        decimal.Decimal `db:"spent" json:"spent"`
	Status       BudgetStatus    `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Exceeded reports whether spending passed the limit. It is derived state,
// never a gate: posting past the limit is allowed.
func (b Budget) Exceeded() bool {
	return b.Spent.Sub(b.Amount).GreaterThan(decimal.Zero)
}
