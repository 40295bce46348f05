package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CountToFour/finance-mate/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an internal failure and stays opaque.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrCurrencyNotFound),
		errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrRecurringNotFound),
		errors.Is(err, services.ErrBudgetNotFound),
		errors.Is(err, services.ErrRateNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrAccessDenied):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrBudgetAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrSameAccountTransfer),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrBalanceNotEditable),
		errors.Is(err, services.ErrCurrencyNotEditable),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidType),
		errors.Is(err, services.ErrInvalidPeriodType):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
