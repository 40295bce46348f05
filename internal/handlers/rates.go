package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/CountToFour/finance-mate/internal/middleware"

	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.rates.ListCurrencies(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load currencies")
		return
	}
	respondJSON(w, http.StatusOK, currencies)
}

func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.ListRates(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load rates")
		return
	}
	respondJSON(w, http.StatusOK, rates)
}

type setRateRequest struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	Rate         string `json:"rate"`
}

// SetRate upserts one direction only. Callers maintaining both directions
// submit two requests.
func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FromCurrency == "" || req.ToCurrency == "" || req.FromCurrency == req.ToCurrency {
		respondError(w, http.StatusBadRequest, "invalid currency pair")
		return
	}
	rate, err := parseRate(req.Rate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.rates.GetCurrency(r.Context(), req.FromCurrency); err != nil {
		respondError(w, http.StatusNotFound, "unknown currency")
		return
	}
	if _, err := h.rates.GetCurrency(r.Context(), req.ToCurrency); err != nil {
		respondError(w, http.StatusNotFound, "unknown currency")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.rates.SetRate(r.Context(), tx, req.FromCurrency, req.ToCurrency, rate)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to store rate")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
