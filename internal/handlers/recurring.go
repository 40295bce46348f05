package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/CountToFour/finance-mate/internal/middleware"
	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/services"

	"github.com/go-chi/chi/v5"
)

type recurringRequest struct {
	AccountID   string `json:"account_id"`
	CategoryID  string `json:"category_id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	PeriodType  string `json:"period_type"`
	StartDate   string `json:"start_date"`
}

func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var startDate *time.Time
	if req.StartDate != "" {
		date, err := parseDate(req.StartDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		startDate = &date
	}
	template, err := h.recurring.Create(r.Context(), services.RecurringRequest{
		UserID:      userID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Type:        models.TransactionType(req.Type),
		Description: req.Description,
		PeriodType:  models.PeriodType(req.PeriodType),
		StartDate:   startDate,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, template)
}

func (h *Handler) GetRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	template, err := h.recurring.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, template)
}

func (h *Handler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	txType, err := parseType(r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	templates, err := h.recurring.List(r.Context(), userID, txType)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

type editRecurringRequest struct {
	CategoryID  *string `json:"category_id"`
	Price       *string `json:"price"`
	Description *string `json:"description"`
	NextDate    *string `json:"next_date"`
	PeriodType  *string `json:"period_type"`
	AccountID   *string `json:"account_id"`
}

func (h *Handler) EditRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req editRecurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	edit := services.EditRecurringRequest{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		AccountID:   req.AccountID,
	}
	if req.Price != nil {
		price, err := parseAmount(*req.Price)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		edit.Price = &price
	}
	if req.NextDate != nil {
		date, err := parseDate(*req.NextDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		edit.NextDate = &date
	}
	if req.PeriodType != nil {
		period := models.PeriodType(*req.PeriodType)
		edit.PeriodType = &period
	}
	template, err := h.recurring.Edit(r.Context(), chi.URLParam(r, "id"), userID, edit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, template)
}

func (h *Handler) ToggleRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.recurring.ToggleActive(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.recurring.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
