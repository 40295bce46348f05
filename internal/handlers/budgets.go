package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/CountToFour/finance-mate/internal/middleware"
	"github.com/CountToFour/finance-mate/internal/services"

	"github.com/go-chi/chi/v5"
)

type budgetRequest struct {
	CategoryID string `json:"category_id"`
	Amount     string `json:"amount"`
	StartDate  string `json:"start_date"`
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req budgetRequest
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
	budget, err := h.budgets.Create(r.Context(), userID, services.BudgetRequest{
		CategoryID: req.CategoryID,
		Amount:     amount,
		StartDate:  startDate,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, budget)
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	budget, err := h.budgets.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, budget)
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	budgets, err := h.budgets.List(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, budgets)
}

type updateBudgetRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	budget, err := h.budgets.UpdateLimit(r.Context(), chi.URLParam(r, "id"), userID, amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, budget)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.budgets.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
