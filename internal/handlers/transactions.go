package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/CountToFour/finance-mate/internal/middleware"
	"github.com/CountToFour/finance-mate/internal/models"
	"github.com/CountToFour/finance-mate/internal/services"
	"github.com/CountToFour/finance-mate/internal/store"

	"github.com/go-chi/chi/v5"
)

type postTransactionRequest struct {
	AccountID   string `json:"account_id"`
	CategoryID  string `json:"category_id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (h *Handler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req postTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var occurredOn *time.Time
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		occurredOn = &date
	}
	posted, err := h.ledger.PostTransaction(r.Context(), services.PostTransactionRequest{
		UserID:      userID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Type:        models.TransactionType(req.Type),
		Description: req.Description,
		OccurredOn:  occurredOn,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, posted)
}

type editTransactionRequest struct {
	CategoryID  *string `json:"category_id"`
	Price       *string `json:"price"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req editTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	edit := services.EditTransactionRequest{
		CategoryID:  req.CategoryID,
		Description: req.Description,
	}
	if req.Price != nil {
		price, err := parseAmount(*req.Price)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		edit.Price = &price
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		edit.OccurredOn = &date
	}
	edited, err := h.ledger.EditTransaction(r.Context(), chi.URLParam(r, "id"), userID, edit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, edited)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.ledger.DeleteTransaction(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListTransactions filters conjunctively: every supplied query parameter
// narrows the result. Amount bounds apply to magnitudes, ignoring sign.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	filter := store.TransactionFilter{
		Category:    query.Get("category"),
		AccountName: query.Get("account"),
	}
	txType, err := parseType(query.Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Type = txType
	if raw := query.Get("min_amount"); raw != "" {
		min, err := parseAmount(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.MinAmount = &min
	}
	if raw := query.Get("max_amount"); raw != "" {
		max, err := parseAmount(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.MaxAmount = &max
	}
	if raw := query.Get("start_date"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.StartDate = &start
	}
	if raw := query.Get("end_date"); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.EndDate = &end
	}
	transactions, err := h.ledger.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

// periodFromQuery defaults to the current calendar month. Both bounds are
// inclusive, so the default end is the month's last day rather than the
// first of the next month, which would count boundary postings twice.
func periodFromQuery(query map[string][]string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	if raw, ok := query["start_date"]; ok && len(raw) > 0 && raw[0] != "" {
		parsed, err := parseDate(raw[0])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if raw, ok := query["end_date"]; ok && len(raw) > 0 && raw[0] != "" {
		parsed, err := parseDate(raw[0])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}
	return start, end, nil
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	txType, err := parseType(query.Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if txType == "" {
		txType = models.Expense
	}
	start, end, err := periodFromQuery(query)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	overview, err := h.ledger.GetOverview(r.Context(), userID, start, end, txType)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

func (h *Handler) GetCategoryTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	txType, err := parseType(query.Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if txType == "" {
		txType = models.Expense
	}
	start, end, err := periodFromQuery(query)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	totals, err := h.ledger.GetCategoryTotals(r.Context(), userID, start, end, txType)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	categories, err := h.categories.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
