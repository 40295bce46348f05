package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CountToFour/finance-mate/internal/auth"
	"github.com/CountToFour/finance-mate/internal/middleware"
	"github.com/CountToFour/finance-mate/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type registerRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MainCurrency string `json:"main_currency"`
}

// defaultCategories is the starter set every new user gets. Users extend
// it later; these just make the first posting possible without setup.
var defaultCategories = []struct {
	Name  string
	Group string
	Color string
}{
	{"Groceries", "Essentials", "#4CAF50"},
	{"Rent", "Essentials", "#795548"},
	{"Utilities", "Essentials", "#607D8B"},
	{"Transport", "Essentials", "#2196F3"},
	{"Health", "Essentials", "#E91E63"},
	{"Restaurants", "Lifestyle", "#FF9800"},
	{"Shopping", "Lifestyle", "#9C27B0"},
	{"Entertainment", "Lifestyle", "#3F51B5"},
	{"Salary", "Income", "#8BC34A"},
	{"Other", "Other", "#9E9E9E"},
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MainCurrency == "" {
		req.MainCurrency = "USD"
	}
	if _, err := h.rates.GetCurrency(r.Context(), req.MainCurrency); err != nil {
		respondError(w, http.StatusBadRequest, "unknown currency")
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	userID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.users.Create(r.Context(), tx, userID, req.Username, req.Email, passwordHash, req.MainCurrency); err != nil {
			return err
		}
		return h.createDefaultCategories(r.Context(), tx, userID)
	})
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "username or email already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, userID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"token": token,
	})
}

func (h *Handler) createDefaultCategories(ctx context.Context, tx *sqlx.Tx, userID string) error {
	if tx == nil {
		return nil
	}
	for _, c := range defaultCategories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, user_id, name, group_name, color)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), userID, c.Name, c.Group, c.Color); err != nil {
			return err
		}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"token": token,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type setCurrencyRequest struct {
	Currency string `json:"currency"`
}

func (h *Handler) SetMainCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, err := h.rates.GetCurrency(r.Context(), req.Currency); err != nil {
		respondError(w, http.StatusBadRequest, "unknown currency")
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.users.SetMainCurrency(r.Context(), tx, userID, req.Currency)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update currency")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"main_currency": req.Currency})
}
