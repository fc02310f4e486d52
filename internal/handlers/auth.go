package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/screentime/internal/auth"
	"github.com/crucial707/screentime/internal/models"
	"github.com/crucial707/screentime/internal/repo"
)

// ==========================
// Auth Handler (JSON API)
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Issuer   *auth.Issuer
}

// registerUser rejects an existing username, then stores a bcrypt hash of the password.
func registerUser(r *http.Request, users *repo.UserRepo, in credentials) (*models.User, error) {
	exists, err := users.Exists(r.Context(), in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repo.ErrDuplicateUsername
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user, err := users.Create(r.Context(), in.Username, hash, models.RoleMember)
	if err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	user, err := registerUser(r, h.UserRepo, in)
	if errors.Is(err, repo.ErrDuplicateUsername) {
		JSONError(w, "username already exists", http.StatusConflict)
		return
	}
	if err != nil {
		jsonStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Login (returns a bearer token)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	in.normalize()
	if err := in.Validate(); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), in.Username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		jsonStoreError(w, r, err)
		return
	}
	if err != nil || auth.VerifyPassword(user.PasswordHash, in.Password) != nil {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	signed, exp, err := h.Issuer.Issue(user)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      signed,
		"expires_at": exp,
		"user":       user,
	})
}
