package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/crucial707/screentime/internal/middleware"
	"github.com/crucial707/screentime/internal/models"
	"github.com/crucial707/screentime/internal/repo"
	"github.com/crucial707/screentime/internal/rewards"
)

// ==========================
// UserHandler serves the signed-in user's own data
// ==========================
type UserHandler struct {
	DB *sql.DB
	// Now is the clock used to reject weeks that have not started yet.
	Now func() time.Time
}

func (h *UserHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ==========================
// Me: profile, balance and screen time
// ==========================
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		JSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var (
		entries []models.ScreenTimeEntry
		balance int
	)
	err := repo.WithConn(r.Context(), h.DB, func(conn *sql.Conn) error {
		var err error
		if entries, err = repo.NewScreenTimeRepo(conn).ListByUser(r.Context(), claims.UserID); err != nil {
			return err
		}
		balance, err = repo.NewTokenRepo(conn).Balance(r.Context(), claims.UserID)
		return err
	})
	if err != nil {
		jsonStoreError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.ScreenTimeEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":        models.User{ID: claims.UserID, Username: claims.Username, Role: claims.Role},
		"tokens":      balance,
		"screen_time": entries,
	})
}

// ==========================
// Record Screen Time for the caller
// ==========================
func (h *UserHandler) RecordScreenTime(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		JSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var in screenTimeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}
	day, _ := time.Parse("2006-01-02", in.Week)
	week := rewards.WeekStart(day)
	if week.After(rewards.WeekStart(h.now())) {
		JSONValidationError(w, "validation failed", map[string]string{"week": "future"}, http.StatusBadRequest)
		return
	}

	entry, err := repo.NewScreenTimeRepo(h.DB).Upsert(r.Context(), claims.UserID, week, in.Minutes)
	if err != nil {
		jsonStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
