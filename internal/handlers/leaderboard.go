package handlers

import (
	"net/http"

	"github.com/crucial707/screentime/internal/rewards"
)

// LeaderboardHandler serves standings and the admin award trigger over JSON.
type LeaderboardHandler struct {
	Awarder *rewards.Awarder
}

// List returns every user's standing, best reduction first.
func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	standings, err := h.Awarder.Leaderboard(r.Context())
	if err != nil {
		jsonStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": standings,
		"total": len(standings),
	})
}

// Award runs the award pass. Mount behind middleware.RequireAdmin.
func (h *LeaderboardHandler) Award(w http.ResponseWriter, r *http.Request) {
	res, err := h.Awarder.Run(r.Context())
	if err != nil {
		jsonStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
