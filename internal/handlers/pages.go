package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/crucial707/screentime/internal/auth"
	"github.com/crucial707/screentime/internal/middleware"
	"github.com/crucial707/screentime/internal/models"
	"github.com/crucial707/screentime/internal/repo"
	"github.com/crucial707/screentime/internal/rewards"
)

const (
	msgInvalidLogin    = "Invalid username or password"
	msgUsernameTaken   = "Username already exists"
	msgMissingFields   = "Username and password are required"
	msgPasswordTooLong = "Password must be at most 72 bytes"
	msgUsernameTooLong = "Username must be at most 64 characters"
	msgAdminOnly       = "Only administrators can award tokens"
	msgCrossSite       = "Token awards must be started from this site"
)

// ==========================
// PageHandler serves the HTML pages
// ==========================
type PageHandler struct {
	DB      *sql.DB
	Users   *repo.UserRepo
	Awarder *rewards.Awarder
	Issuer  *auth.Issuer
	// SecureCookies marks the session cookie Secure (set when serving HTTPS).
	SecureCookies bool
}

// Home redirects to the dashboard with a session, otherwise to login.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetClaims(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ==========================
// Login
// ==========================
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetClaims(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderTemplate(w, http.StatusOK, "login.html", newPageData(r))
}

func (h *PageHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := credentials{Username: r.PostFormValue("username"), Password: r.PostFormValue("password")}
	in.normalize()

	data := newPageData(r)
	data.Form.Username = in.Username
	if err := in.Validate(); err != nil {
		data.Error = formMessage(err)
		renderTemplate(w, http.StatusOK, "login.html", data)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), in.Username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		pageStoreError(w, r, err)
		return
	}
	if err != nil || auth.VerifyPassword(user.PasswordHash, in.Password) != nil {
		data.Error = msgInvalidLogin
		renderTemplate(w, http.StatusOK, "login.html", data)
		return
	}

	token, exp, err := h.Issuer.Issue(user)
	if err != nil {
		pageStoreError(w, r, err)
		return
	}
	setSessionCookie(w, token, exp, h.SecureCookies)
	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// ==========================
// Register
// ==========================
func (h *PageHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, http.StatusOK, "register.html", newPageData(r))
}

func (h *PageHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := credentials{Username: r.PostFormValue("username"), Password: r.PostFormValue("password")}
	in.normalize()

	data := newPageData(r)
	data.Form.Username = in.Username
	if err := in.Validate(); err != nil {
		data.Error = formMessage(err)
		renderTemplate(w, http.StatusOK, "register.html", data)
		return
	}

	_, err := registerUser(r, h.Users, in)
	if errors.Is(err, repo.ErrDuplicateUsername) {
		data.Error = msgUsernameTaken
		renderTemplate(w, http.StatusOK, "register.html", data)
		return
	}
	if err != nil {
		pageStoreError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ==========================
// Dashboard
// ==========================
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	data := newPageData(r)
	err := repo.WithConn(r.Context(), h.DB, func(conn *sql.Conn) error {
		var err error
		data.Entries, err = repo.NewScreenTimeRepo(conn).ListByUser(r.Context(), claims.UserID)
		if err != nil {
			return err
		}
		data.TokenBalance, err = repo.NewTokenRepo(conn).Balance(r.Context(), claims.UserID)
		return err
	})
	if err != nil {
		pageStoreError(w, r, err)
		return
	}
	renderTemplate(w, http.StatusOK, "dashboard.html", data)
}

// ==========================
// Leaderboard
// ==========================
func (h *PageHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := h.Awarder.Leaderboard(r.Context())
	if err != nil {
		pageStoreError(w, r, err)
		return
	}
	data := newPageData(r)
	data.Standings = standings
	renderTemplate(w, http.StatusOK, "leaderboard.html", data)
}

// ==========================
// Update Tokens (admin only)
// ==========================
// UpdateTokens runs an award pass. It is served on GET for the original link
// and on POST for the nav form; both refuse requests started by another site.
func (h *PageHandler) UpdateTokens(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if !sameOrigin(r) {
		data := newPageData(r)
		data.Error = msgCrossSite
		renderTemplate(w, http.StatusForbidden, "error.html", data)
		return
	}

	role, err := h.Users.Role(r.Context(), claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		clearSessionCookie(w, h.SecureCookies)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err != nil {
		pageStoreError(w, r, err)
		return
	}
	if role != models.RoleAdmin {
		data := newPageData(r)
		data.Error = msgAdminOnly
		renderTemplate(w, http.StatusForbidden, "error.html", data)
		return
	}

	if _, err := h.Awarder.Run(r.Context()); err != nil {
		pageStoreError(w, r, err)
		return
	}
	http.Redirect(w, r, "/leaderboard", http.StatusFound)
}

// sameOrigin reports whether r was started from this site. Browsers send
// Sec-Fetch-Site; older ones only send Origin on POST. A request with neither
// header is not from a browser and is allowed.
func sameOrigin(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "same-origin", "none":
		return true
	case "":
	default:
		return false
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// ==========================
// Logout
// ==========================
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.SecureCookies)
	http.Redirect(w, r, "/login", http.StatusFound)
}
