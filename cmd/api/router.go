package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/screentime/internal/auth"
	"github.com/crucial707/screentime/internal/config"
	"github.com/crucial707/screentime/internal/handlers"
	"github.com/crucial707/screentime/internal/middleware"
	"github.com/crucial707/screentime/internal/repo"
	"github.com/crucial707/screentime/internal/rewards"
)

// newRouter wires the HTML pages, the JSON API and the operational endpoints.
func newRouter(db *sql.DB, cfg config.Config, awarder *rewards.Awarder) http.Handler {
	logger := awarder.Logger
	sessionHours := cfg.SessionHours
	if sessionHours <= 0 {
		sessionHours = 24
	}
	issuer := auth.NewIssuer([]byte(cfg.SecretKey), time.Duration(sessionHours)*time.Hour)
	userRepo := repo.NewUserRepo(db)

	pages := &handlers.PageHandler{
		DB:            db,
		Users:         userRepo,
		Awarder:       awarder,
		Issuer:        issuer,
		SecureCookies: cfg.TLSEnabled(),
	}
	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Issuer: issuer}
	userHandler := &handlers.UserHandler{DB: db}
	leaderboardHandler := &handlers.LeaderboardHandler{Awarder: awarder}
	authLimiter := middleware.AuthRateLimiter()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
	r.Use(middleware.Authenticate(issuer))

	// Operational
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, handlers.ErrMessageUnavailable, http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// HTML pages
	r.Handle("/static/*", handlers.Static())
	r.Get("/", pages.Home)
	r.Get("/login", pages.LoginForm)
	r.With(authLimiter.Middleware).Post("/login", pages.LoginSubmit)
	r.Get("/register", pages.RegisterForm)
	r.With(authLimiter.Middleware).Post("/register", pages.RegisterSubmit)
	r.Get("/dashboard", pages.Dashboard)
	r.Get("/leaderboard", pages.Leaderboard)
	r.Get("/update_tokens", pages.UpdateTokens)
	r.Post("/update_tokens", pages.UpdateTokens)
	r.Get("/logout", pages.Logout)

	// JSON API
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

		r.With(authLimiter.Middleware).Post("/auth/register", authHandler.Register)
		r.With(authLimiter.Middleware).Post("/auth/login", authHandler.Login)
		r.Get("/leaderboard", leaderboardHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/me", userHandler.Me)
			r.Post("/screen-time", userHandler.RecordScreenTime)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(userRepo))
			r.Post("/admin/award", leaderboardHandler.Award)
		})
	})

	return r
}
