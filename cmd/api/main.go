package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/screentime/internal/config"
	"github.com/crucial707/screentime/internal/db"
	"github.com/crucial707/screentime/internal/models"
	"github.com/crucial707/screentime/internal/repo"
	"github.com/crucial707/screentime/internal/rewards"
	"github.com/crucial707/screentime/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database FIRST
	database, err := db.Connect(ctx,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPassword,
		db.Options{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns},
	)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if cfg.Migrate {
		if _, err := db.Run(cfg.DatabaseURL(), logger); err != nil {
			logger.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	promoteAdmins(ctx, repo.NewUserRepo(database), cfg.AdminUsers, logger)

	awarder := rewards.NewAwarder(database, logger)
	if cfg.AwardSchedule != "" {
		go func() {
			if err := scheduler.Run(ctx, cfg.AwardSchedule, awarder, logger); err != nil {
				logger.Error("scheduler disabled", "error", err)
			}
		}()
	} else {
		logger.Info("scheduler disabled: AWARD_SCHEDULE is empty")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg, awarder),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server LAST
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port, "tls", cfg.TLSEnabled())
		if cfg.TLSEnabled() {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}
}

func newLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// promoteAdmins grants the admin role to each listed username that exists.
func promoteAdmins(ctx context.Context, users *repo.UserRepo, usernames []string, logger *slog.Logger) {
	for _, name := range usernames {
		err := users.SetRole(ctx, name, models.RoleAdmin)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			logger.Warn("admin user not registered yet", "username", name)
		case err != nil:
			logger.Error("promote admin", "username", name, "error", err)
		default:
			logger.Info("admin role granted", "username", name)
		}
	}
}
