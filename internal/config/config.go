package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// DefaultSecretKey is the development session signing key. Load refuses it when Env is "prod".
const DefaultSecretKey = "dev-secret-key"

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// SecretKey signs session cookies and API bearer tokens.
	SecretKey string

	// Env is "dev" (default) or "prod". When "prod", SECRET_KEY must be set and not the default.
	Env string

	// SessionHours is the session lifetime in hours (default 24). Set via SESSION_HOURS.
	SessionHours int

	// AwardSchedule is the cron expression for the weekly award pass (default Monday 03:00).
	// An empty AWARD_SCHEDULE disables the scheduler; the pass can still be run by an admin.
	AwardSchedule string

	// Migrate applies embedded migrations at startup (default true).
	Migrate bool

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed to call the JSON API.
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent.
	CORSAllowedOrigins []string

	// AdminUsers are usernames promoted to the admin role at startup (ADMIN_USERS, comma-separated).
	AdminUsers []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() (Config, error) {
	_ = godotenv.Load()

	awardSchedule, ok := os.LookupEnv("AWARD_SCHEDULE")
	if !ok {
		awardSchedule = "0 3 * * 1"
	}

	cfg := Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "screentime"),
		DBUser:     getEnv("DB_USER", "screentime"),
		DBPassword: getEnv("DB_PASSWORD", "screentime"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		SecretKey:    getEnv("SECRET_KEY", DefaultSecretKey),
		Env:          getEnv("ENV", "dev"),
		SessionHours: getEnvInt("SESSION_HOURS", 24),

		AwardSchedule: strings.TrimSpace(awardSchedule),
		Migrate:       getEnvBool("MIGRATE", true),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		AdminUsers:         parseList(getEnv("ADMIN_USERS", "")),
	}

	if cfg.Env == "prod" && cfg.SecretKey == DefaultSecretKey {
		return cfg, errors.New("SECRET_KEY must be set when ENV=prod")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.DBHost, validation.Required),
		validation.Field(&c.DBPort, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.DBName, validation.Required),
		validation.Field(&c.Env, validation.In("dev", "prod")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.TLSKeyFile, validation.When(c.TLSCertFile != "", validation.Required)),
	)
}

// DatabaseURL returns the postgres URL form of the connection settings, as
// expected by the migration runner.
func (c Config) DatabaseURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=disable"
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// parseList splits a comma-separated list and trims spaces. Empty strings are omitted.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
