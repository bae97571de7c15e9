package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/attendance-gateway/config"
)

// InitLogger initializes the structured logger. Development mode logs text at
// debug level; otherwise JSON at info.
func InitLogger(isDev bool) *slog.Logger {
	logger := newLogger(os.Stdout, isDev)
	slog.SetDefault(logger)
	return logger
}

func newLogger(w io.Writer, isDev bool) *slog.Logger {
	if isDev {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig rejects configurations the gateway cannot run with.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	var errs []error
	if cfg.Identity.BaseURL == "" {
		errs = append(errs, errors.New("IDENTITY_BASE_URL is required"))
	}
	switch cfg.Session.Store {
	case config.SessionStoreRedis, config.SessionStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported SESSION_STORE %q", cfg.Session.Store))
	}
	switch cfg.Observability.Audit.Sink {
	case config.AuditSinkLog, config.AuditSinkPostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported AUDIT_SINK %q", cfg.Observability.Audit.Sink))
	}
	return errors.Join(errs...)
}
