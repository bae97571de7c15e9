package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/attendance-gateway/config"
	"github.com/target/attendance-gateway/internal/adapters/identity"
	"github.com/target/attendance-gateway/internal/adapters/memstore"
	redisstore "github.com/target/attendance-gateway/internal/adapters/redis"
	"github.com/target/attendance-gateway/internal/data"
	"github.com/target/attendance-gateway/internal/observability/audit"
	"github.com/target/attendance-gateway/internal/observability/statsd"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/service"
)

// ServiceContainer holds the wired application services.
type ServiceContainer struct {
	Identity   ports.IdentityClient
	Store      ports.SessionStore
	OTP        *service.OTPService
	Validation *service.ValidationService
	Sessions   *service.SessionService

	// Events is the asynchronous security event dispatcher.
	Events *audit.Dispatcher
	// EventLog reads persisted events back. Nil unless AUDIT_SINK=postgres.
	EventLog *data.SecurityEventRepo

	Observability ObservabilityContainer
}

// ObservabilityContainer groups metrics wiring.
type ObservabilityContainer struct {
	MetricsSink   statsd.Sink
	MetricsConfig config.ObservabilityMetricsConfig
	client        *statsd.Client
}

// ServiceDeps are the connections services are built on. DB and Redis are
// nil when the configuration does not need them.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) ObservabilityContainer {
	out := ObservabilityContainer{MetricsSink: statsd.Discard{}, MetricsConfig: cfg}
	if !cfg.IsEnabled() {
		return out
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return out
	}
	out.MetricsSink = client
	out.client = client
	return out
}

//nolint:ireturn // the store implementation is chosen by configuration.
func buildSessionStore(cfg config.SessionConfig, client redis.UniversalClient, logger *slog.Logger) (ports.SessionStore, error) {
	switch cfg.Store {
	case config.SessionStoreMemory:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		return memstore.NewSessionStore(), nil
	case config.SessionStoreRedis:
		if client == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return redisstore.NewSessionStore(client, redisstore.SessionStoreOptions{
			Prefix:      cfg.KeyPrefix,
			MaxLifetime: cfg.MaxLifetime,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Store)
	}
}

// buildAuditSink always logs events and also persists them when a database is configured.
func buildAuditSink(cfg config.AuditConfig, db *sql.DB, logger *slog.Logger) (audit.Sink, *data.SecurityEventRepo) {
	logSink := audit.LogSink{Logger: logger.With("component", "security")}
	if cfg.Sink != config.AuditSinkPostgres || db == nil {
		return logSink, nil
	}
	repo := data.NewSecurityEventRepo(db)
	return audit.MultiSink{logSink, &data.SecurityEventSink{Repo: repo, Logger: logger}}, repo
}

// NewServices wires the application services from deps.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs := buildObservability(logger, cfg.Observability.Metrics)

	identityClient, err := identity.NewClient(identity.Options{
		BaseURL: cfg.Identity.BaseURL,
		Timeout: cfg.Identity.Timeout,
		Logger:  logger.With("component", "identity"),
		Metrics: obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build identity client: %w", err)
	}

	store, err := buildSessionStore(cfg.Session, deps.Redis, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	sink, repo := buildAuditSink(cfg.Observability.Audit, deps.DB, logger)
	dispatcher := audit.NewDispatcher(audit.Config{
		BufferSize: cfg.Observability.Audit.BufferSize,
		Logger:     logger,
	}, sink)

	return ServiceContainer{
		Identity: identityClient,
		Store:    store,
		OTP: service.NewOTPService(service.OTPServiceOptions{
			Identity:   identityClient,
			Sessions:   store,
			SessionTTL: cfg.Session.TTL,
			Logger:     logger,
			Metrics:    obs.MetricsSink,
		}),
		Validation: service.NewValidationService(service.ValidationServiceOptions{
			Identity: identityClient,
			Logger:   logger,
		}),
		Sessions: service.NewSessionService(service.SessionServiceOptions{
			Identity:          identityClient,
			TTL:               cfg.Session.TTL,
			OnboardingRefresh: cfg.Session.OnboardingRefresh,
			Logger:            logger,
			Metrics:           obs.MetricsSink,
		}),
		Events:        dispatcher,
		EventLog:      repo,
		Observability: obs,
	}, nil
}

// Close flushes pending security events and releases the metrics socket.
func (c ServiceContainer) Close() error {
	if c.Events != nil {
		c.Events.Close()
	}
	if c.Observability.client != nil {
		if err := c.Observability.client.Close(); err != nil {
			return fmt.Errorf("close statsd client: %w", err)
		}
	}
	return nil
}
