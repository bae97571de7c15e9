package bootstrap

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/attendance-gateway/config"
	"github.com/target/attendance-gateway/internal/adapters/memstore"
	redisstore "github.com/target/attendance-gateway/internal/adapters/redis"
	"github.com/target/attendance-gateway/internal/observability/audit"
	"github.com/target/attendance-gateway/internal/testutil"
)

func baseConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		IsDev:    true,
		Identity: config.IdentityConfig{BaseURL: "https://identity.example.edu/api"},
		Session:  config.SessionConfig{Store: config.SessionStoreMemory},
	}
	cfg.Observability.Audit.Sink = config.AuditSinkLog
	return cfg
}

func TestNewServices_MemoryStore(t *testing.T) {
	svc, err := NewServices(&ServiceDeps{Config: baseConfig()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assert.IsType(t, &memstore.SessionStore{}, svc.Store)
	assert.NotNil(t, svc.OTP)
	assert.NotNil(t, svc.Validation)
	assert.NotNil(t, svc.Sessions)
	assert.NotNil(t, svc.Events)
	assert.Nil(t, svc.EventLog)
}

func TestNewServices_RedisStore(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	cfg := baseConfig()
	cfg.Session.Store = config.SessionStoreRedis

	svc, err := NewServices(&ServiceDeps{Config: cfg, Redis: client})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assert.IsType(t, &redisstore.SessionStore{}, svc.Store)
}

func TestNewServices_PostgresAuditSink(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := baseConfig()
	cfg.Observability.Audit.Sink = config.AuditSinkPostgres
	cfg.Observability.Audit.BufferSize = 4

	svc, err := NewServices(&ServiceDeps{Config: cfg, DB: db})
	require.NoError(t, err)
	require.NotNil(t, svc.EventLog)

	mock.ExpectExec("INSERT INTO security_events").WillReturnResult(sqlmock.NewResult(0, 1))
	svc.Events.Emit(context.Background(), audit.Event{EventType: audit.EventLogout, Actor: "ana@example.edu"})

	// Close drains the queue before returning.
	require.NoError(t, svc.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewServices_Errors(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	cfg := baseConfig()
	cfg.Identity.BaseURL = ""
	_, err = NewServices(&ServiceDeps{Config: cfg})
	require.ErrorContains(t, err, "identity")

	cfg = baseConfig()
	cfg.Session.Store = config.SessionStoreRedis
	_, err = NewServices(&ServiceDeps{Config: cfg})
	require.ErrorContains(t, err, "redis client")
}

func TestServiceContainer_CloseIsSafeWhenEmpty(t *testing.T) {
	assert.NoError(t, ServiceContainer{}.Close())
}
