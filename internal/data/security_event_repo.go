package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	apperrors "github.com/target/attendance-gateway/internal/errors"
	"github.com/target/attendance-gateway/internal/observability/audit"
)

// ErrEventTypeRequired is returned when inserting an event without a type.
var ErrEventTypeRequired = errors.New("event_type is required")

// SecurityEventRepo persists security events to Postgres.
type SecurityEventRepo struct {
	DB    *sql.DB
	NewID func() string
}

// NewSecurityEventRepo creates a new SecurityEventRepo.
func NewSecurityEventRepo(db *sql.DB) *SecurityEventRepo {
	return &SecurityEventRepo{DB: db, NewID: func() string { return uuid.NewString() }}
}

const insertSecurityEvent = `
	INSERT INTO security_events (id, occurred_at, event_type, actor, ip, user_agent, path, role, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Insert stores one event.
func (r *SecurityEventRepo) Insert(ctx context.Context, e audit.Event) error {
	if e.EventType == "" {
		return ErrEventTypeRequired
	}
	meta := e.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}
	if e.Actor == "" {
		e.Actor = audit.AnonymousActor
	}

	_, err = r.DB.ExecContext(ctx, insertSecurityEvent,
		r.NewID(), e.Timestamp.UTC(), string(e.EventType), e.Actor,
		e.IP, e.UserAgent, e.Path, e.Role, metaJSON,
	)
	if err != nil {
		return fmt.Errorf("insert security event: %w", apperrors.MapDBError(err))
	}
	return nil
}

// ListOptions filters ListRecent.
type ListOptions struct {
	Actor string
	Limit int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListRecent returns the newest events first, optionally for one actor.
func (r *SecurityEventRepo) ListRecent(ctx context.Context, opts ListOptions) ([]audit.Event, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT occurred_at, event_type, actor, ip, user_agent, path, role, metadata
		FROM security_events`
	args := []any{}
	if opts.Actor != "" {
		query += ` WHERE actor = $1`
		args = append(args, opts.Actor)
	}
	query += fmt.Sprintf(` ORDER BY occurred_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			typ      string
			metaJSON []byte
		)
		if err := rows.Scan(&e.Timestamp, &typ, &e.Actor, &e.IP, &e.UserAgent, &e.Path, &e.Role, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		e.EventType = audit.EventType(typ)
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode event metadata: %w", err)
			}
		}
		if len(e.Metadata) == 0 {
			e.Metadata = nil
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security events: %w", err)
	}
	return events, nil
}

// SecurityEventSink adapts the repository to audit.Sink. Write failures are
// logged and otherwise ignored.
type SecurityEventSink struct {
	Repo   *SecurityEventRepo
	Logger *slog.Logger
}

var _ audit.Sink = (*SecurityEventSink)(nil)

func (s *SecurityEventSink) Emit(ctx context.Context, e audit.Event) {
	if err := s.Repo.Insert(ctx, e); err != nil {
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(ctx, "persist security event failed",
			"event_type", string(e.EventType),
			"error", err,
		)
	}
}
