package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	apperrors "github.com/target/attendance-gateway/internal/errors"
	"github.com/target/attendance-gateway/internal/observability/statsd"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/upstream"
)

// Banner texts surfaced to the client.
const (
	BannerOnboardingUnavailable = "We could not confirm your enrollment status right now. Some features may be unavailable."
	BannerUnverified            = "Your account has not been verified yet. Some features may be limited."
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Identity ports.IdentityClient
	// TTL is the sliding window applied by Extend.
	TTL time.Duration
	// OnboardingRefresh is how long a positive onboarding check is reused.
	// Zero checks on every call.
	OnboardingRefresh time.Duration
	Now               func() time.Time
	Logger            *slog.Logger
	Metrics           statsd.Sink
}

// SessionService reads and maintains authenticated sessions.
type SessionService struct {
	identity ports.IdentityClient
	ttl      time.Duration
	refresh  time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewSessionService constructs a new SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	s := &SessionService{
		identity: opts.Identity,
		ttl:      opts.TTL,
		refresh:  opts.OnboardingRefresh,
		now:      opts.Now,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = statsd.Discard{}
	}
	return s
}

// Now returns the service clock.
func (s *SessionService) Now() time.Time { return s.now() }

// Load reads the session behind h in one round trip.
func (s *SessionService) Load(ctx context.Context, h ports.SessionHandle) (domainauth.Session, error) {
	values, err := h.Snapshot(ctx)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "load session")
	}
	return domainauth.SessionFromValues(values), nil
}

// Extend slides the expiry window of an authenticated session and records
// activity. The window never outlives a JWT bearer's own expiry.
func (s *SessionService) Extend(ctx context.Context, h ports.SessionHandle, sess *domainauth.Session) error {
	now := s.now().UTC()
	sess.Expiry = capExpiry(now.Add(s.ttl), sess.AuthToken)
	sess.LastActivity = now
	return h.SetMany(ctx, map[string]string{
		domainauth.KeySessionExpiry: domainauth.FormatTime(sess.Expiry),
		domainauth.KeyLastActivity:  domainauth.FormatTime(now),
	})
}

// Destroy clears the session. Errors are logged and swallowed.
func (s *SessionService) Destroy(ctx context.Context, h ports.SessionHandle) {
	if err := h.Clear(ctx); err != nil {
		s.logger.Error("clear session failed", "error", err)
	}
}

// LogoutResult is always successful.
type LogoutResult struct {
	Success  bool
	Message  string
	Redirect string
}

// Logout destroys the session. It reports success even when clearing fails
// so the user is never left believing they are still signed in.
func (s *SessionService) Logout(ctx context.Context, h ports.SessionHandle, area domainauth.Area) LogoutResult {
	s.Destroy(ctx, h)
	s.metrics.Count("session.logout", 1, map[string]string{"area": string(area)})
	return LogoutResult{
		Success:  true,
		Message:  "You have been logged out.",
		Redirect: area.LoginPath(),
	}
}

// RememberRedirect stores the path to return to after login.
func (s *SessionService) RememberRedirect(ctx context.Context, h ports.SessionHandle, path string) {
	if err := h.Set(ctx, domainauth.KeyRedirectAfterLogin, path); err != nil {
		s.logger.Warn("remember redirect failed", "error", err)
	}
}

// OnboardingState is the outcome of an onboarding check.
type OnboardingState struct {
	Onboarded  bool
	HasSection bool
	// Cached is true when the stored flags were reused without an upstream call.
	Cached bool
	// Unavailable is true when the identity service could not answer.
	Unavailable bool
}

// RefreshOnboarding asks the identity service whether the student finished
// onboarding and caches the answer in the session.
//
// A failed check never blocks: the student is treated as not onboarded and
// Unavailable is set so the caller can show a banner. Only a positive answer
// is reused for the refresh interval.
func (s *SessionService) RefreshOnboarding(ctx context.Context, h ports.SessionHandle, sess *domainauth.Session) OnboardingState {
	now := s.now().UTC()
	if sess.Onboarded && s.refresh > 0 && !sess.OnboardingCheckedAt.IsZero() &&
		now.Sub(sess.OnboardingCheckedAt) < s.refresh {
		return OnboardingState{Onboarded: true, HasSection: sess.HasSection, Cached: true}
	}

	state := OnboardingState{}
	p, err := s.identity.CheckOnboardingStatus(ctx, sess.AuthToken)
	switch {
	case err != nil:
		s.logger.Warn("onboarding status check failed", "error", err)
		state.Unavailable = true
	case !p.Has("is_onboarded"):
		s.logger.Warn("onboarding status response missing flag")
		state.Unavailable = true
	default:
		state.Onboarded = p.Bool("is_onboarded", false)
		state.HasSection = p.Bool("has_section", false)
	}
	s.metrics.Count("onboarding.check", 1, map[string]string{
		"outcome": onboardingOutcome(state),
	})

	sess.Onboarded, sess.HasSection = state.Onboarded, state.HasSection
	values := map[string]string{
		domainauth.KeyOnboarded:  strconv.FormatBool(state.Onboarded),
		domainauth.KeyHasSection: strconv.FormatBool(state.HasSection),
	}
	if !state.Unavailable {
		sess.OnboardingCheckedAt = now
		values[domainauth.KeyOnboardingCheckedAt] = domainauth.FormatTime(now)
	}
	if err := h.SetMany(ctx, values); err != nil {
		s.logger.Warn("cache onboarding status failed", "error", err)
	}
	return state
}

func onboardingOutcome(s OnboardingState) string {
	switch {
	case s.Unavailable:
		return "unavailable"
	case s.Onboarded:
		return "onboarded"
	default:
		return "pending"
	}
}

// SessionStatus describes the caller's session for polling clients.
type SessionStatus struct {
	Authenticated    bool      `json:"authenticated"`
	Role             string    `json:"role,omitempty"`
	ExpiresAt        time.Time `json:"expires_at,omitzero"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// Status reports the session state without extending it.
func (s *SessionService) Status(sess domainauth.Session) SessionStatus {
	now := s.now()
	if !sess.IsAuthenticated() || sess.Expired(now) {
		return SessionStatus{}
	}
	st := SessionStatus{Authenticated: true, Role: string(sess.Role), ExpiresAt: sess.Expiry}
	if !sess.Expiry.IsZero() {
		st.RemainingSeconds = int64(sess.Expiry.Sub(now) / time.Second)
	}
	return st
}

// ActionResult is a plain success/message outcome.
type ActionResult struct {
	Success bool
	Message string
	Errors  []string
}

// CompleteOnboarding forwards the student's onboarding form and, on success,
// marks the session onboarded.
func (s *SessionService) CompleteOnboarding(
	ctx context.Context,
	h ports.SessionHandle,
	sess *domainauth.Session,
	fields map[string]string,
) ActionResult {
	p, err := s.identity.CompleteOnboarding(ctx, sess.AuthToken, fields)
	if err != nil {
		s.logger.Warn("complete onboarding failed", "error", err)
		return ActionResult{Message: MsgServiceUnavailable}
	}
	if !p.Satisfies(upstream.RuleSuccess) {
		return ActionResult{
			Message: p.Message("We could not complete your enrollment. Please review your selections."),
			Errors:  p.Strings("errors"),
		}
	}

	now := s.now().UTC()
	sess.Onboarded = true
	sess.HasSection = p.Bool("has_section", fields["section_id"] != "")
	sess.OnboardingCheckedAt = now
	if err := h.SetMany(ctx, map[string]string{
		domainauth.KeyOnboarded:           "true",
		domainauth.KeyHasSection:          strconv.FormatBool(sess.HasSection),
		domainauth.KeyOnboardingCheckedAt: domainauth.FormatTime(now),
	}); err != nil {
		s.logger.Warn("cache onboarding completion failed", "error", err)
	}
	return ActionResult{Success: true, Message: p.Message("Enrollment complete.")}
}

// Lookup proxies a reference-data query with the session's bearer token.
func (s *SessionService) Lookup(
	ctx context.Context,
	sess domainauth.Session,
	kind ports.LookupKind,
	query url.Values,
) (upstream.Payload, error) {
	return s.identity.Lookup(ctx, sess.AuthToken, kind, query)
}
