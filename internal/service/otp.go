package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/domain/otp"
	"github.com/target/attendance-gateway/internal/observability/statsd"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/upstream"
)

// LoginTransitionDelay is how long the client waits on the success screen
// before following the login redirect.
const LoginTransitionDelay = 1500 * time.Millisecond

// DefaultSessionTTL is the sliding inactivity window.
const DefaultSessionTTL = 30 * time.Minute

// OTPServiceOptions groups dependencies for OTPService.
type OTPServiceOptions struct {
	Identity ports.IdentityClient
	Sessions ports.SessionStore
	// SessionTTL is the initial expiry window written at login.
	SessionTTL time.Duration
	// NewSessionID mints the rotated session id. Defaults to uuid.NewString.
	NewSessionID func() string
	Now          func() time.Time
	Logger       *slog.Logger
	Metrics      statsd.Sink
}

// OTPService drives the registration, login and password reset OTP flows
// against the identity service.
//
// Every operation recovers its own failures: results carry a caller-facing
// message and never an error, and upstream text is only exposed where a
// result field says so.
type OTPService struct {
	identity ports.IdentityClient
	sessions ports.SessionStore
	ttl      time.Duration
	newID    func() string
	now      func() time.Time
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewOTPService constructs a new OTPService.
func NewOTPService(opts OTPServiceOptions) *OTPService {
	s := &OTPService{
		identity: opts.Identity,
		sessions: opts.Sessions,
		ttl:      opts.SessionTTL,
		newID:    opts.NewSessionID,
		now:      opts.Now,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.newID == nil {
		s.newID = uuid.NewString
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

// IssueResult is the outcome of issuing a challenge.
type IssueResult struct {
	Success   bool
	OTPID     string
	Message   string
	Challenge otp.Challenge
}

// VerifyResult is the outcome shared by every verify operation.
type VerifyResult struct {
	Success   bool
	Message   string
	Category  otp.Category
	Challenge otp.Challenge
}

// RegisteredUser is the account created by a successful registration.
type RegisteredUser struct {
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	StudentNumber string `json:"student_number,omitempty"`
	Role          string `json:"role"`
}

// RegistrationVerifyResult adds the created user on success.
type RegistrationVerifyResult struct {
	VerifyResult
	User *RegisteredUser
}

// LoginVerifyResult adds the materialized session on success.
type LoginVerifyResult struct {
	VerifyResult
	// SessionID is the rotated session id the caller must now present.
	SessionID       string
	Session         domainauth.Session
	Redirect        string
	TransitionDelay time.Duration
}

// PasswordResetVerifyResult carries the reset token on success only.
type PasswordResetVerifyResult struct {
	VerifyResult
	ResetToken string
}

// IssueRegistration sends a registration code for the pending registration.
func (s *OTPService) IssueRegistration(ctx context.Context, req ports.RegistrationRequest) IssueResult {
	p, err := s.identity.SendRegistrationOTP(ctx, req)
	return s.issued(otp.FlowRegistration, p, err)
}

// ResendRegistration issues a fresh registration code. The identity service
// sees the same request as the original issue.
func (s *OTPService) ResendRegistration(ctx context.Context, req ports.RegistrationRequest) IssueResult {
	return s.IssueRegistration(ctx, req)
}

// IssueLogin sends a login code to email.
func (s *OTPService) IssueLogin(ctx context.Context, email string) IssueResult {
	p, err := s.identity.SendLoginOTP(ctx, strings.TrimSpace(email))
	return s.issued(otp.FlowLogin, p, err)
}

// IssuePasswordReset sends a password reset code to email.
func (s *OTPService) IssuePasswordReset(ctx context.Context, email string) IssueResult {
	p, err := s.identity.SendPasswordResetOTP(ctx, strings.TrimSpace(email))
	return s.issued(otp.FlowPasswordReset, p, err)
}

// issued turns an issue response into a result. The challenge id always
// comes from the identity service; a response without one is a failure.
func (s *OTPService) issued(flow otp.Flow, p upstream.Payload, err error) IssueResult {
	challenge := otp.Challenge{Flow: flow, State: otp.StateNone}
	if err != nil {
		s.logger.Warn("otp issue failed", "flow", flow, "error", err)
		s.count("otp.issue", flow, "error")
		return IssueResult{Message: otp.MsgIssueFailed, Challenge: challenge}
	}
	id := p.ID("otp_id")
	if id == "" {
		id = p.ID("data.otp_id")
	}
	if id == "" || !p.Bool("success", true) {
		s.logger.Info("otp issue rejected", "flow", flow, "has_id", id != "")
		s.count("otp.issue", flow, "rejected")
		return IssueResult{Message: otp.MsgIssueFailed, Challenge: challenge}
	}
	s.count("otp.issue", flow, "ok")
	return IssueResult{
		Success:   true,
		OTPID:     id,
		Message:   otp.MsgCodeSent,
		Challenge: challenge.Issued(id),
	}
}

// verify performs the shared part of every verify operation. It returns the
// payload only when the identity service accepted the code.
func (s *OTPService) verify(
	ctx context.Context,
	flow otp.Flow,
	in ports.OTPVerification,
	call func(context.Context, ports.OTPVerification) (upstream.Payload, error),
	success upstream.Rule,
) (VerifyResult, upstream.Payload) {
	in.OTPID = strings.TrimSpace(in.OTPID)
	in.Code = strings.TrimSpace(in.Code)
	challenge := otp.Challenge{Flow: flow, State: otp.StateNone}.Issued(in.OTPID)

	if msg := otp.MissingInputMessage(flow, in.OTPID, in.Code); msg != "" {
		s.count("otp.verify", flow, "missing_input")
		return VerifyResult{Message: msg, Challenge: challenge}, nil
	}

	p, err := call(ctx, in)
	if err != nil {
		s.logger.Warn("otp verify failed", "flow", flow, "error", err)
		return s.verifyFailed(flow, challenge, otp.CategoryGeneric), nil
	}
	if !p.Satisfies(success) {
		return s.verifyFailed(flow, challenge, otp.Classify(p.Message(""))), nil
	}
	s.count("otp.verify", flow, "ok")
	return VerifyResult{Success: true, Challenge: challenge.Verified()}, p
}

func (s *OTPService) verifyFailed(flow otp.Flow, c otp.Challenge, cat otp.Category) VerifyResult {
	s.count("otp.verify", flow, string(cat))
	return VerifyResult{Message: cat.Message(), Category: cat, Challenge: c.Failed(cat)}
}

// VerifyRegistration completes a registration.
func (s *OTPService) VerifyRegistration(ctx context.Context, in ports.OTPVerification) RegistrationVerifyResult {
	res, p := s.verify(ctx, otp.FlowRegistration, in, s.identity.VerifyRegistrationOTP, upstream.RuleStatusSuccess)
	if !res.Success {
		return RegistrationVerifyResult{VerifyResult: res}
	}
	res.Message = p.Message("Registration complete. You can now sign in.")

	user := p.Object("user")
	first, last := splitName(user)
	return RegistrationVerifyResult{
		VerifyResult: res,
		User: &RegisteredUser{
			UserID:        user.ID("user_id"),
			Email:         user.String("email", ""),
			FirstName:     first,
			LastName:      last,
			StudentNumber: user.String("student_number", ""),
			Role:          string(domainauth.RoleStudent),
		},
	}
}

// VerifyLogin completes a login and materializes the session.
//
// The authenticated session is written under a freshly minted id in a single
// atomic replace; only then is the anonymous session cleared. If the write
// fails the caller's current session is left untouched and the login fails.
func (s *OTPService) VerifyLogin(ctx context.Context, current ports.SessionHandle, in ports.OTPVerification) LoginVerifyResult {
	res, p := s.verify(ctx, otp.FlowLogin, in, s.identity.VerifyLoginOTP, upstream.RuleSuccess)
	if !res.Success {
		return LoginVerifyResult{VerifyResult: res}
	}

	sess, ok := s.sessionFromLogin(p)
	if !ok {
		s.logger.Warn("login verify response missing token")
		return LoginVerifyResult{VerifyResult: s.verifyFailed(otp.FlowLogin, res.Challenge, otp.CategoryGeneric)}
	}
	if sess.Expired(s.now()) {
		s.logger.Warn("login verify returned an expired bearer token", "expired_at", domainauth.FormatTime(sess.Expiry))
		return LoginVerifyResult{VerifyResult: s.verifyFailed(otp.FlowLogin, res.Challenge, otp.CategoryGeneric)}
	}

	resolution := domainauth.Resolve(sess.RawRole)
	redirect := resolution.Destination.Path()
	if current != nil {
		if back, found, err := current.Get(ctx, domainauth.KeyRedirectAfterLogin); err == nil && found &&
			resolution.Destination.Area().Contains(back) {
			redirect = back
		}
	}

	next := s.sessions.Handle(s.newID())
	if err := next.Replace(ctx, sess.Values()); err != nil {
		s.logger.Error("materialize session failed", "error", err)
		s.count("otp.verify", otp.FlowLogin, "store_error")
		return LoginVerifyResult{VerifyResult: VerifyResult{
			Message:   otp.CategoryGeneric.Message(),
			Category:  otp.CategoryGeneric,
			Challenge: res.Challenge,
		}}
	}
	if current != nil {
		if err := current.Clear(ctx); err != nil {
			s.logger.Warn("clear pre-login session failed", "error", err)
		}
	}

	res.Message = "Login successful. Redirecting..."
	return LoginVerifyResult{
		VerifyResult:    res,
		SessionID:       next.ID(),
		Session:         sess,
		Redirect:        redirect,
		TransitionDelay: LoginTransitionDelay,
	}
}

// sessionFromLogin builds the authenticated session from a login response.
// ok is false when the response carries no bearer token.
func (s *OTPService) sessionFromLogin(p upstream.Payload) (domainauth.Session, bool) {
	token := firstString(p, "token", "access_token", "data.token", "user.token")
	if token == "" {
		return domainauth.Session{}, false
	}
	user := p.Object("user")
	rawRole := user.String("role", "")
	first, last := splitName(user)
	now := s.now().UTC()

	sess := domainauth.Session{
		Authenticated:  true,
		Role:           domainauth.NormalizeRole(rawRole),
		RawRole:        rawRole,
		UserID:         user.ID("user_id"),
		Email:          user.String("email", ""),
		FirstName:      first,
		LastName:       last,
		StudentNumber:  user.String("student_number", ""),
		EmployeeNumber: user.String("employee_number", ""),
		Department:     user.String("department", ""),
		Verified:       user.Bool("verified", false),
		StatusID:       user.ID("status_id"),
		AuthToken:      token,
		LoginTime:      now,
		LastActivity:   now,
		Expiry:         capExpiry(now.Add(s.ttl), token),
	}
	return sess, true
}

// VerifyPasswordReset checks a reset code. The reset token is only returned
// when the identity service accepted the code.
func (s *OTPService) VerifyPasswordReset(ctx context.Context, in ports.OTPVerification) PasswordResetVerifyResult {
	res, p := s.verify(ctx, otp.FlowPasswordReset, in, s.identity.VerifyPasswordResetOTP, upstream.RuleSuccess)
	if !res.Success {
		return PasswordResetVerifyResult{VerifyResult: res}
	}
	token := firstString(p, "reset_token", "data.reset_token")
	if token == "" {
		s.logger.Warn("password reset verify response missing reset token")
		return PasswordResetVerifyResult{VerifyResult: s.verifyFailed(otp.FlowPasswordReset, res.Challenge, otp.CategoryGeneric)}
	}
	res.Message = "Code verified. You can now choose a new password."
	return PasswordResetVerifyResult{VerifyResult: res, ResetToken: token}
}

func (s *OTPService) count(name string, flow otp.Flow, outcome string) {
	s.metrics.Count(name, 1, map[string]string{"flow": string(flow), "outcome": outcome})
}

func firstString(p upstream.Payload, paths ...string) string {
	for _, path := range paths {
		if v := strings.TrimSpace(p.String(path, "")); v != "" {
			return v
		}
	}
	return ""
}

// splitName prefers explicit first/last name fields and falls back to
// splitting "name" on its first space.
func splitName(user upstream.Payload) (string, string) {
	first := strings.TrimSpace(user.String("first_name", ""))
	last := strings.TrimSpace(user.String("last_name", ""))
	if first != "" || last != "" {
		return first, last
	}
	name := strings.TrimSpace(user.String("name", ""))
	if name == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
