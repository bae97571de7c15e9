package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/target/attendance-gateway/internal/domain/otp"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/upstream"
)

// MsgServiceUnavailable is shown whenever the identity service cannot be reached
// or answers with something unreadable.
const MsgServiceUnavailable = "The service is temporarily unavailable. Please try again."

// Fixed texts for the login and account lookup steps. Upstream wording is
// not echoed for these.
const (
	MsgInvalidCredentials = "Invalid email or password."
	MsgUnknownEmail       = "We could not find an account for that email address."
	MsgInvalidFace        = "We could not verify your photo. Please try again with your face clearly visible."
)

// ValidationServiceOptions groups dependencies for ValidationService.
type ValidationServiceOptions struct {
	Identity ports.IdentityClient
	Logger   *slog.Logger
}

// ValidationService runs the pre-OTP validation steps of each flow and the
// final password reset.
type ValidationService struct {
	identity ports.IdentityClient
	logger   *slog.Logger
}

// NewValidationService constructs a new ValidationService.
func NewValidationService(opts ValidationServiceOptions) *ValidationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidationService{identity: opts.Identity, logger: logger}
}

// ValidateRegistration checks the registration form. Rule messages from the
// identity service (password strength, duplicate email) are passed through.
func (s *ValidationService) ValidateRegistration(ctx context.Context, fields map[string]string) ActionResult {
	p, err := s.identity.ValidateRegistration(ctx, fields)
	if err != nil {
		s.logger.Warn("validate registration failed", "error", err)
		return ActionResult{Message: MsgServiceUnavailable}
	}
	if p.Satisfies(upstream.RuleValid) {
		return ActionResult{Success: true, Message: p.Message("Registration details look good.")}
	}
	errs := p.Strings("errors")
	return ActionResult{Message: p.Message(firstOr(errs, "Please correct the highlighted fields.")), Errors: errs}
}

// ValidateFace checks a captured face sample.
func (s *ValidationService) ValidateFace(ctx context.Context, image string) ActionResult {
	p, err := s.identity.ValidateFace(ctx, image)
	if err != nil {
		s.logger.Warn("validate face failed", "error", err)
		return ActionResult{Message: MsgServiceUnavailable}
	}
	if p.Satisfies(upstream.RuleValid) {
		return ActionResult{Success: true, Message: p.Message("Face captured successfully.")}
	}
	return ActionResult{Message: p.Message(MsgInvalidFace)}
}

// ValidateLogin checks the first login factor.
func (s *ValidationService) ValidateLogin(ctx context.Context, in ports.Credentials) ActionResult {
	in.Email = strings.TrimSpace(in.Email)
	p, err := s.identity.ValidateLogin(ctx, in)
	if err != nil {
		s.logger.Warn("validate login failed", "error", err)
		return ActionResult{Message: MsgServiceUnavailable}
	}
	if p.Satisfies(upstream.RuleValid) {
		return ActionResult{Success: true, Message: "Credentials verified."}
	}
	return ActionResult{Message: MsgInvalidCredentials}
}

// ValidateForgotPasswordEmail checks that an account exists for email.
func (s *ValidationService) ValidateForgotPasswordEmail(ctx context.Context, email string) ActionResult {
	p, err := s.identity.ValidateForgotPasswordEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		s.logger.Warn("validate forgot password email failed", "error", err)
		return ActionResult{Message: MsgServiceUnavailable}
	}
	if p.Satisfies(upstream.RuleValid) {
		return ActionResult{Success: true, Message: "Email verified."}
	}
	return ActionResult{Message: MsgUnknownEmail}
}

// ResetPassword sets a new password using a verified reset token. Password
// rule messages from the identity service are passed through.
func (s *ValidationService) ResetPassword(ctx context.Context, in ports.PasswordReset) ActionResult {
	if strings.TrimSpace(in.ResetToken) == "" {
		return ActionResult{Message: otp.MissingInputMessage(otp.FlowPasswordReset, "", "")}
	}
	p, err := s.identity.ResetPassword(ctx, in)
	if err != nil {
		s.logger.Warn("reset password failed", "error", err)
		return ActionResult{Message: MsgServiceUnavailable}
	}
	if p.Satisfies(upstream.RuleSuccess) {
		return ActionResult{Success: true, Message: p.Message("Your password has been reset. You can now sign in.")}
	}
	errs := p.Strings("errors")
	return ActionResult{Message: p.Message(firstOr(errs, "We could not reset your password. Please try again.")), Errors: errs}
}

func firstOr(list []string, def string) string {
	if len(list) > 0 {
		return list[0]
	}
	return def
}
