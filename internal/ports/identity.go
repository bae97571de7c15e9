package ports

import (
	"context"
	"net/url"

	"github.com/target/attendance-gateway/internal/upstream"
)

// RegistrationRequest is the pending registration sent with a registration OTP.
type RegistrationRequest struct {
	Fields    map[string]string
	FaceImage string
}

// OTPVerification pairs a challenge id with the code entered by the user.
type OTPVerification struct {
	OTPID string
	Code  string
}

// Credentials are the first login factor.
type Credentials struct {
	Email    string
	Password string
}

// PasswordReset completes a password reset with a verified reset token.
type PasswordReset struct {
	ResetToken      string
	NewPassword     string
	ConfirmPassword string
}

// LookupKind names a reference-data collection served by the identity service.
type LookupKind string

const (
	LookupPrograms LookupKind = "programs"
	LookupSections LookupKind = "sections"
	LookupCourses  LookupKind = "courses"
)

// IdentityClient is the boundary to the identity/attendance service.
//
// Every method returns the decoded response payload. An error means the call
// itself failed (transport error or unparsable body); a well-formed response
// reporting failure is returned as a payload with a nil error.
type IdentityClient interface {
	ValidateRegistration(ctx context.Context, fields map[string]string) (upstream.Payload, error)
	ValidateFace(ctx context.Context, image string) (upstream.Payload, error)
	SendRegistrationOTP(ctx context.Context, req RegistrationRequest) (upstream.Payload, error)
	VerifyRegistrationOTP(ctx context.Context, in OTPVerification) (upstream.Payload, error)

	ValidateLogin(ctx context.Context, in Credentials) (upstream.Payload, error)
	SendLoginOTP(ctx context.Context, email string) (upstream.Payload, error)
	VerifyLoginOTP(ctx context.Context, in OTPVerification) (upstream.Payload, error)

	ValidateForgotPasswordEmail(ctx context.Context, email string) (upstream.Payload, error)
	SendPasswordResetOTP(ctx context.Context, email string) (upstream.Payload, error)
	VerifyPasswordResetOTP(ctx context.Context, in OTPVerification) (upstream.Payload, error)
	ResetPassword(ctx context.Context, in PasswordReset) (upstream.Payload, error)

	// Bearer-authenticated student calls.
	CheckOnboardingStatus(ctx context.Context, bearer string) (upstream.Payload, error)
	CompleteOnboarding(ctx context.Context, bearer string, fields map[string]string) (upstream.Payload, error)
	Lookup(ctx context.Context, bearer string, kind LookupKind, query url.Values) (upstream.Payload, error)
}
