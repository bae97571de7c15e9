package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/http/validation"
	"github.com/target/attendance-gateway/internal/observability/audit"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/service"
)

// Field limits for inbound forms.
const (
	maxNameLen     = 100
	maxEmailLen    = 254
	minPasswordLen = 8
	maxPasswordLen = 128
	maxFaceBytes   = 10 << 20
)

var studentNumberPattern = regexp.MustCompile(`^[A-Za-z0-9-]{4,32}$`)

// registrationFieldsForwarded lists the form fields passed to the identity
// service as registration data. Anything else the client sends is dropped.
var registrationFieldsForwarded = []string{ //nolint:gochecknoglobals // read-only field list
	"first_name", "middle_name", "last_name", "email", "student_number",
	"password", "confirm_password", "contact_number", "birthdate", "gender",
}

// AuthHandlers serves the registration, login and password reset endpoints.
type AuthHandlers struct {
	OTP        *service.OTPService
	Validation *service.ValidationService
	Sessions   *service.SessionService
	Events     audit.Sink
	Cookies    CookieConfig
	Logger     *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// fields reads the request body, answering malformed input itself.
func (h *AuthHandlers) fields(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	f, err := readFields(w, r)
	if err != nil {
		h.logger().DebugContext(r.Context(), "unreadable request body", "error", err)
		WriteFailure(w, http.StatusBadRequest, "The request could not be read.")
		return nil, false
	}
	return f, true
}

// invalid writes the first local validation failure, if any.
func invalid(w http.ResponseWriter, fv *validation.FieldValidator) bool {
	if fv.OK() {
		return false
	}
	WriteEnvelope(w, Result(false, fv.First()).With("errors", fv.Errors()))
	return true
}

func actionEnvelope(res service.ActionResult) Envelope {
	e := Result(res.Success, res.Message)
	if len(res.Errors) > 0 {
		e = e.With("errors", res.Errors)
	}
	return e
}

func issueEnvelope(res service.IssueResult) Envelope {
	return Result(res.Success, res.Message).With("otp_id", res.OTPID)
}

func verifyEnvelope(res service.VerifyResult) Envelope {
	e := Result(res.Success, res.Message)
	if res.Category != "" {
		e = e.With("category", string(res.Category))
	}
	return e
}

func registrationRequest(f map[string]string) ports.RegistrationRequest {
	data := make(map[string]string, len(registrationFieldsForwarded))
	for _, k := range registrationFieldsForwarded {
		if v, ok := f[k]; ok {
			data[k] = strings.TrimSpace(v)
		}
	}
	// Passwords are forwarded verbatim.
	for _, k := range []string{"password", "confirm_password"} {
		if v, ok := f[k]; ok {
			data[k] = v
		}
	}
	return ports.RegistrationRequest{Fields: data, FaceImage: f["face_image"]}
}

func validateRegistrationForm(f map[string]string) *validation.FieldValidator {
	return validation.New().
		Validate("first_name", f["first_name"], validation.Required("First name", maxNameLen)).
		Validate("last_name", f["last_name"], validation.Required("Last name", maxNameLen)).
		Validate("email", f["email"], validation.Required("Email", maxEmailLen), validation.Email("Email")).
		Validate("student_number", f["student_number"],
			validation.Required("Student number", 32), validation.Pattern("Student number", studentNumberPattern)).
		Validate("password", f["password"], validation.RequiredRange("Password", minPasswordLen, maxPasswordLen)).
		Validate("confirm_password", f["confirm_password"], validation.Matches("Passwords do not match.", f["password"]))
}

// RegisterValidate checks the registration form.
// POST /student/auth/api/register/validate.
func (h *AuthHandlers) RegisterValidate(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok || invalid(w, validateRegistrationForm(f)) {
		return
	}
	WriteEnvelope(w, actionEnvelope(h.Validation.ValidateRegistration(r.Context(), registrationRequest(f).Fields)))
}

// RegisterValidateFace checks a captured face sample.
// POST /student/auth/api/register/validate-face.
func (h *AuthHandlers) RegisterValidateFace(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok || invalid(w, validation.New().Validate("face_image", f["face_image"], validation.FaceImage(maxFaceBytes))) {
		return
	}
	WriteEnvelope(w, actionEnvelope(h.Validation.ValidateFace(r.Context(), f["face_image"])))
}

// RegisterSendOTP issues a registration code for the pending registration.
// POST /student/auth/api/register/send-otp.
func (h *AuthHandlers) RegisterSendOTP(w http.ResponseWriter, r *http.Request) {
	h.registerIssue(w, r, h.OTP.IssueRegistration)
}

// RegisterResendOTP issues a fresh registration code.
// POST /student/auth/api/register/resend-otp.
func (h *AuthHandlers) RegisterResendOTP(w http.ResponseWriter, r *http.Request) {
	h.registerIssue(w, r, h.OTP.ResendRegistration)
}

func (h *AuthHandlers) registerIssue(
	w http.ResponseWriter,
	r *http.Request,
	issue func(ctx context.Context, req ports.RegistrationRequest) service.IssueResult,
) {
	f, ok := h.fields(w, r)
	if !ok {
		return
	}
	fv := validateRegistrationForm(f).
		Validate("face_image", f["face_image"], validation.FaceImage(maxFaceBytes))
	if invalid(w, fv) {
		return
	}
	WriteEnvelope(w, issueEnvelope(issue(r.Context(), registrationRequest(f))))
}

// RegisterVerifyOTP completes a registration.
// POST /student/auth/api/register/verify-otp.
func (h *AuthHandlers) RegisterVerifyOTP(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok {
		return
	}
	res := h.OTP.VerifyRegistration(r.Context(), ports.OTPVerification{OTPID: f["otp_id"], Code: f["otp_code"]})
	e := verifyEnvelope(res.VerifyResult)
	if res.User != nil {
		e = e.With("user", res.User).With("redirect", domainauth.AreaStudent.LoginPath())
	}
	WriteEnvelope(w, e)
}

// LoginHandlers serves the login endpoints of one area.
type LoginHandlers struct {
	*AuthHandlers
	Area domainauth.Area
}

// Validate checks the first login factor.
// POST /{area}/auth/api/login/validate.
func (h LoginHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok {
		return
	}
	fv := validation.New().
		Validate("email", f["email"], validation.Required("Email", maxEmailLen), validation.Email("Email")).
		Validate("password", f["password"], validation.Required("Password", maxPasswordLen))
	if invalid(w, fv) {
		return
	}
	res := h.Validation.ValidateLogin(r.Context(), ports.Credentials{Email: f["email"], Password: f["password"]})
	if !res.Success {
		emitFor(h.Events, r, audit.EventLoginFailure, domainauth.Session{Email: strings.TrimSpace(f["email"])},
			map[string]string{"step": "credentials", "area": string(h.Area)})
	}
	WriteEnvelope(w, actionEnvelope(res))
}

// SendOTP issues a login code.
// POST /{area}/auth/api/login/send-otp.
func (h LoginHandlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok {
		return
	}
	if invalid(w, validateEmail(f["email"])) {
		return
	}
	WriteEnvelope(w, issueEnvelope(h.OTP.IssueLogin(r.Context(), f["email"])))
}

// VerifyOTP completes a login. On success the session cookie is rotated and
// the client is told where to go and how long to wait before going there.
// POST /{area}/auth/api/login/verify-otp.
func (h LoginHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok {
		return
	}
	current, _ := HandleFromContext(r.Context())
	res := h.OTP.VerifyLogin(r.Context(), current, ports.OTPVerification{OTPID: f["otp_id"], Code: f["otp_code"]})
	e := verifyEnvelope(res.VerifyResult)
	if !res.Success {
		emitFor(h.Events, r, audit.EventLoginFailure, domainauth.Session{},
			map[string]string{"step": "otp", "area": string(h.Area), "category": string(res.Category)})
		WriteEnvelope(w, e)
		return
	}

	h.Cookies.SetSession(w, r, res.SessionID)
	emitFor(h.Events, r, audit.EventLoginSuccess, res.Session, map[string]string{"area": string(h.Area)})
	WriteEnvelope(w, e.
		With("redirect", res.Redirect).
		With("delay_ms", res.TransitionDelay.Milliseconds()).
		With("role", string(res.Session.Role)))
}

// PasswordHandlers serves the password reset endpoints of one area.
type PasswordHandlers struct {
	*AuthHandlers
	Area domainauth.Area
}

func validateEmail(email string) *validation.FieldValidator {
	return validation.New().Validate("email", email, validation.Required("Email", maxEmailLen), validation.Email("Email"))
}

// ValidateEmail checks that an account exists for the email.
// POST /{area}/auth/api/password/validate-email.
func (h PasswordHandlers) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok || invalid(w, validateEmail(f["email"])) {
		return
	}
	WriteEnvelope(w, actionEnvelope(h.Validation.ValidateForgotPasswordEmail(r.Context(), f["email"])))
}

// SendOTP issues a password reset code.
// POST /{area}/auth/api/password/send-otp.
func (h PasswordHandlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok || invalid(w, validateEmail(f["email"])) {
		return
	}
	WriteEnvelope(w, issueEnvelope(h.OTP.IssuePasswordReset(r.Context(), f["email"])))
}

// VerifyOTP checks a reset code; reset_token is null unless it succeeded.
// POST /{area}/auth/api/password/verify-otp.
func (h PasswordHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok {
		return
	}
	res := h.OTP.VerifyPasswordReset(r.Context(), ports.OTPVerification{OTPID: f["otp_id"], Code: f["otp_code"]})
	var token any
	if res.Success {
		token = res.ResetToken
	}
	WriteEnvelope(w, verifyEnvelope(res.VerifyResult).With("reset_token", token))
}

// Reset sets the new password.
// POST /{area}/auth/api/password/reset.
func (h PasswordHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	f, ok := h.fields(w, r)
	if !ok {
		return
	}
	fv := validation.New().
		Validate("new_password", f["new_password"], validation.RequiredRange("New password", minPasswordLen, maxPasswordLen)).
		Validate("confirm_password", f["confirm_password"], validation.Matches("Passwords do not match.", f["new_password"]))
	if invalid(w, fv) {
		return
	}
	res := h.Validation.ResetPassword(r.Context(), ports.PasswordReset{
		ResetToken:      strings.TrimSpace(f["reset_token"]),
		NewPassword:     f["new_password"],
		ConfirmPassword: f["confirm_password"],
	})
	e := actionEnvelope(res)
	if res.Success {
		e = e.With("redirect", h.Area.LoginPath())
	}
	WriteEnvelope(w, e)
}

// Logout destroys the session and always reports success.
// POST /{area}/logout.
func (h *AuthHandlers) Logout(area domainauth.Area) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sess domainauth.Session
		handle, ok := HandleFromContext(r.Context())
		if ok {
			if loaded, err := h.Sessions.Load(r.Context(), handle); err == nil {
				sess = loaded
			} else {
				h.logger().WarnContext(r.Context(), "load session for logout failed", "error", err)
			}
		}
		emitFor(h.Events, r, audit.EventLogout, sess, map[string]string{"area": string(area)})

		res := service.LogoutResult{Success: true, Message: "You have been logged out.", Redirect: area.LoginPath()}
		if ok {
			res = h.Sessions.Logout(r.Context(), handle, area)
		}
		h.Cookies.ClearSession(w, r)
		WriteEnvelope(w, Result(res.Success, res.Message).With("redirect", res.Redirect))
	}
}
