// Package identity implements ports.IdentityClient over the identity
// service's JSON HTTP API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/target/attendance-gateway/internal/errors"
	"github.com/target/attendance-gateway/internal/observability/metrics"
	"github.com/target/attendance-gateway/internal/observability/statsd"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/upstream"
	"golang.org/x/oauth2"
)

// Endpoint paths relative to the configured base URL.
const (
	PathValidateRegistration   = "/auth/validate-registration"
	PathValidateFace           = "/auth/validate-face"
	PathSendRegistrationOTP    = "/auth/send-registration-otp"
	PathVerifyRegistrationOTP  = "/auth/verify-registration-otp"
	PathValidateLogin          = "/auth/validate-login"
	PathSendLoginOTP           = "/auth/send-login-otp"
	PathVerifyLoginOTP         = "/auth/verify-login-otp"
	PathValidateForgotPassword = "/auth/validate-forgot-password-email"
	PathSendPasswordResetOTP   = "/auth/send-password-reset-otp"
	PathVerifyPasswordResetOTP = "/auth/verify-password-reset-otp"
	PathResetPassword          = "/auth/reset-password"
	PathOnboardingStatus       = "/student/onboarding-status"
	PathCompleteOnboarding     = "/student/complete-onboarding"
	pathLookupPrefix           = "/student/"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Options configures the identity client.
type Options struct {
	BaseURL string
	// Timeout applies to each request. Zero leaves the transport default in place.
	Timeout    time.Duration
	HTTPClient *http.Client // Optional
	Logger     *slog.Logger
	Metrics    statsd.Sink
}

// Client talks to the identity service.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	metrics    statsd.Sink
}

var _ ports.IdentityClient = (*Client)(nil)

// NewClient validates opts and builds a client.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("identity base URL is required")
	}
	base, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse identity base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("identity base URL must be http(s): %q", raw)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{base: base, httpClient: httpClient, logger: logger, metrics: opts.Metrics}, nil
}

type otpBody struct {
	OTPID   string `json:"otp_id"`
	OTPCode string `json:"otp_code"`
}

type emailBody struct {
	Email string `json:"email"`
}

func (c *Client) ValidateRegistration(ctx context.Context, fields map[string]string) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathValidateRegistration, fields)
}

func (c *Client) ValidateFace(ctx context.Context, image string) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathValidateFace, map[string]string{"face_image": image})
}

func (c *Client) SendRegistrationOTP(ctx context.Context, req ports.RegistrationRequest) (upstream.Payload, error) {
	body := struct {
		RegistrationData map[string]string `json:"registration_data"`
		FaceImage        string            `json:"face_image"`
	}{req.Fields, req.FaceImage}
	return c.post(ctx, c.httpClient, PathSendRegistrationOTP, body)
}

func (c *Client) VerifyRegistrationOTP(ctx context.Context, in ports.OTPVerification) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathVerifyRegistrationOTP, otpBody{in.OTPID, in.Code})
}

func (c *Client) ValidateLogin(ctx context.Context, in ports.Credentials) (upstream.Payload, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{in.Email, in.Password}
	return c.post(ctx, c.httpClient, PathValidateLogin, body)
}

func (c *Client) SendLoginOTP(ctx context.Context, email string) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathSendLoginOTP, emailBody{email})
}

func (c *Client) VerifyLoginOTP(ctx context.Context, in ports.OTPVerification) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathVerifyLoginOTP, otpBody{in.OTPID, in.Code})
}

func (c *Client) ValidateForgotPasswordEmail(ctx context.Context, email string) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathValidateForgotPassword, emailBody{email})
}

func (c *Client) SendPasswordResetOTP(ctx context.Context, email string) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathSendPasswordResetOTP, emailBody{email})
}

func (c *Client) VerifyPasswordResetOTP(ctx context.Context, in ports.OTPVerification) (upstream.Payload, error) {
	return c.post(ctx, c.httpClient, PathVerifyPasswordResetOTP, otpBody{in.OTPID, in.Code})
}

func (c *Client) ResetPassword(ctx context.Context, in ports.PasswordReset) (upstream.Payload, error) {
	body := struct {
		ResetToken      string `json:"reset_token"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password,omitempty"`
	}{in.ResetToken, in.NewPassword, in.ConfirmPassword}
	return c.post(ctx, c.httpClient, PathResetPassword, body)
}

func (c *Client) CheckOnboardingStatus(ctx context.Context, bearer string) (upstream.Payload, error) {
	hc, err := c.bearerClient(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, hc, PathOnboardingStatus, nil)
}

func (c *Client) CompleteOnboarding(ctx context.Context, bearer string, fields map[string]string) (upstream.Payload, error) {
	hc, err := c.bearerClient(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return c.post(ctx, hc, PathCompleteOnboarding, fields)
}

func (c *Client) Lookup(ctx context.Context, bearer string, kind ports.LookupKind, query url.Values) (upstream.Payload, error) {
	switch kind {
	case ports.LookupPrograms, ports.LookupSections, ports.LookupCourses:
	default:
		return nil, apperrors.Validation("unknown lookup kind")
	}
	hc, err := c.bearerClient(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, hc, pathLookupPrefix+string(kind), query)
}

// bearerClient returns an HTTP client that sends the session's bearer token.
func (c *Client) bearerClient(ctx context.Context, bearer string) (*http.Client, error) {
	if strings.TrimSpace(bearer) == "" {
		return nil, apperrors.Unauthorized("missing bearer token")
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, src), nil
}

func (c *Client) post(ctx context.Context, hc *http.Client, path string, body any) (upstream.Payload, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode identity request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build identity request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(hc, req, path)
}

func (c *Client) get(ctx context.Context, hc *http.Client, path string, query url.Values) (upstream.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build identity request")
	}
	return c.do(hc, req, path)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do executes req and decodes the body. Any well-formed JSON body is returned
// as a payload regardless of status code; the caller decides success from its
// fields. Transport errors and unparsable bodies are returned as errors.
func (c *Client) do(hc *http.Client, req *http.Request, path string) (upstream.Payload, error) {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.observe(path, "", start, err)
		c.logger.Warn("identity request failed", "path", path, "error", err)
		return nil, apperrors.Upstream(err, "identity service request failed")
	}
	defer resp.Body.Close()
	c.observe(path, strconv.Itoa(resp.StatusCode), start, nil)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Upstream(err, "read identity response")
	}

	payload, err := upstream.Decode(raw)
	if err != nil {
		c.logger.Warn("identity response unparsable",
			"path", path,
			"status", resp.StatusCode,
			"bytes", len(raw),
		)
		return nil, apperrors.UpstreamMalformed(err, "identity service returned an unreadable response")
	}
	if resp.StatusCode >= http.StatusInternalServerError && len(payload) == 0 {
		return nil, apperrors.Upstream(fmt.Errorf("status %d", resp.StatusCode), "identity service error")
	}
	return payload, nil
}

func (c *Client) observe(path, status string, start time.Time, err error) {
	metrics.EmitIdentityCall(c.metrics, metrics.IdentityCall{
		Path:     path,
		Status:   status,
		Duration: time.Since(start),
		Err:      err,
	})
}
