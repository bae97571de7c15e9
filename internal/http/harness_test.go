package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/mocks"
	mockauth "github.com/target/attendance-gateway/internal/mocks/auth"
	"github.com/target/attendance-gateway/internal/service"
	"github.com/target/attendance-gateway/internal/testutil"
	"github.com/target/attendance-gateway/internal/upstream"
	"go.uber.org/mock/gomock"
)

const (
	sessionID = "7d1e3f0a-5a7e-4c55-9a47-2b0c3d9b6f11"
	rotatedID = "0b7c9a52-3a1e-4e6f-8f1e-6d2a9c4b8e21"
	csrfToken = "Zm9yZ2VyeS1wcm90ZWN0aW9uLXRva2VuLXZhbHVl"
)

// gateway is a fully wired router backed by fakes.
type gateway struct {
	identity *mocks.MockIdentityClient
	store    *mockauth.SessionStore
	events   *mockauth.RecordingSink
	clock    *testutil.Clock
	handler  http.Handler
}

type gatewayOption func(*RouterServices)

func withEventLog(l EventLister) gatewayOption {
	return func(s *RouterServices) { s.EventLog = l }
}

func withOTPRateLimit(limit int) gatewayOption {
	return func(s *RouterServices) { s.OTPRateLimit, s.OTPRateWindow = limit, time.Minute }
}

func newGateway(t *testing.T, opts ...gatewayOption) *gateway {
	t.Helper()
	identity := mocks.NewMockIdentityClient(gomock.NewController(t))
	store := mockauth.NewSessionStore()
	events := &mockauth.RecordingSink{}
	clock := testutil.NewClock(testutil.TestTime())

	sessions := service.NewSessionService(service.SessionServiceOptions{
		Identity:          identity,
		TTL:               30 * time.Minute,
		OnboardingRefresh: 5 * time.Minute,
		Now:               clock.Now,
	})
	services := RouterServices{
		OTP: service.NewOTPService(service.OTPServiceOptions{
			Identity:     identity,
			Sessions:     store,
			SessionTTL:   30 * time.Minute,
			NewSessionID: func() string { return rotatedID },
			Now:          clock.Now,
		}),
		Validation: service.NewValidationService(service.ValidationServiceOptions{Identity: identity}),
		Sessions:   sessions,
		Store:      store,
		Events:     events,
	}
	for _, opt := range opts {
		opt(&services)
	}
	return &gateway{
		identity: identity,
		store:    store,
		events:   events,
		clock:    clock,
		handler:  NewRouter(services),
	}
}

// seed stores sess under the caller's session id.
func (g *gateway) seed(sess domainauth.Session) {
	g.store.Seed(sessionID, sess.Values())
}

func (g *gateway) session(role domainauth.Role) domainauth.Session {
	return domainauth.Session{
		Authenticated: true,
		Role:          role,
		RawRole:       string(role),
		UserID:        "42",
		Email:         "ana@example.edu",
		FirstName:     "Ana",
		LastName:      "Reyes",
		Verified:      true,
		AuthToken:     "tok",
		Expiry:        g.clock.Now().Add(10 * time.Minute),
	}
}

// withCookies attaches the session cookie and the double-submit CSRF pair.
func withCookies(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: sessionID})
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: csrfToken})
	if requiresCSRFValidation(req.Method) {
		req.Header.Set(DefaultCSRFHeaderName, csrfToken)
	}
	return req
}

// do sends a request carrying the session and CSRF cookies. A non-empty body is sent as JSON.
func (g *gateway) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, withCookies(req))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func payload(t *testing.T, raw string) upstream.Payload {
	t.Helper()
	p, err := upstream.Decode([]byte(raw))
	require.NoError(t, err)
	return p
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCookieName {
			return c
		}
	}
	return nil
}
