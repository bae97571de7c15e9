package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
)

func csrfCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName {
			return c
		}
	}
	return nil
}

func TestCSRFProtection(t *testing.T) {
	var seen string
	h := CSRFProtection(CSRFConfig{CookieDomain: "example.edu"})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromContext(r.Context())
	}))

	t.Run("mints a token on first visit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/student/login", nil)
		req.Header.Set("X-Forwarded-Proto", "http, https")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		c := csrfCookie(rec)
		require.NotNil(t, c)
		assert.NotEmpty(t, c.Value)
		assert.Equal(t, c.Value, seen)
		assert.False(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.Equal(t, "example.edu", c.Domain)
	})

	t.Run("existing token is reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/student/login", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: csrfToken})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Nil(t, csrfCookie(rec))
		assert.Equal(t, csrfToken, seen)
	})

	tests := []struct {
		name   string
		header string
		form   string
		cookie bool
		want   int
	}{
		{name: "matching header", header: csrfToken, cookie: true, want: http.StatusOK},
		{name: "matching form field", form: "csrf_token=" + csrfToken, cookie: true, want: http.StatusOK},
		{name: "mismatched header", header: "forged", cookie: true, want: http.StatusForbidden},
		{name: "mismatched form field", form: "csrf_token=forged", cookie: true, want: http.StatusForbidden},
		{name: "missing token", cookie: true, want: http.StatusForbidden},
		{name: "header without cookie", header: csrfToken, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/student/logout", strings.NewReader(tt.form))
			if tt.form != "" {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			if tt.header != "" {
				req.Header.Set(DefaultCSRFHeaderName, tt.header)
			}
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: csrfToken})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				body := decodeBody(t, rec)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, msgCSRFRejected, body["message"])
			}
		})
	}
}

func TestCSRFProtection_FormFieldSurvivesForHandler(t *testing.T) {
	var fields map[string]string
	h := CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		fields, err = readFields(w, r)
		require.NoError(t, err)
	}))

	req := httptest.NewRequest(http.MethodPost, "/student/auth/api/login/send-otp",
		strings.NewReader("email=ana%40example.edu&csrf_token="+csrfToken))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: csrfToken})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "ana@example.edu", fields["email"])
}

func TestRouter_RejectsMismatchedCSRFToken(t *testing.T) {
	paths := []string{
		"/student/api/complete-onboarding",
		"/student/logout",
		"/faculty/logout",
		"/student/auth/api/login/verify-otp",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			g := newGateway(t)
			g.seed(g.session(domainauth.RoleStudent))

			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"program_id":3,"section_id":12}`))
			req.Header.Set("Content-Type", "application/json")
			withCookies(req)
			req.Header.Set(DefaultCSRFHeaderName, "forged")
			rec := httptest.NewRecorder()
			g.handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, false, decodeBody(t, rec)["success"])
			// The session survives and no upstream call or audit event happened.
			assert.NotNil(t, g.store.Values(sessionID))
			assert.Empty(t, g.events.Events())
		})
	}
}

func TestPageView_ExposesCSRFToken(t *testing.T) {
	g := newGateway(t)

	body := decodeBody(t, g.do(t, http.MethodGet, "/student/login", ""))

	view := body["view"].(map[string]any)
	assert.Equal(t, csrfToken, view["csrf_token"])
}
