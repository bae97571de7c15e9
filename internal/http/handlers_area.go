package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/target/attendance-gateway/internal/data"
	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/observability/audit"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/service"
)

// EventLister reads back recorded security events for the admin dashboard.
type EventLister interface {
	ListRecent(ctx context.Context, opts data.ListOptions) ([]audit.Event, error)
}

const (
	recentEventsLimit = 25
	// BannerEventsUnavailable is shown when the audit trail cannot be read.
	BannerEventsUnavailable = "Recent security events are temporarily unavailable."
)

// AreaHandlers serves the guarded pages and area APIs. Pages answer with the
// view model placed in the context by the guard.
type AreaHandlers struct {
	Sessions *service.SessionService
	// Events is nil when no persistent audit store is configured.
	Events EventLister
	Logger *slog.Logger
}

func (h *AreaHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Page answers a page route with its view model.
func (h *AreaHandlers) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteEnvelope(w, pageEnvelope(name, ViewFromContext(r.Context())))
	}
}

// AuthPage answers a login or registration page. The redirect_uri query is
// echoed back when it is a safe local path.
func (h *AreaHandlers) AuthPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e := pageEnvelope(name, ViewFromContext(r.Context()))
		if target := safeRedirectPath(r.URL.Query().Get("redirect_uri")); target != "" {
			e = e.With("redirect_uri", target)
		}
		WriteEnvelope(w, e)
	}
}

func pageEnvelope(name string, view *ViewContext) Envelope {
	return Result(true, "").With("page", name).With("view", view)
}

// AdminDashboard lists the most recent security events alongside the view.
func (h *AreaHandlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	view := ViewFromContext(r.Context())
	events := []audit.Event{}
	if h.Events != nil {
		list, err := h.Events.ListRecent(r.Context(), data.ListOptions{Limit: recentEventsLimit})
		if err != nil {
			h.logger().WarnContext(r.Context(), "list security events failed", "error", err)
			view.Banners = append(view.Banners, BannerEventsUnavailable)
		} else if list != nil {
			events = list
		}
	}
	WriteEnvelope(w, pageEnvelope("dashboard", view).With("recent_events", events))
}

// SessionStatus reports the caller's session without extending it.
// GET /{area}/api/session-status.
func (h *AreaHandlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteEnvelope(w, Result(true, "").With("session", service.SessionStatus{}))
		return
	}
	WriteEnvelope(w, Result(true, "").With("session", h.Sessions.Status(*sess)))
}

// Lookup proxies a reference-data query for the student.
// GET /student/api/{programs,sections,courses}.
func (h *AreaHandlers) Lookup(kind ports.LookupKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSessionFromContext(r.Context())
		if !ok {
			WriteFailure(w, http.StatusUnauthorized, "Please log in to continue.")
			return
		}
		p, err := h.Sessions.Lookup(r.Context(), *sess, kind, r.URL.Query())
		if err != nil {
			h.logger().WarnContext(r.Context(), "lookup failed", "kind", string(kind), "error", err)
			WriteFailure(w, http.StatusBadGateway, service.MsgServiceUnavailable)
			return
		}
		WriteEnvelope(w, Result(p.Bool("success", true), p.Message("")).With("data", p["data"]))
	}
}

// CompleteOnboarding forwards the onboarding form.
// POST /student/api/complete-onboarding.
func (h *AreaHandlers) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetSessionFromContext(r.Context())
	handle, hok := HandleFromContext(r.Context())
	if !ok || !hok {
		WriteFailure(w, http.StatusUnauthorized, "Please log in to continue.")
		return
	}
	f, err := readFields(w, r)
	if err != nil {
		WriteFailure(w, http.StatusBadRequest, "The request could not be read.")
		return
	}
	for k, v := range f {
		f[k] = strings.TrimSpace(v)
	}
	res := h.Sessions.CompleteOnboarding(r.Context(), handle, sess, f)
	e := actionEnvelope(res)
	if res.Success {
		e = e.With("redirect", domainauth.AreaStudent.DashboardPath())
	}
	WriteEnvelope(w, e)
}
