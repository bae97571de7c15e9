package httpx

import (
	"log/slog"
	"net/http"
	"net/url"

	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/observability/audit"
	"github.com/target/attendance-gateway/internal/observability/statsd"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/service"
)

// ActionKind classifies a guarded route.
type ActionKind int

const (
	// KindPage is a main application route: onboarding is enforced and the
	// session expiry slides forward.
	KindPage ActionKind = iota
	// KindAPI is an allow-listed API action that skips onboarding checks.
	KindAPI
	// KindAuth is an authentication page or endpoint. Anonymous callers pass;
	// authenticated callers are sent to their dashboard.
	KindAuth
)

// Action names the route being guarded.
type Action struct {
	Name string
	Kind ActionKind
}

// Page, API and Auth build actions of each kind.
func Page(name string) Action { return Action{Name: name, Kind: KindPage} }
func API(name string) Action  { return Action{Name: name, Kind: KindAPI} }
func Auth(name string) Action { return Action{Name: name, Kind: KindAuth} }

// DashboardAction is the one main route a not-onboarded student may reach.
const DashboardAction = "dashboard"

// OnboardingRequiredPath is where students who have not finished onboarding land.
const OnboardingRequiredPath = "/student/dashboard?onboarding=required"

// ViewContext is the presentation data a guard hands to page handlers.
type ViewContext struct {
	Area             domainauth.Area `json:"area"`
	Authenticated    bool            `json:"authenticated"`
	Role             string          `json:"role,omitempty"`
	UserID           string          `json:"user_id,omitempty"`
	Email            string          `json:"email,omitempty"`
	Name             string          `json:"name,omitempty"`
	StudentNumber    string          `json:"student_number,omitempty"`
	EmployeeNumber   string          `json:"employee_number,omitempty"`
	Department       string          `json:"department,omitempty"`
	Verified         bool            `json:"verified"`
	Onboarded        *bool           `json:"is_onboarded,omitempty"`
	HasSection       *bool           `json:"has_section,omitempty"`
	OnboardingPrompt bool            `json:"onboarding_prompt,omitempty"`
	SessionExpiresAt string          `json:"session_expires_at,omitempty"`
	Banners          []string        `json:"banners,omitempty"`
	CSRFToken        string          `json:"csrf_token,omitempty"`
}

// verdict is the outcome of a guard step.
type verdict int

const (
	proceed verdict = iota // run the next step
	allow                  // skip remaining steps and run the handler
	halt                   // a response was written
)

// gateRequest is the state threaded through the steps of one request.
type gateRequest struct {
	w          http.ResponseWriter
	r          *http.Request
	area       domainauth.Area
	action     Action
	handle     ports.SessionHandle
	sess       domainauth.Session
	banners    []string
	onboarding *service.OnboardingState
}

// Step is one ordered gate of a policy.
type Step func(g *Guard, req *gateRequest) verdict

// Policy is the ordered list of steps guarding an area.
type Policy struct {
	Area  domainauth.Area
	Steps []Step
}

// StudentPolicy guards /student/.
func StudentPolicy() Policy {
	return Policy{Area: domainauth.AreaStudent, Steps: []Step{
		requireAuthenticated,
		requireAreaRole,
		requireFreshSession,
		checkOnboarding,
		enforceOnboarding,
		bounceAuthenticatedFromAuth,
		bannerUnverified,
		slideExpiry,
	}}
}

// FacultyPolicy guards /faculty/. There is no onboarding gate.
func FacultyPolicy() Policy {
	return Policy{Area: domainauth.AreaFaculty, Steps: []Step{
		requireAuthenticated,
		requireAreaRole,
		requireFreshSession,
		bounceAuthenticatedFromAuth,
		bannerUnverified,
		slideExpiry,
	}}
}

// AdminPolicy guards /admin/.
func AdminPolicy() Policy {
	return Policy{Area: domainauth.AreaAdmin, Steps: []Step{
		requireAuthenticated,
		requireAreaRole,
		requireFreshSession,
		bounceAuthenticatedFromAuth,
		slideExpiry,
	}}
}

// Guard runs access policies in front of handlers.
type Guard struct {
	Sessions *service.SessionService
	Events   audit.Sink
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

func (g *Guard) logger() *slog.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Guard) count(area domainauth.Area, outcome string) {
	if g.Metrics == nil {
		return
	}
	g.Metrics.Count("guard.decision", 1, map[string]string{"area": string(area), "outcome": outcome})
}

// Protect returns a middleware that enforces p for action.
func (g *Guard) Protect(p Policy, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setSecurityHeaders(w.Header())

			h, ok := HandleFromContext(r.Context())
			if !ok {
				g.logger().Error("guard without session middleware", "path", r.URL.Path)
				WriteFailure(w, http.StatusInternalServerError, service.MsgServiceUnavailable)
				return
			}
			sess, err := g.Sessions.Load(r.Context(), h)
			if err != nil {
				g.logger().Error("load session failed", "error", err)
				WriteFailure(w, http.StatusServiceUnavailable, service.MsgServiceUnavailable)
				return
			}

			req := &gateRequest{w: w, r: r, area: p.Area, action: action, handle: h, sess: sess}
			for _, step := range p.Steps {
				switch step(g, req) {
				case halt:
					return
				case allow:
					g.serve(next, req)
					return
				}
			}
			g.serve(next, req)
		})
	}
}

func (g *Guard) serve(next http.Handler, req *gateRequest) {
	g.count(req.area, "allow")
	ctx := SetSessionInContext(req.r.Context(), &req.sess)
	ctx = SetViewInContext(ctx, req.view())
	next.ServeHTTP(req.w, req.r.WithContext(ctx))
}

func (req *gateRequest) view() *ViewContext {
	s := req.sess
	v := &ViewContext{
		Area:          req.area,
		Authenticated: s.IsAuthenticated(),
		Banners:       req.banners,
		CSRFToken:     CSRFTokenFromContext(req.r.Context()),
	}
	if !v.Authenticated {
		return v
	}
	v.Role = string(s.Role)
	v.UserID = s.UserID
	v.Email = s.Email
	v.Name = s.DisplayName()
	v.StudentNumber = s.StudentNumber
	v.EmployeeNumber = s.EmployeeNumber
	v.Department = s.Department
	v.Verified = s.Verified
	v.SessionExpiresAt = domainauth.FormatTime(s.Expiry)
	if s.Role.IsStudent() {
		onboarded, hasSection := s.Onboarded, s.HasSection
		v.Onboarded, v.HasSection = &onboarded, &hasSection
		v.OnboardingPrompt = !onboarded && req.r.URL.Query().Get("onboarding") == "required"
	}
	return v
}

func (g *Guard) emit(req *gateRequest, t audit.EventType, meta map[string]string) {
	emitFor(g.Events, req.r, t, req.sess, meta)
}

// deny answers a blocked request: a 303 redirect for browsers or an envelope
// carrying the redirect target for API callers.
func (g *Guard) deny(req *gateRequest, status int, message, target, outcome string) verdict {
	g.count(req.area, outcome)
	if wantsJSON(req.r) {
		WriteJSON(req.w, status, Result(false, message).With("redirect", target))
		return halt
	}
	http.Redirect(req.w, req.r, target, http.StatusSeeOther)
	return halt
}

// loginURL returns the area login page carrying the original path.
func loginURL(area domainauth.Area, original string) string {
	if original == "" {
		return area.LoginPath()
	}
	return area.LoginPath() + "?redirect_uri=" + url.QueryEscape(original)
}

// Step 1: anonymous callers are sent to login with their path remembered.
// Authentication actions are public.
func requireAuthenticated(g *Guard, req *gateRequest) verdict {
	if req.sess.IsAuthenticated() {
		return proceed
	}
	if req.action.Kind == KindAuth {
		return allow
	}
	original := safeRedirectPath(req.r.URL.RequestURI())
	if req.action.Kind == KindPage && original != "" {
		g.Sessions.RememberRedirect(req.r.Context(), req.handle, original)
	}
	g.emit(req, audit.EventUnauthenticatedAccess, nil)
	return g.deny(req, http.StatusUnauthorized, "Please log in to continue.", loginURL(req.area, original), "unauthenticated")
}

// Step 2: callers of another role go to their own dashboard. A session whose
// role is unrecognized has no dashboard to go to, so it is destroyed and the
// caller continues anonymously on authentication actions or lands on login.
func requireAreaRole(g *Guard, req *gateRequest) verdict {
	role := req.sess.Role
	if req.area.Allows(role) {
		return proceed
	}
	g.emit(req, audit.EventRoleViolation, map[string]string{"required_area": string(req.area)})
	if role.Known() {
		return g.deny(req, http.StatusForbidden, "You do not have access to this page.",
			domainauth.DestinationFor(role).Path(), "role_violation")
	}
	g.Sessions.Destroy(req.r.Context(), req.handle)
	if req.action.Kind == KindAuth {
		req.sess = domainauth.Session{}
		return allow
	}
	return g.deny(req, http.StatusForbidden, "You do not have access to this page.", req.area.LoginPath(), "role_violation")
}

// Step 3: a session past its expiry is destroyed. Authentication actions
// continue anonymously.
func requireFreshSession(g *Guard, req *gateRequest) verdict {
	if !req.sess.Expired(g.Sessions.Now()) {
		return proceed
	}
	g.emit(req, audit.EventSessionExpired, map[string]string{"expired_at": domainauth.FormatTime(req.sess.Expiry)})
	g.Sessions.Destroy(req.r.Context(), req.handle)
	if req.action.Kind == KindAuth {
		req.sess = domainauth.Session{}
		return allow
	}
	return g.deny(req, http.StatusUnauthorized, "Your session has expired. Please log in again.", req.area.LoginPath(), "expired")
}

// Step 4: main routes refresh the cached onboarding status. A failed check
// never blocks; it leaves the student not onboarded with a banner.
func checkOnboarding(g *Guard, req *gateRequest) verdict {
	if req.action.Kind != KindPage {
		return proceed
	}
	st := g.Sessions.RefreshOnboarding(req.r.Context(), req.handle, &req.sess)
	req.onboarding = &st
	if st.Unavailable {
		req.banners = append(req.banners, service.BannerOnboardingUnavailable)
	}
	return proceed
}

// Step 5: a student the identity service reports as not onboarded may only
// reach the dashboard.
func enforceOnboarding(g *Guard, req *gateRequest) verdict {
	st := req.onboarding
	if st == nil || st.Unavailable || st.Onboarded || req.action.Name == DashboardAction {
		return proceed
	}
	g.emit(req, audit.EventOnboardingBypassAttempt, map[string]string{"action": req.action.Name})
	return g.deny(req, http.StatusForbidden, "Please complete your enrollment first.", OnboardingRequiredPath, "onboarding_required")
}

// Step 6: authenticated callers have no business on authentication actions.
func bounceAuthenticatedFromAuth(g *Guard, req *gateRequest) verdict {
	if req.action.Kind != KindAuth {
		return proceed
	}
	return g.deny(req, http.StatusConflict, "You are already logged in.", req.area.DashboardPath(), "already_authenticated")
}

// Unverified accounts are let through with a banner.
func bannerUnverified(_ *Guard, req *gateRequest) verdict {
	if !req.sess.Verified {
		req.banners = append(req.banners, service.BannerUnverified)
	}
	return proceed
}

// Step 7: main routes slide the expiry window.
func slideExpiry(g *Guard, req *gateRequest) verdict {
	if req.action.Kind != KindPage {
		return proceed
	}
	if err := g.Sessions.Extend(req.r.Context(), req.handle, &req.sess); err != nil {
		g.logger().Warn("extend session failed", "error", err)
	}
	return proceed
}

// emitFor records a security event for the request.
func emitFor(sink audit.Sink, r *http.Request, t audit.EventType, sess domainauth.Session, meta map[string]string) {
	if sink == nil {
		return
	}
	sink.Emit(r.Context(), audit.Event{
		EventType: t,
		Actor:     sess.Actor(),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Path:      r.URL.Path,
		Role:      string(sess.Role),
		Metadata:  meta,
	})
}
