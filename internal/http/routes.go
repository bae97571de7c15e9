package httpx

import (
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/attendance-gateway/internal/domain/auth"
	"github.com/target/attendance-gateway/internal/observability/audit"
	"github.com/target/attendance-gateway/internal/observability/statsd"
	"github.com/target/attendance-gateway/internal/ports"
	"github.com/target/attendance-gateway/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	OTP        *service.OTPService
	Validation *service.ValidationService
	Sessions   *service.SessionService
	Store      ports.SessionStore
	Cookies    CookieConfig

	// Events receives security events. Nil disables them.
	Events audit.Sink
	// EventLog backs the admin dashboard. Optional.
	EventLog EventLister

	// OTP issuance throttling per client IP; a non-positive limit disables it.
	OTPRateLimit  int
	OTPRateWindow time.Duration

	// Readiness checks served on /readyz.
	Readiness map[string]HealthCheck

	Metrics statsd.Sink
	Logger  *slog.Logger
}

// router bundles the handlers shared by the area route groups.
type router struct {
	mux   *http.ServeMux
	guard *Guard
	auth  *AuthHandlers
	area  *AreaHandlers
	// sendLimit throttles every OTP send route with one shared counter per IP.
	sendLimit func(http.Handler) http.Handler
}

// NewRouter creates the gateway router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := &router{
		mux: http.NewServeMux(),
		guard: &Guard{
			Sessions: services.Sessions,
			Events:   services.Events,
			Logger:   logger,
			Metrics:  services.Metrics,
		},
		auth: &AuthHandlers{
			OTP:        services.OTP,
			Validation: services.Validation,
			Sessions:   services.Sessions,
			Events:     services.Events,
			Cookies:    services.Cookies,
			Logger:     logger,
		},
		area: &AreaHandlers{
			Sessions: services.Sessions,
			Events:   services.EventLog,
			Logger:   logger,
		},
		sendLimit: RateLimit(services.OTPRateLimit, services.OTPRateWindow),
	}

	rt.registerStudentRoutes()
	rt.registerFacultyRoutes()
	rt.registerAdminRoutes()

	// Health checks bypass the session middleware so they never mint cookies.
	root := http.NewServeMux()
	root.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	root.Handle("GET /readyz", readinessHandler(services.Readiness, logger))
	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.Cookies.Domain, Logger: logger})
	root.Handle("/", Sessions(services.Store, services.Cookies)(csrf(rt.mux)))

	var h http.Handler = root
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	return h
}

func (rt *router) handle(pattern string, p Policy, a Action, h http.Handler) {
	rt.mux.Handle(pattern, rt.guard.Protect(p, a)(h))
}

func (rt *router) registerStudentRoutes() {
	p := StudentPolicy()

	rt.handle("GET /student/login", p, Auth("login"), rt.area.AuthPage("login"))
	rt.handle("GET /student/register", p, Auth("register"), rt.area.AuthPage("register"))

	rt.handle("POST /student/auth/api/register/validate", p, Auth("register_validate"),
		http.HandlerFunc(rt.auth.RegisterValidate))
	rt.handle("POST /student/auth/api/register/validate-face", p, Auth("register_validate_face"),
		http.HandlerFunc(rt.auth.RegisterValidateFace))
	rt.handle("POST /student/auth/api/register/send-otp", p, Auth("register_send_otp"),
		rt.sendLimit(http.HandlerFunc(rt.auth.RegisterSendOTP)))
	rt.handle("POST /student/auth/api/register/resend-otp", p, Auth("register_resend_otp"),
		rt.sendLimit(http.HandlerFunc(rt.auth.RegisterResendOTP)))
	rt.handle("POST /student/auth/api/register/verify-otp", p, Auth("register_verify_otp"),
		http.HandlerFunc(rt.auth.RegisterVerifyOTP))

	rt.registerCredentialRoutes(p)

	rt.handle("GET /student/dashboard", p, Page(DashboardAction), rt.area.Page("dashboard"))
	rt.handle("GET /student/attendance", p, Page("attendance"), rt.area.Page("attendance"))
	rt.handle("GET /student/profile", p, Page("profile"), rt.area.Page("profile"))

	rt.handle("GET /student/api/session-status", p, API("session_status"), http.HandlerFunc(rt.area.SessionStatus))
	rt.handle("GET /student/api/programs", p, API("programs"), rt.area.Lookup(ports.LookupPrograms))
	rt.handle("GET /student/api/sections", p, API("sections"), rt.area.Lookup(ports.LookupSections))
	rt.handle("GET /student/api/courses", p, API("courses"), rt.area.Lookup(ports.LookupCourses))
	rt.handle("POST /student/api/complete-onboarding", p, API("complete_onboarding"),
		http.HandlerFunc(rt.area.CompleteOnboarding))

	rt.mux.Handle("POST /student/logout", SecurityHeaders()(rt.auth.Logout(domainauth.AreaStudent)))
}

func (rt *router) registerFacultyRoutes() {
	p := FacultyPolicy()

	rt.handle("GET /faculty/auth/login", p, Auth("login"), rt.area.AuthPage("login"))
	rt.registerCredentialRoutes(p)

	rt.handle("GET /faculty/dashboard", p, Page(DashboardAction), rt.area.Page("dashboard"))
	rt.handle("GET /faculty/classes", p, Page("classes"), rt.area.Page("classes"))
	rt.handle("GET /faculty/attendance", p, Page("attendance"), rt.area.Page("attendance"))
	rt.handle("GET /faculty/api/session-status", p, API("session_status"), http.HandlerFunc(rt.area.SessionStatus))

	rt.mux.Handle("POST /faculty/logout", SecurityHeaders()(rt.auth.Logout(domainauth.AreaFaculty)))
}

func (rt *router) registerAdminRoutes() {
	p := AdminPolicy()

	rt.handle("GET /admin/login", p, Auth("login"), rt.area.AuthPage("login"))
	rt.handle("GET /admin/dashboard", p, Page(DashboardAction), http.HandlerFunc(rt.area.AdminDashboard))

	rt.mux.Handle("POST /admin/logout", SecurityHeaders()(rt.auth.Logout(domainauth.AreaAdmin)))
}

// registerCredentialRoutes adds the login and password reset endpoints of an area.
func (rt *router) registerCredentialRoutes(p Policy) {
	base := "POST " + p.Area.Prefix() + "auth/api/"
	login := LoginHandlers{AuthHandlers: rt.auth, Area: p.Area}
	password := PasswordHandlers{AuthHandlers: rt.auth, Area: p.Area}

	rt.handle(base+"login/validate", p, Auth("login_validate"), http.HandlerFunc(login.Validate))
	rt.handle(base+"login/send-otp", p, Auth("login_send_otp"), rt.sendLimit(http.HandlerFunc(login.SendOTP)))
	rt.handle(base+"login/verify-otp", p, Auth("login_verify_otp"), http.HandlerFunc(login.VerifyOTP))

	rt.handle(base+"password/validate-email", p, Auth("password_validate_email"), http.HandlerFunc(password.ValidateEmail))
	rt.handle(base+"password/send-otp", p, Auth("password_send_otp"), rt.sendLimit(http.HandlerFunc(password.SendOTP)))
	rt.handle(base+"password/verify-otp", p, Auth("password_verify_otp"), http.HandlerFunc(password.VerifyOTP))
	rt.handle(base+"password/reset", p, Auth("password_reset"), http.HandlerFunc(password.Reset))
}
