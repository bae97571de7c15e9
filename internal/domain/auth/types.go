// Package auth contains domain-level types for roles and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"strconv"
	"strings"
	"time"
)

// Session keys as persisted in the session store.
const (
	KeyAuthenticated       = "is_authenticated"
	KeyRole                = "role"
	KeyRoleRaw             = "role_raw"
	KeyUserID              = "user_id"
	KeyEmail               = "email"
	KeyFirstName           = "first_name"
	KeyLastName            = "last_name"
	KeyStudentNumber       = "student_number"
	KeyEmployeeNumber      = "employee_number"
	KeyDepartment          = "department"
	KeyVerified            = "verified"
	KeyStatusID            = "status_id"
	KeyAuthToken           = "auth_token"
	KeyLoginTime           = "login_time"
	KeySessionExpiry       = "session_expiry"
	KeyLastActivity        = "last_activity"
	KeyOnboarded           = "is_onboarded"
	KeyHasSection          = "has_section"
	KeyOnboardingCheckedAt = "onboarding_checked_at"
	KeyRedirectAfterLogin  = "redirect_after_login"
)

// Session is the gateway-owned state of one caller.
// It is stored as a flat string map; see Values and SessionFromValues.
type Session struct {
	Authenticated  bool
	Role           Role
	RawRole        string
	UserID         string
	Email          string
	FirstName      string
	LastName       string
	StudentNumber  string
	EmployeeNumber string
	Department     string
	Verified       bool
	StatusID       string
	AuthToken      string

	LoginTime    time.Time
	Expiry       time.Time
	LastActivity time.Time

	// Students only.
	Onboarded           bool
	HasSection          bool
	OnboardingCheckedAt time.Time

	RedirectAfterLogin string
}

// IsAuthenticated reports whether the session belongs to a logged-in user.
// An authenticated flag without a bearer token is treated as anonymous.
func (s Session) IsAuthenticated() bool {
	return s.Authenticated && s.AuthToken != ""
}

// Expired reports whether the session expiry is set and lies before now.
func (s Session) Expired(now time.Time) bool {
	return !s.Expiry.IsZero() && s.Expiry.Before(now)
}

// Actor returns the identity recorded in security events.
func (s Session) Actor() string {
	if s.Email != "" {
		return s.Email
	}
	return "Anonymous"
}

// DisplayName joins the first and last name.
func (s Session) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Values encodes the session into store fields. Empty optional fields are omitted.
func (s Session) Values() map[string]string {
	v := map[string]string{
		KeyAuthenticated: strconv.FormatBool(s.Authenticated),
		KeyVerified:      strconv.FormatBool(s.Verified),
	}
	if s.Role != "" {
		v[KeyRole] = string(s.Role)
	}
	put := func(key, val string) {
		if val != "" {
			v[key] = val
		}
	}
	put(KeyRoleRaw, s.RawRole)
	put(KeyUserID, s.UserID)
	put(KeyEmail, s.Email)
	put(KeyFirstName, s.FirstName)
	put(KeyLastName, s.LastName)
	put(KeyStudentNumber, s.StudentNumber)
	put(KeyEmployeeNumber, s.EmployeeNumber)
	put(KeyDepartment, s.Department)
	put(KeyStatusID, s.StatusID)
	put(KeyAuthToken, s.AuthToken)
	put(KeyLoginTime, FormatTime(s.LoginTime))
	put(KeySessionExpiry, FormatTime(s.Expiry))
	put(KeyLastActivity, FormatTime(s.LastActivity))
	put(KeyRedirectAfterLogin, s.RedirectAfterLogin)
	if s.Role.IsStudent() {
		v[KeyOnboarded] = strconv.FormatBool(s.Onboarded)
		v[KeyHasSection] = strconv.FormatBool(s.HasSection)
		put(KeyOnboardingCheckedAt, FormatTime(s.OnboardingCheckedAt))
	}
	return v
}

// SessionFromValues decodes store fields. Missing or malformed fields take
// their zero value; the role is always normalized.
func SessionFromValues(v map[string]string) Session {
	return Session{
		Authenticated:       parseBool(v[KeyAuthenticated]),
		Role:                roleFromStore(v[KeyRole]),
		RawRole:             v[KeyRoleRaw],
		UserID:              v[KeyUserID],
		Email:               v[KeyEmail],
		FirstName:           v[KeyFirstName],
		LastName:            v[KeyLastName],
		StudentNumber:       v[KeyStudentNumber],
		EmployeeNumber:      v[KeyEmployeeNumber],
		Department:          v[KeyDepartment],
		Verified:            parseBool(v[KeyVerified]),
		StatusID:            v[KeyStatusID],
		AuthToken:           v[KeyAuthToken],
		LoginTime:           ParseTime(v[KeyLoginTime]),
		Expiry:              ParseTime(v[KeySessionExpiry]),
		LastActivity:        ParseTime(v[KeyLastActivity]),
		Onboarded:           parseBool(v[KeyOnboarded]),
		HasSection:          parseBool(v[KeyHasSection]),
		OnboardingCheckedAt: ParseTime(v[KeyOnboardingCheckedAt]),
		RedirectAfterLogin:  v[KeyRedirectAfterLogin],
	}
}

func roleFromStore(s string) Role {
	if s == "" {
		return ""
	}
	return NormalizeRole(s)
}

// FormatTime renders t for storage. The zero time renders as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseTime accepts RFC3339 or unix seconds. Unparsable input yields the zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
