package auth

import "strings"

// Role is the normalized authorization role of a session.
// Raw role strings from the identity service are normalized once per request
// with NormalizeRole and all downstream logic switches on this closed set.
type Role string

const (
	RoleStudent       Role = "student"
	RoleFaculty       Role = "faculty"
	RoleTeacher       Role = "teacher"
	RoleInstructor    Role = "instructor"
	RoleAdmin         Role = "admin"
	RoleAdministrator Role = "administrator"
	RoleUnknown       Role = "unknown"
)

var knownRoles = map[string]Role{
	string(RoleStudent):       RoleStudent,
	string(RoleFaculty):       RoleFaculty,
	string(RoleTeacher):       RoleTeacher,
	string(RoleInstructor):    RoleInstructor,
	string(RoleAdmin):         RoleAdmin,
	string(RoleAdministrator): RoleAdministrator,
}

// NormalizeRole maps a raw role string onto the closed Role set.
// Matching is case-insensitive; empty or unrecognized input yields RoleUnknown.
func NormalizeRole(raw string) Role {
	if r, ok := knownRoles[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return r
	}
	return RoleUnknown
}

// Known reports whether r is one of the recognized roles.
func (r Role) Known() bool {
	_, ok := knownRoles[string(r)]
	return ok
}

// IsStudent reports whether r is the student role.
func (r Role) IsStudent() bool { return r == RoleStudent }

// IsFaculty reports whether r belongs to the faculty family (faculty, teacher, instructor).
func (r Role) IsFaculty() bool {
	return r == RoleFaculty || r == RoleTeacher || r == RoleInstructor
}

// IsAdmin reports whether r belongs to the admin family (admin, administrator).
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleAdministrator }

// Destination identifies where a role lands after authentication.
type Destination string

const (
	DestinationStudentDashboard Destination = "student-dashboard"
	DestinationFacultyDashboard Destination = "faculty-dashboard"
	DestinationAdminDashboard   Destination = "admin-dashboard"
)

// destinations is the single role -> destination table. Roles missing from it
// fall back to the student dashboard, never to a higher-privilege area.
var destinations = map[Role]Destination{
	RoleStudent:       DestinationStudentDashboard,
	RoleFaculty:       DestinationFacultyDashboard,
	RoleTeacher:       DestinationFacultyDashboard,
	RoleInstructor:    DestinationFacultyDashboard,
	RoleAdmin:         DestinationAdminDashboard,
	RoleAdministrator: DestinationAdminDashboard,
}

// DestinationFor returns the dashboard destination for a normalized role.
func DestinationFor(r Role) Destination {
	if d, ok := destinations[r]; ok {
		return d
	}
	return DestinationStudentDashboard
}

// Area returns the route area that owns the destination.
func (d Destination) Area() Area {
	switch d {
	case DestinationFacultyDashboard:
		return AreaFaculty
	case DestinationAdminDashboard:
		return AreaAdmin
	default:
		return AreaStudent
	}
}

// Path returns the route path of the destination.
func (d Destination) Path() string { return d.Area().DashboardPath() }

// Resolution is the outcome of resolving a raw role string.
type Resolution struct {
	Role        Role
	Raw         string
	Destination Destination
}

// Resolve normalizes raw and looks up its destination.
func Resolve(raw string) Resolution {
	role := NormalizeRole(raw)
	return Resolution{Role: role, Raw: raw, Destination: DestinationFor(role)}
}

// Area is a role-scoped group of routes sharing a guard.
type Area string

const (
	AreaStudent Area = "student"
	AreaFaculty Area = "faculty"
	AreaAdmin   Area = "admin"
)

// Prefix is the URL path prefix of the area, including the trailing slash.
func (a Area) Prefix() string { return "/" + string(a) + "/" }

// DashboardPath is the landing route of the area.
func (a Area) DashboardPath() string { return "/" + string(a) + "/dashboard" }

// LoginPath is the area's login page.
func (a Area) LoginPath() string {
	if a == AreaFaculty {
		return "/faculty/auth/login"
	}
	return "/" + string(a) + "/login"
}

// Allows reports whether a role may use the area's routes.
func (a Area) Allows(r Role) bool {
	switch a {
	case AreaStudent:
		return r.IsStudent()
	case AreaFaculty:
		return r.IsFaculty()
	case AreaAdmin:
		return r.IsAdmin()
	default:
		return false
	}
}

// Contains reports whether path lives under the area.
func (a Area) Contains(path string) bool {
	return strings.HasPrefix(path, a.Prefix()) || path == strings.TrimSuffix(a.Prefix(), "/")
}
