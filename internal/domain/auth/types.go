package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleStudent   Role = "student"
	RoleStaff     Role = "staff"
)

// Valid reports whether the role is one of the four recognized values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleStudent, RoleStaff:
		return true
	default:
		return false
	}
}

// Grants reports whether a principal holding this role satisfies the
// required role. Admin grants every check; all other roles match exactly,
// with no hierarchy between them.
func (r Role) Grants(required Role) bool {
	if !r.Valid() {
		return false
	}
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// PrincipalStatus marks whether a principal may authenticate.
type PrincipalStatus string

const (
	PrincipalActive   PrincipalStatus = "active"
	PrincipalDisabled PrincipalStatus = "disabled"
)

// Principal is the authenticated identity resolved by a credential tier.
// Staff principals (admin/librarian) carry a password hash in the credential
// store; member principals (student/staff) authenticate with their ID number.
type Principal struct {
	ID          string
	Username    string // staff login name, or the member ID number
	DisplayName string
	Role        Role
}

// View projects the fields of a principal that are safe to expose to
// pages and API responses. It never carries secrets or session bookkeeping.
type View struct {
	PrincipalID string `json:"principal_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier supplied to the transport as a cookie.
type Session struct {
	ID               string    `json:"id"`
	PrincipalID      string    `json:"principal_id"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"display_name"`
	Role             Role      `json:"role"`
	CSRFToken        string    `json:"csrf_token"`
	LoginTime        time.Time `json:"login_time"`
	LastActivity     time.Time `json:"last_activity"`
	LastRegeneration time.Time `json:"last_regeneration"`
}

// Authenticated reports whether the session carries a principal.
// Presence of both the principal ID and a role is required; role sanity
// is checked separately so corrupted sessions can be destroyed.
func (s Session) Authenticated() bool {
	return s.PrincipalID != "" && s.Role != ""
}

// View returns the safe projection of the session's principal.
func (s Session) View() View {
	return View{
		PrincipalID: s.PrincipalID,
		Username:    s.Username,
		DisplayName: s.DisplayName,
		Role:        s.Role,
	}
}

// SecurityEvent is an append-only record of an authentication or
// authorization event. PrincipalID is nil for anonymous events such as
// failed login attempts.
type SecurityEvent struct {
	Timestamp   time.Time
	Description string
	PrincipalID *string
	IPAddress   string
}
