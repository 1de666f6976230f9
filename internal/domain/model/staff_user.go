package model

import (
	"errors"
	"strings"
	"time"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
)

// StaffUser is an admin or librarian account with a hashed password.
// The hash never leaves the data layer except for verification inside the
// staff credential tier.
type StaffUser struct {
	ID           string                     `json:"id"                   db:"id"`
	Username     string                     `json:"username"             db:"username"`
	PasswordHash string                     `json:"-"                    db:"password_hash"`
	DisplayName  string                     `json:"display_name"         db:"display_name"`
	Role         domainauth.Role            `json:"role"                 db:"role"`
	Status       domainauth.PrincipalStatus `json:"status"               db:"status"`
	LastLogin    *time.Time                 `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time                  `json:"created_at"           db:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"           db:"updated_at"`
}

// Principal projects the staff user into the auth domain.
func (u StaffUser) Principal() domainauth.Principal {
	return domainauth.Principal{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// CreateStaffUserRequest represents parameters to create a staff account.
// PasswordHash must already be hashed by the caller; the data layer never
// sees plaintext passwords.
type CreateStaffUserRequest struct {
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	DisplayName  string          `json:"display_name"`
	Role         domainauth.Role `json:"role"`
}

// Validate checks the create request fields. Staff accounts are limited to
// admin and librarian roles.
func (r CreateStaffUserRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if r.PasswordHash == "" {
		return errors.New("password_hash is required")
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return errors.New("display_name is required")
	}
	switch r.Role {
	case domainauth.RoleAdmin, domainauth.RoleLibrarian:
		return nil
	default:
		return errors.New("role must be admin or librarian")
	}
}
