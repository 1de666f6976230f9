package model

import (
	"errors"
	"strings"
	"time"

	domainauth "github.com/campuslib/campuslib/internal/domain/auth"
)

// Member is a library patron: a student or a university staff member.
// Members authenticate with their ID number; their initial password is the
// ID number itself and there is no change-password flow.
type Member struct {
	ID          string                     `json:"id"           db:"id"`
	IDNumber    string                     `json:"id_number"    db:"id_number"`
	DisplayName string                     `json:"display_name" db:"display_name"`
	Email       string                     `json:"email"        db:"email"`
	Role        domainauth.Role            `json:"role"         db:"role"`
	Status      domainauth.PrincipalStatus `json:"status"       db:"status"`
	CreatedAt   time.Time                  `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"   db:"updated_at"`
}

// Principal projects the member into the auth domain.
func (m Member) Principal() domainauth.Principal {
	return domainauth.Principal{
		ID:          m.ID,
		Username:    m.IDNumber,
		DisplayName: m.DisplayName,
		Role:        m.Role,
	}
}

// CreateMemberRequest represents parameters to register a Member.
type CreateMemberRequest struct {
	IDNumber    string          `json:"id_number"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email"`
	Role        domainauth.Role `json:"role"`
}

// Validate checks the create request fields. Member roles are limited to
// student and staff; admin and librarian accounts live in the staff table.
func (r CreateMemberRequest) Validate() error {
	if strings.TrimSpace(r.IDNumber) == "" {
		return errors.New("id_number is required")
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return errors.New("display_name is required")
	}
	switch r.Role {
	case domainauth.RoleStudent, domainauth.RoleStaff:
		return nil
	default:
		return errors.New("role must be student or staff")
	}
}

// MembersListOptions controls paging and filtering for member listings.
type MembersListOptions struct {
	Limit  int
	Offset int
	Q      *string // substring match on id_number or display_name (ILIKE)
	Role   *domainauth.Role
}
