package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	valid := []Role{RoleAdmin, RoleLibrarian, RoleStudent, RoleStaff}
	for _, r := range valid {
		assert.True(t, r.Valid(), "role %q should be valid", r)
	}

	invalid := []Role{"", "superuser", "Admin", "ADMIN", "guest"}
	for _, r := range invalid {
		assert.False(t, r.Valid(), "role %q should be invalid", r)
	}
}

func TestRoleGrants_AdminIsSuperRole(t *testing.T) {
	for _, required := range []Role{RoleAdmin, RoleLibrarian, RoleStudent, RoleStaff} {
		assert.True(t, RoleAdmin.Grants(required), "admin should grant %q", required)
	}
}

func TestRoleGrants_NonAdminExactMatchOnly(t *testing.T) {
	assert.True(t, RoleLibrarian.Grants(RoleLibrarian))
	assert.False(t, RoleLibrarian.Grants(RoleAdmin))
	assert.False(t, RoleLibrarian.Grants(RoleStudent))

	// Student and staff share a landing area but not authorization.
	assert.True(t, RoleStudent.Grants(RoleStudent))
	assert.False(t, RoleStudent.Grants(RoleStaff))
	assert.False(t, RoleStaff.Grants(RoleStudent))
}

func TestRoleGrants_CorruptRoleGrantsNothing(t *testing.T) {
	assert.False(t, Role("root").Grants(RoleAdmin))
	assert.False(t, Role("root").Grants(RoleStudent))
	assert.False(t, Role("").Grants(""))
}

func TestSessionAuthenticated(t *testing.T) {
	assert.False(t, Session{}.Authenticated())
	assert.False(t, Session{PrincipalID: "p1"}.Authenticated())
	assert.False(t, Session{Role: RoleStudent}.Authenticated())
	assert.True(t, Session{PrincipalID: "p1", Role: RoleStudent}.Authenticated())
}

func TestSessionView(t *testing.T) {
	s := Session{
		ID:          "sess-1",
		PrincipalID: "p1",
		Username:    "jdoe",
		DisplayName: "Jane Doe",
		Role:        RoleLibrarian,
		CSRFToken:   "secret-token",
	}

	v := s.View()
	assert.Equal(t, "p1", v.PrincipalID)
	assert.Equal(t, "jdoe", v.Username)
	assert.Equal(t, "Jane Doe", v.DisplayName)
	assert.Equal(t, RoleLibrarian, v.Role)
}
