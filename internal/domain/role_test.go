package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, role := range ValidRoles {
		parsed, ok := ParseRole(string(role))
		assert.True(t, ok)
		assert.Equal(t, role, parsed)
	}

	_, ok := ParseRole("superadmin")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
	_, ok = ParseRole("Admin")
	assert.False(t, ok, "role matching is case sensitive")
}

func TestRolesHas(t *testing.T) {
	roles := Roles{RoleEngineer, RoleCustomer}

	assert.True(t, roles.Has(RoleEngineer))
	assert.False(t, roles.Has(RoleAdmin))

	var nilRoles Roles
	assert.False(t, nilRoles.Has(RoleUser))
}

func TestRolesHasAny(t *testing.T) {
	roles := Roles{RoleManager}

	assert.True(t, roles.HasAny(RoleAdmin, RoleManager))
	assert.False(t, roles.HasAny(RoleAdmin, RoleDirector))
	assert.False(t, roles.HasAny(), "empty required set never matches")

	var nilRoles Roles
	assert.False(t, nilRoles.HasAny(RoleAdmin, RoleManager))
}

func TestRolesStringsRoundTrip(t *testing.T) {
	roles := Roles{RoleAdmin, RoleEngineer}

	stored := roles.Strings()
	assert.Equal(t, []string{"admin", "engineer"}, stored)
	assert.Equal(t, roles, RolesFromStrings(stored))
}
