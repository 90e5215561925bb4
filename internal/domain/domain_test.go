package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRoles_ContainsAll(t *testing.T) {
	roles := ValidRoles()
	expected := []string{RoleOwner, RoleTenant}
	assert.ElementsMatch(t, expected, roles)
}

func TestIsValidRole_ValidRoles(t *testing.T) {
	for _, r := range ValidRoles() {
		assert.True(t, IsValidRole(r), "expected %q to be valid", r)
	}
}

func TestIsValidRole_Invalid(t *testing.T) {
	assert.False(t, IsValidRole("unknown"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("OWNER"))
	assert.False(t, IsValidRole("admin"))
}

func TestUser_PasswordHashExcludedFromJSON(t *testing.T) {
	u := User{ID: "user-1", Email: "a@b.co", PasswordHash: "secret"}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestIsValidPropertyType(t *testing.T) {
	for _, pt := range ValidPropertyTypes() {
		assert.True(t, IsValidPropertyType(pt), "expected %q to be valid", pt)
	}
	assert.False(t, IsValidPropertyType("castle"))
	assert.False(t, IsValidPropertyType(""))
}

func TestIsValidDueDate(t *testing.T) {
	assert.True(t, IsValidDueDate(1))
	assert.True(t, IsValidDueDate(15))
	assert.True(t, IsValidDueDate(31))
	assert.False(t, IsValidDueDate(0))
	assert.False(t, IsValidDueDate(32))
	assert.False(t, IsValidDueDate(-5))
}

func TestIsValidPaymentStatus(t *testing.T) {
	for _, s := range ValidPaymentStatuses() {
		assert.True(t, IsValidPaymentStatus(s), "expected %q to be valid", s)
	}
	assert.False(t, IsValidPaymentStatus("failed"))
	assert.False(t, IsValidPaymentStatus(""))
	assert.False(t, IsValidPaymentStatus("PAID"))
}
