package domain

import "testing"

func TestResolveRole(t *testing.T) {
	tests := []struct {
		role, adminType string
		want            Role
	}{
		{"admin", "", RoleAdmin},
		{"donor", "admin", RoleAdmin},
		{"Admin ", "", RoleAdmin},
		{"recipient", "", RoleRecipient},
		{"hospital", "", RoleRecipient},
		{"donor", "", RoleDonor},
		{"", "", RoleDonor},
		{"something-else", "superuser", RoleDonor},
	}
	for _, tt := range tests {
		if got := ResolveRole(tt.role, tt.adminType); got != tt.want {
			t.Errorf("ResolveRole(%q, %q) = %q, want %q", tt.role, tt.adminType, got, tt.want)
		}
	}
}
