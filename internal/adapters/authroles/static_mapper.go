// Package authroles maps identity-provider groups to operator roles.
package authroles

import (
	"slices"

	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/ports"
)

var _ ports.RoleMapper = StaticRoleMapper{}

// StaticRoleMapper grants the admin role to members of AdminGroup.
// Everyone else is a guest and cannot reach the service-desk API.
type StaticRoleMapper struct {
	AdminGroup string
}

// Map implements ports.RoleMapper.
func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if m.AdminGroup != "" && slices.Contains(groups, m.AdminGroup) {
		return domainauth.RoleAdmin
	}
	return domainauth.RoleGuest
}
