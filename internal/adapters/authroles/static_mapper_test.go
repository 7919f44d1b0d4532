package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	tests := []struct {
		name   string
		mapper StaticRoleMapper
		groups []string
		want   domainauth.Role
	}{
		{"member", StaticRoleMapper{AdminGroup: "service-desk"}, []string{"staff", "service-desk"}, domainauth.RoleAdmin},
		{"non member", StaticRoleMapper{AdminGroup: "service-desk"}, []string{"staff"}, domainauth.RoleGuest},
		{"no groups", StaticRoleMapper{AdminGroup: "service-desk"}, nil, domainauth.RoleGuest},
		{"unconfigured", StaticRoleMapper{}, []string{""}, domainauth.RoleGuest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mapper.Map(tt.groups))
		})
	}
}
