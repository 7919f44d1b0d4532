package ports

// Package ports defines interfaces (hexagonal ports) for identity-provider and fan-out behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/domain/model"
)

// OperatorClaims is what an identity provider asserts about an operator.
type OperatorClaims struct {
	Subject string
	Email   string
	Groups  []string
}

// TokenVerifier validates an operator bearer token against an identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (OperatorClaims, error)
}

// RoleMapper maps provider groups to operator roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// PresentationFanout distributes applied presentation changes to every subscriber,
// possibly across service instances.
type PresentationFanout interface {
	Publish(ctx context.Context, state model.PresentationState) error
	// Subscribe delivers states for key until ctx is done or the returned cancel func is called.
	Subscribe(ctx context.Context, key string) (<-chan model.PresentationState, func(), error)
}
