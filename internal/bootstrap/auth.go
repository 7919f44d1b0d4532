package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/adapters/authroles"
	"github.com/versetype/versetype-api/internal/adapters/oidc"
	"github.com/versetype/versetype-api/internal/ports"
)

// AdminAuthConfig contains configuration for operator authentication.
type AdminAuthConfig struct {
	Admin  config.AdminConfig
	Logger *slog.Logger
}

// AdminAuth bundles the bearer-token verifier and role mapper guarding the admin API.
type AdminAuth struct {
	Verifier ports.TokenVerifier
	Roles    ports.RoleMapper
}

// BuildAdminAuth wires OIDC verification for the service-desk routes.
// Returns a zero AdminAuth when admin access is not configured or discovery fails,
// which leaves the admin routes unmounted.
func BuildAdminAuth(ctx context.Context, cfg AdminAuthConfig) AdminAuth {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	adminCfg := cfg.Admin
	adminCfg.Sanitize()
	if !adminCfg.Enabled() {
		logger.Info("admin API disabled: issuer, client id or admin group not configured")
		return AdminAuth{}
	}

	verifier, err := oidc.NewAdminVerifier(ctx, oidc.VerifierConfig{
		IssuerURL:   adminCfg.IssuerURL,
		ClientID:    adminCfg.ClientID,
		GroupsClaim: adminCfg.GroupsClaim,
		HTTPClient:  &http.Client{Timeout: adminCfg.HTTPTimeout},
	})
	if err != nil {
		logger.Warn("failed to create admin token verifier, admin API disabled", "error", err)
		return AdminAuth{}
	}

	logger.Info("admin API enabled", "issuer", adminCfg.IssuerURL, "admin_group", adminCfg.AdminGroup)
	return AdminAuth{
		Verifier: verifier,
		Roles:    authroles.StaticRoleMapper{AdminGroup: adminCfg.AdminGroup},
	}
}
