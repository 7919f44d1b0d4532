package oidc

// Package oidc verifies service-desk operator ID tokens against an OpenID Connect issuer.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	"github.com/versetype/versetype-api/internal/ports"
)

var _ ports.TokenVerifier = (*AdminVerifier)(nil)

// VerifierConfig holds configuration for the admin token verifier.
type VerifierConfig struct {
	IssuerURL string
	ClientID  string
	// GroupsClaim is a JMESPath expression selecting group names from the token claims.
	GroupsClaim string
	HTTPClient  *http.Client // Optional, defaults to a client with a 10s timeout
}

// AdminVerifier validates bearer ID tokens and extracts operator claims.
type AdminVerifier struct {
	verifier    *gooidc.IDTokenVerifier
	groupsClaim string
	httpClient  *http.Client
}

// NewAdminVerifier discovers the issuer's keys and returns a verifier for ClientID audiences.
func NewAdminVerifier(ctx context.Context, cfg VerifierConfig) (*AdminVerifier, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if err := validateGroupsClaim(cfg.GroupsClaim); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	discoveryCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(strings.TrimSuffix(cfg.IssuerURL, "/.well-known/openid-configuration"), "/")
	provider, err := gooidc.NewProvider(discoveryCtx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return newAdminVerifier(provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID}), cfg.GroupsClaim, httpClient), nil
}

func newAdminVerifier(v *gooidc.IDTokenVerifier, groupsClaim string, httpClient *http.Client) *AdminVerifier {
	if strings.TrimSpace(groupsClaim) == "" {
		groupsClaim = "groups"
	}
	return &AdminVerifier{verifier: v, groupsClaim: groupsClaim, httpClient: httpClient}
}

// Verify checks the token signature, issuer, audience and expiry.
func (a *AdminVerifier) Verify(ctx context.Context, rawToken string) (ports.OperatorClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ports.OperatorClaims{}, errors.New("bearer token is required")
	}
	if a.httpClient != nil {
		ctx = gooidc.ClientContext(ctx, a.httpClient)
	}

	tok, err := a.verifier.Verify(ctx, rawToken)
	if err != nil {
		return ports.OperatorClaims{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims map[string]any
	if err = tok.Claims(&claims); err != nil {
		return ports.OperatorClaims{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	groups, err := extractGroups(a.groupsClaim, claims)
	if err != nil {
		return ports.OperatorClaims{}, err
	}

	email, _ := claims["email"].(string)
	return ports.OperatorClaims{Subject: tok.Subject, Email: email, Groups: groups}, nil
}

func validateGroupsClaim(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return fmt.Errorf("invalid groups claim expression %q: %w", expr, err)
	}
	return nil
}

// extractGroups evaluates expr against claims. A single string becomes one group;
// non-string list members are ignored.
func extractGroups(expr string, claims map[string]any) ([]string, error) {
	v, err := jmespath.Search(expr, claims)
	if err != nil {
		return nil, fmt.Errorf("evaluate groups claim: %w", err)
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("groups claim resolved to %T, want string or list", v)
	}
}
