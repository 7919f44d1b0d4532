package config

import (
	"fmt"
	"strings"
	"time"
)

// ReloginPolicy controls what anonymous login does for a session that is already linked to a user.
type ReloginPolicy string

const (
	// ReloginMint always creates a fresh anonymous identity and relinks the session to it.
	ReloginMint ReloginPolicy = "mint"
	// ReloginReuse keeps the linked user and returns it unchanged.
	ReloginReuse ReloginPolicy = "reuse"
)

// UnmarshalText implements encoding.TextUnmarshaler for ReloginPolicy.
func (p *ReloginPolicy) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "mint", "reuse":
		*p = ReloginPolicy(v)
		return nil
	default:
		return fmt.Errorf("invalid ReloginPolicy: %q (valid options: mint, reuse)", v)
	}
}

// AuthConfig groups session and code-exchange configuration.
type AuthConfig struct {
	// LoginCodeTTL is how long a user-issued cross-device login code stays valid.
	LoginCodeTTL time.Duration `env:"AUTH_LOGIN_CODE_TTL" envDefault:"60s"`

	// TempLoginCodeTTL is the lifetime of service-desk issued login codes.
	TempLoginCodeTTL time.Duration `env:"AUTH_TEMP_LOGIN_CODE_TTL" envDefault:"10m"`

	// AnonymousRelogin decides whether anonymous login on a linked session mints a new user.
	AnonymousRelogin ReloginPolicy `env:"AUTH_ANONYMOUS_RELOGIN" envDefault:"mint"`

	// SessionCookieName is the cookie consulted when the X-Session-Token header is absent.
	SessionCookieName string `env:"AUTH_SESSION_COOKIE_NAME" envDefault:"session_token"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.LoginCodeTTL <= 0 {
		a.LoginCodeTTL = time.Minute
	}
	if a.TempLoginCodeTTL <= 0 {
		a.TempLoginCodeTTL = 10 * time.Minute
	}
	if a.AnonymousRelogin == "" {
		a.AnonymousRelogin = ReloginMint
	}
	a.SessionCookieName = strings.TrimSpace(a.SessionCookieName)
	if a.SessionCookieName == "" {
		a.SessionCookieName = "session_token"
	}
}

// AdminConfig configures bearer-token verification for the service-desk admin API.
// The admin routes are only mounted when IssuerURL is set.
type AdminConfig struct {
	IssuerURL string `env:"ISSUER_URL"`
	ClientID  string `env:"CLIENT_ID"`

	// GroupsClaim is a JMESPath expression evaluated against the ID token claims,
	// e.g. "groups" or "realm_access.roles".
	GroupsClaim string `env:"GROUPS_CLAIM" envDefault:"groups"`

	// AdminGroup is the group value that grants admin access.
	AdminGroup string `env:"ADMIN_GROUP"`

	// HTTPTimeout bounds discovery and JWKS fetches.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
}

// Sanitize trims values and applies defaults.
func (a *AdminConfig) Sanitize() {
	a.IssuerURL = strings.TrimSuffix(strings.TrimSpace(a.IssuerURL), "/")
	a.ClientID = strings.TrimSpace(a.ClientID)
	a.AdminGroup = strings.TrimSpace(a.AdminGroup)
	if strings.TrimSpace(a.GroupsClaim) == "" {
		a.GroupsClaim = "groups"
	}
	if a.HTTPTimeout <= 0 {
		a.HTTPTimeout = 10 * time.Second
	}
}

// Enabled reports whether the admin API can be served.
func (a *AdminConfig) Enabled() bool {
	return a.IssuerURL != "" && a.ClientID != "" && a.AdminGroup != ""
}
