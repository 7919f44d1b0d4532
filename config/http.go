package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain used when the server writes the session cookie.
	// Leave empty to use the request domain.
	CookieDomain string `env:"HTTP_COOKIE_DOMAIN" envDefault:""`

	// AllowedOrigins lists origins allowed to open presentation WebSocket streams.
	// Empty means same-origin only.
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`

	// VerifyRateLimit is the number of code/recovery verification attempts allowed per IP per window.
	VerifyRateLimit int `env:"HTTP_VERIFY_RATE_LIMIT" envDefault:"10"`

	// VerifyRateWindow is the window length for VerifyRateLimit.
	VerifyRateWindow time.Duration `env:"HTTP_VERIFY_RATE_WINDOW" envDefault:"1m"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.VerifyRateLimit < 1 {
		h.VerifyRateLimit = 1
	}
	if h.VerifyRateWindow < time.Second {
		h.VerifyRateWindow = time.Second
	}
	origins := h.AllowedOrigins[:0]
	for _, o := range h.AllowedOrigins {
		if o != "" {
			origins = append(origins, o)
		}
	}
	h.AllowedOrigins = origins
}
