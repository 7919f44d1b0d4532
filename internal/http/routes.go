// Package httpx exposes the service's JSON API, the presentation WebSocket and the admin routes.
package httpx

import (
	"log/slog"
	"net/http"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
// Nil services leave their routes unregistered.
type RouterServices struct {
	Auth          AuthServiceInterface
	Presentations PresentationServiceInterface
	AppInfo       AppInfoServiceInterface
	Typing        TypingServiceInterface
	ServiceDesk   ServiceDeskInterface

	// Admin routes are registered only when both are set.
	Verifier ports.TokenVerifier
	Roles    ports.RoleMapper

	HTTP       config.HTTPConfig
	CookieName string
	Logger     *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpCfg := services.HTTP
	httpCfg.Sanitize()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	session := RequireSessionToken(services.CookieName)
	verifyLimit := RateLimitByIP(httpCfg.VerifyRateLimit, httpCfg.VerifyRateWindow)

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:          services.Auth,
			CookieName:   services.CookieName,
			CookieDomain: httpCfg.CookieDomain,
			Logger:       logger,
		}, session, verifyLimit)
	}
	if services.Presentations != nil {
		h := NewPresentationHandlers(services.Presentations, httpCfg.AllowedOrigins, logger)
		mux.HandleFunc("GET /api/presentations/{key}", h.Get)
		mux.HandleFunc("PUT /api/presentations/{key}", h.Put)
		mux.HandleFunc("GET /api/presentations/{key}/ws", h.Stream)
	}
	if services.Typing != nil {
		h := &TypingHandlers{Svc: services.Typing, Logger: logger}
		mux.Handle("POST /api/typing-results", session(http.HandlerFunc(h.Save)))
		mux.Handle("GET /api/typing-results", session(http.HandlerFunc(h.History)))
	}

	var appInfo *AppInfoHandlers
	if services.AppInfo != nil {
		appInfo = &AppInfoHandlers{Svc: services.AppInfo, Logger: logger}
		mux.HandleFunc("GET /api/app-info", appInfo.Get)
	}

	if services.Verifier != nil && services.Roles != nil {
		admin := RequireAdmin(services.Verifier, services.Roles, logger)
		if services.ServiceDesk != nil {
			h := &AdminHandlers{Svc: services.ServiceDesk, Logger: logger}
			mux.Handle("GET /api/admin/users", admin(http.HandlerFunc(h.FindUsers)))
			mux.Handle("POST /api/admin/users/{id}/login-code", admin(http.HandlerFunc(h.TempLoginCode)))
		}
		if appInfo != nil {
			mux.Handle("PUT /api/admin/app-info", admin(http.HandlerFunc(appInfo.Set)))
		}
	}

	return Chain(mux, Recover(logger), Logging(logger))
}

func registerAuthRoutes(
	mux *http.ServeMux,
	h *AuthHandlers,
	session, verifyLimit func(http.Handler) http.Handler,
) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, session(fn))
	}
	limited := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, Chain(fn, verifyLimit, session))
	}

	handle("GET /api/auth/state", h.State)
	handle("POST /api/auth/anonymous", h.LoginAnonymous)
	handle("POST /api/auth/logout", h.Logout)
	handle("PUT /api/auth/name", h.UpdateName)
	handle("POST /api/auth/login-code", h.CreateLoginCode)
	handle("GET /api/auth/login-code", h.ActiveLoginCode)
	limited("POST /api/auth/login-code/verify", h.VerifyLoginCode)
	handle("POST /api/auth/recovery-code", h.RecoveryCode)
	handle("POST /api/auth/recovery-code/regenerate", h.RegenerateRecoveryCode)
	limited("POST /api/auth/recovery-code/verify", h.VerifyRecoveryCode)
}
