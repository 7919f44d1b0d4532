package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/versetype/versetype-api/config"
	httpx "github.com/versetype/versetype-api/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler wires the router to the services in the container.
// Services left nil keep their routes unregistered.
func BuildHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		HTTP:       appCfg.HTTP,
		CookieName: appCfg.Auth.SessionCookieName,
		Logger:     logger,
	}
	// Assign only non-nil pointers so the interface fields stay nil otherwise.
	if s := cfg.Services.Auth; s != nil {
		services.Auth = s
	}
	if s := cfg.Services.Presentations; s != nil {
		services.Presentations = s
	}
	if s := cfg.Services.AppInfo; s != nil {
		services.AppInfo = s
	}
	if s := cfg.Services.Typing; s != nil {
		services.Typing = s
	}
	if s := cfg.Services.ServiceDesk; s != nil {
		services.ServiceDesk = s
	}
	services.Verifier = cfg.Services.Admin.Verifier
	services.Roles = cfg.Services.Admin.Roles

	return httpx.NewRouter(services)
}

// NewHTTPServer creates the HTTP server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	addr := ""
	if cfg.Config != nil {
		addr = cfg.Config.HTTP.Addr
	}
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           BuildHTTPHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// WriteTimeout stays zero: presentation streams are long-lived connections.
		IdleTimeout: 120 * time.Second,
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	parent := cfg.Context
	if parent == nil {
		parent = context.Background()
	}
	shutdownCtx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
