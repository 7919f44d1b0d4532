package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/adapters/fanout"
	redisadapter "github.com/versetype/versetype-api/internal/adapters/redis"
	"github.com/versetype/versetype-api/internal/adapters/sweeper"
	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/data"
	"github.com/versetype/versetype-api/internal/observability/statsd"
	"github.com/versetype/versetype-api/internal/ports"
	"github.com/versetype/versetype-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Presentations *service.PresentationService
	AppInfo       *service.AppInfoService
	Typing        *service.TypingService
	ServiceDesk   *service.ServiceDeskService
	Sweeper       *sweeper.Runner
	Admin         AdminAuth
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Sink returns the metrics sink, or nil when metrics are disabled.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Required only for the redis presentation backend
	Logger      *slog.Logger

	// AdminAuth overrides OIDC discovery; used by tests.
	AdminAuth *AdminAuth
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users         *data.UserRepo
	Sessions      *data.SessionRepo
	LoginCodes    *data.LoginCodeRepo
	AppInfo       *data.AppInfoRepo
	TypingResults *data.TypingResultRepo
}

// presentationBackend is the store and fan-out pair behind the presentation service.
type presentationBackend struct {
	Repo   core.PresentationRepository
	Fanout ports.PresentationFanout
}

// NeedsRedis reports whether the configuration requires a Redis connection.
func NeedsRedis(cfg *config.AppConfig) bool {
	return cfg != nil && cfg.Presentation.Store == config.PresentationBackendRedis
}

// buildObservability configures the metrics adapter.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obs := ObservabilityContainer{MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return obs
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return obs
	}
	obs.MetricsSink = client
	return obs
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Users:         data.NewUserRepo(db),
		Sessions:      data.NewSessionRepo(db),
		LoginCodes:    data.NewLoginCodeRepo(db),
		AppInfo:       data.NewAppInfoRepo(db),
		TypingResults: data.NewTypingResultRepo(db),
	}
}

func buildPresentationBackend(deps *ServiceDeps) (presentationBackend, error) {
	switch deps.Config.Presentation.Store {
	case config.PresentationBackendRedis:
		if deps.RedisClient == nil {
			return presentationBackend{}, errors.New("redis presentation store requires a redis client")
		}
		prefix := deps.Config.Redis.KeyPrefix
		return presentationBackend{
			Repo:   redisadapter.NewPresentationStore(deps.RedisClient, prefix),
			Fanout: redisadapter.NewFanout(deps.RedisClient, prefix, deps.Logger),
		}, nil
	default:
		return presentationBackend{
			Repo:   data.NewPresentationRepo(deps.DB),
			Fanout: fanout.NewHub(),
		}, nil
	}
}

// NewServices initializes all application services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service config is required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database connection is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	cfg := deps.Config
	logger := deps.Logger

	observability := buildObservability(logger, cfg.Observability)
	repos := buildRepositories(deps.DB)

	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Repos: service.AuthRepos{
			Users:    repos.Users,
			Sessions: repos.Sessions,
			Codes:    repos.LoginCodes,
		},
		Config:  cfg.Auth,
		Logger:  logger,
		Metrics: observability.Sink(),
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create auth service: %w", err)
	}

	backend, err := buildPresentationBackend(deps)
	if err != nil {
		return ServiceContainer{}, err
	}
	presentations, err := service.NewPresentationService(service.PresentationServiceOptions{
		Repo:   backend.Repo,
		Fanout: backend.Fanout,
		Config: cfg.Presentation,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create presentation service: %w", err)
	}

	appInfo, err := service.NewAppInfoService(repos.AppInfo, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create app info service: %w", err)
	}

	typing, err := service.NewTypingService(repos.TypingResults, authSvc)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create typing service: %w", err)
	}

	serviceDesk, err := service.NewServiceDeskService(service.ServiceDeskServiceOptions{
		Users:       repos.Users,
		Sessions:    repos.Sessions,
		Issuer:      authSvc,
		TempCodeTTL: cfg.Auth.TempLoginCodeTTL,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create service desk service: %w", err)
	}

	sweeperRunner, err := sweeper.NewRunner(sweeper.RunnerOptions{
		Config:  cfg.Sweeper,
		Logger:  logger,
		Repo:    repos.LoginCodes,
		Metrics: observability.Sink(),
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create sweeper: %w", err)
	}

	var admin AdminAuth
	if deps.AdminAuth != nil {
		admin = *deps.AdminAuth
	} else {
		admin = BuildAdminAuth(ctx, AdminAuthConfig{Admin: cfg.Admin, Logger: logger})
	}

	return ServiceContainer{
		Auth:          authSvc,
		Presentations: presentations,
		AppInfo:       appInfo,
		Typing:        typing,
		ServiceDesk:   serviceDesk,
		Sweeper:       sweeperRunner,
		Admin:         admin,
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// It blocks until SIGINT/SIGTERM or until a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunServices(ctx, cfg)
}

// RunServices runs the enabled services until ctx is done or one of them fails.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	if enabled[config.ServiceModeSweeper] && cfg.Services.Sweeper == nil {
		return errors.New("sweeper enabled but not configured")
	}

	g, gctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		g.Go(func() error {
			logger.Info("starting HTTP server", "addr", server.Addr)
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return fmt.Errorf("http server failed: %w", serveErr)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return ShutdownHTTPServer(ShutdownConfig{
				Context: context.Background(),
				Server:  server,
				Logger:  logger,
			})
		})
	}

	if enabled[config.ServiceModeSweeper] {
		g.Go(func() error {
			if runErr := cfg.Services.Sweeper.Run(gctx); runErr != nil {
				return fmt.Errorf("sweeper failed: %w", runErr)
			}
			logger.Info("sweeper stopped")
			return nil
		})
	}

	err = g.Wait()
	if cfg.Services.Observability.MetricsSink != nil {
		if closeErr := cfg.Services.Observability.MetricsSink.Close(); closeErr != nil {
			logger.Warn("failed to close statsd client", "error", closeErr)
		}
	}
	if err != nil {
		logger.Error("service error", "error", err)
		return err
	}
	logger.Info("all services stopped")
	return nil
}
