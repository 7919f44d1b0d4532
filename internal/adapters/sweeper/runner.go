// Package sweeper provides adapters for running the expired login-code sweeper.
package sweeper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/data"
	"github.com/versetype/versetype-api/internal/observability/statsd"
	"github.com/versetype/versetype-api/internal/service"
)

// Runner wires the sweeper service to Postgres and runs it.
type Runner struct {
	sweeper *service.SweeperService
	logger  *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB     *sql.DB
	Config config.SweeperConfig
	Logger *slog.Logger

	// Optional dependency injection for testing/decoupling
	Repo    core.SweeperRepository
	Metrics statsd.Sink
}

// NewRunner creates a new sweeper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	repo := opts.Repo
	if repo == nil {
		repo = data.NewLoginCodeRepo(opts.DB)
	}

	svc, err := service.NewSweeperService(service.SweeperServiceOptions{
		Repo:    repo,
		Config:  opts.Config,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire sweeper service: %w", err)
	}

	return &Runner{sweeper: svc, logger: opts.Logger}, nil
}

func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.DB == nil && opts.Repo == nil {
		return errors.New("database connection is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// Run starts the sweeper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting sweeper runner")
	return r.sweeper.Run(ctx)
}

// SweepOnce performs a single sweep and returns how many codes were deleted.
func (r *Runner) SweepOnce(ctx context.Context) (int64, error) {
	return r.sweeper.Sweep(ctx)
}
