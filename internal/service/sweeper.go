package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/core"
	obserrors "github.com/versetype/versetype-api/internal/observability/errors"
	"github.com/versetype/versetype-api/internal/observability/metrics"
	"github.com/versetype/versetype-api/internal/observability/statsd"
)

// SweeperServiceOptions groups dependencies for SweeperService.
type SweeperServiceOptions struct {
	Repo    core.SweeperRepository // Required: login-code storage
	Config  config.SweeperConfig   // Required: schedule and batch size
	Logger  *slog.Logger           // Optional: structured logger
	Metrics statsd.Sink            // Optional: metrics sink (StatsD-compatible)
	Clock   func() time.Time       // Optional: defaults to time.Now
}

// SweeperService deletes login codes past their expiry on a cron schedule.
// Verification checks expiry inline, so a missed sweep only delays reclaiming storage.
type SweeperService struct {
	repo     core.SweeperRepository
	config   config.SweeperConfig
	schedule cron.Schedule
	logger   *slog.Logger
	metrics  statsd.Sink
	now      func() time.Time
}

// NewSweeperService constructs a new SweeperService.
func NewSweeperService(opts SweeperServiceOptions) (*SweeperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("SweeperRepository is required")
	}

	cfg := opts.Config
	cfg.Sanitize()
	schedule, err := cfg.ParseSchedule()
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "sweeper_service")
		logger.Debug("SweeperService initialized",
			"schedule", cfg.Schedule,
			"batch_size", cfg.BatchSize,
		)
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &SweeperService{
		repo:     opts.Repo,
		config:   cfg,
		schedule: schedule,
		logger:   logger,
		metrics:  opts.Metrics,
		now:      now,
	}, nil
}

// Run sweeps once after a start-up jitter and then on every scheduled activation
// until ctx is cancelled. Sweep failures are logged, never returned.
// Returns nil on graceful shutdown (context.Canceled).
func (s *SweeperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting sweeper service", "schedule", s.config.Schedule)
	}

	// Stagger replicas that boot together.
	s.waitWithJitter(ctx, s.config.FirstInterval(s.now()))

	if _, err := s.Sweep(ctx); err != nil {
		s.logSweepError(err, "initial sweep")
	}

	return s.runLoop(ctx)
}

// waitWithJitter sleeps a random delay up to 10% of interval.
func (s *SweeperService) waitWithJitter(ctx context.Context, interval time.Duration) {
	maxJitter := int64(interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *SweeperService) runLoop(ctx context.Context) error {
	for {
		now := s.now()
		wait := s.schedule.Next(now).Sub(now)
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			if s.logger != nil {
				s.logger.InfoContext(ctx, "sweeper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-timer.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logSweepError(err, "sweep")
			}
		}
	}
}

// Sweep deletes every login code that expired before now, batch by batch,
// until a batch deletes nothing. It returns the number of codes deleted.
func (s *SweeperService) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()
	now := s.now()

	var total int64
	var err error
	for {
		var count int64
		count, err = s.repo.DeleteExpiredLoginCodes(ctx, now, s.config.BatchSize)
		if err != nil {
			break
		}
		total += count
		if count == 0 {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			break
		}
	}

	s.emitSweepMetrics(total, suppressContextCancellation(err), time.Since(start))

	if err != nil {
		return total, fmt.Errorf("delete expired login codes: %w", err)
	}
	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "deleted expired login codes", "count", total)
	}
	return total, nil
}

func (s *SweeperService) emitSweepMetrics(count int64, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	} else if count == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{"result": result}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("sweeper.run", 1, tags)
	if elapsed > 0 {
		s.metrics.Timing("sweeper.run_duration", elapsed, metrics.CloneTags(tags))
	}
	if count > 0 {
		s.metrics.Count("sweeper.codes_deleted", count, nil)
	}
	if err == nil {
		s.metrics.Gauge("sweeper.last_success_epoch", float64(s.now().Unix()), nil)
	}
}

func (s *SweeperService) logSweepError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
