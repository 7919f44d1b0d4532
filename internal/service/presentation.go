package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/versetype/versetype-api/config"
	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
	apperrors "github.com/versetype/versetype-api/internal/errors"
	"github.com/versetype/versetype-api/internal/ports"
)

// PresentationServiceOptions groups dependencies for PresentationService.
type PresentationServiceOptions struct {
	Repo   core.PresentationRepository // Required: Postgres or Redis backed
	Fanout ports.PresentationFanout    // Optional: nil disables live updates
	Config config.PresentationConfig
	Logger *slog.Logger
	Clock  func() time.Time
}

// PresentationService keeps one shared slide index per presentation key
// and resolves concurrent writers by last-writer-wins on the write timestamp.
type PresentationService struct {
	repo   core.PresentationRepository
	fanout ports.PresentationFanout
	cfg    config.PresentationConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewPresentationService constructs a new PresentationService.
func NewPresentationService(opts PresentationServiceOptions) (*PresentationService, error) {
	if opts.Repo == nil {
		return nil, errors.New("PresentationRepository is required")
	}
	cfg := opts.Config
	cfg.Sanitize()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &PresentationService{
		repo:   opts.Repo,
		fanout: opts.Fanout,
		cfg:    cfg,
		logger: logger.With("component", "presentation_service"),
		now:    now,
	}, nil
}

// Get returns the state for key, or slide 0 with Exists=false when it was never written.
func (s *PresentationService) Get(ctx context.Context, key string) (model.PresentationState, error) {
	if err := model.ValidatePresentationKey(key, s.cfg.MaxKeyLength); err != nil {
		return model.PresentationState{}, apperrors.ValidationField("key", err.Error())
	}
	st, err := s.repo.Get(ctx, key)
	if errors.Is(err, core.ErrPresentationNotFound) {
		return model.DefaultPresentationState(key), nil
	}
	if err != nil {
		return model.PresentationState{}, fmt.Errorf("get presentation: %w", err)
	}
	return *st, nil
}

// SetCurrentSlide stores the slide unless a newer write already landed.
// Applied writes are published to subscribers of the key.
func (s *PresentationService) SetCurrentSlide(ctx context.Context, req model.SetSlideRequest) (model.SetSlideResult, error) {
	if err := req.Validate(s.cfg.MaxKeyLength); err != nil {
		return model.SetSlideResult{}, apperrors.Validation(err.Error())
	}

	at := s.now()
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	st, applied, err := s.repo.SetIfNewer(ctx, core.SetIfNewerParams{Key: req.Key, Slide: req.Slide, At: at.UTC()})
	if err != nil {
		return model.SetSlideResult{}, fmt.Errorf("set current slide: %w", err)
	}

	if applied && s.fanout != nil {
		if pubErr := s.fanout.Publish(ctx, *st); pubErr != nil {
			s.logger.WarnContext(ctx, "failed to publish presentation state", "key", st.Key, "error", pubErr)
		}
	}
	return model.SetSlideResult{Applied: applied, State: *st}, nil
}

// Subscribe streams applied states for key. The current state is delivered first.
func (s *PresentationService) Subscribe(ctx context.Context, key string) (<-chan model.PresentationState, func(), error) {
	if s.fanout == nil {
		return nil, nil, errors.New("presentation fanout is not configured")
	}
	if err := model.ValidatePresentationKey(key, s.cfg.MaxKeyLength); err != nil {
		return nil, nil, apperrors.ValidationField("key", err.Error())
	}
	// Subscribe before reading so a write landing in between is not lost.
	updates, cancel, err := s.fanout.Subscribe(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe presentation: %w", err)
	}
	initial, err := s.Get(ctx, key)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	out := make(chan model.PresentationState, 1)
	out <- initial
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			cancel()
		})
	}
	go func() {
		defer close(out)
		last := initial.LastUpdated
		for st := range updates {
			// Drop states older than one already delivered.
			if st.LastUpdated.Before(last) {
				continue
			}
			last = st.LastUpdated
			select {
			case out <- st:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, stop, nil
}
