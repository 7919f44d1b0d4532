package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/versetype/versetype-api/internal/domain/model"
	"github.com/versetype/versetype-api/internal/ports"
)

var _ ports.PresentationFanout = (*Fanout)(nil)

// Fanout relays presentation states between service instances over Redis pub/sub.
type Fanout struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewFanout creates a pub/sub fanout whose channels start with prefix.
func NewFanout(client redis.UniversalClient, prefix string, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{
		client: client,
		prefix: prefix + "presentation:updates:",
		logger: logger.With("component", "redis_fanout"),
	}
}

func (f *Fanout) channel(key string) string { return f.prefix + key }

func (f *Fanout) Publish(ctx context.Context, state model.PresentationState) error {
	if state.Key == "" {
		return errors.New("presentation key cannot be empty")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal presentation state: %w", err)
	}
	return f.client.Publish(ctx, f.channel(state.Key), data).Err()
}

func (f *Fanout) Subscribe(ctx context.Context, key string) (<-chan model.PresentationState, func(), error) {
	ps := f.client.Subscribe(ctx, f.channel(key))
	// Wait for the subscription confirmation so no publish after return is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan model.PresentationState, 8)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			if err := ps.Close(); err != nil {
				f.logger.Debug("close pubsub", "key", key, "error", err)
			}
		})
	}

	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer stop()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var st model.PresentationState
				if err := json.Unmarshal([]byte(msg.Payload), &st); err != nil {
					f.logger.Warn("dropping malformed presentation message", "key", key, "error", err)
					continue
				}
				select {
				case out <- st:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()
	return out, stop, nil
}
