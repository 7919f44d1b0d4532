// Package fanout distributes presentation updates to subscribers within one process.
package fanout

import (
	"context"
	"errors"
	"sync"

	"github.com/versetype/versetype-api/internal/domain/model"
	"github.com/versetype/versetype-api/internal/ports"
)

var _ ports.PresentationFanout = (*Hub)(nil)

const subscriberBuffer = 4

type subscriber struct {
	ch chan model.PresentationState
}

// Hub is an in-memory PresentationFanout for single-instance deployments.
// Slow subscribers lose intermediate states, never the most recent one.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) Publish(_ context.Context, state model.PresentationState) error {
	if state.Key == "" {
		return errors.New("presentation key cannot be empty")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[state.Key] {
		deliverLatest(s.ch, state)
	}
	return nil
}

// deliverLatest sends without blocking, evicting the oldest queued state when full.
// Callers hold h.mu, so there is a single sender per channel.
func deliverLatest(ch chan model.PresentationState, st model.PresentationState) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context, key string) (<-chan model.PresentationState, func(), error) {
	if key == "" {
		return nil, nil, errors.New("presentation key cannot be empty")
	}
	s := &subscriber{ch: make(chan model.PresentationState, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[*subscriber]struct{})
	}
	h.subs[key][s] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			h.mu.Lock()
			delete(h.subs[key], s)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
			close(s.ch)
			h.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return s.ch, cancel, nil
}

func (h *Hub) subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key])
}
