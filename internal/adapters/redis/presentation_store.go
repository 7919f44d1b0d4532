package redis

// Package redis provides Redis-backed presentation state and cross-instance fan-out.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/versetype/versetype-api/internal/core"
	"github.com/versetype/versetype-api/internal/domain/model"
)

var _ core.PresentationRepository = (*PresentationStore)(nil)

// setIfNewerScript stores slide and updated_at unless the stored updated_at is later.
// Returns {applied, slide, updated_at} as they are after the call.
var setIfNewerScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'updated_at')
if cur and tonumber(cur) > tonumber(ARGV[2]) then
  return {0, redis.call('HGET', KEYS[1], 'slide'), cur}
end
redis.call('HSET', KEYS[1], 'slide', ARGV[1], 'updated_at', ARGV[2])
return {1, ARGV[1], ARGV[2]}
`)

// PresentationStore keeps one hash per presentation key.
// Timestamps are stored as Unix microseconds so Lua can compare them exactly.
type PresentationStore struct {
	client redis.UniversalClient
	prefix string
}

// NewPresentationStore creates a store whose keys start with prefix.
func NewPresentationStore(client redis.UniversalClient, prefix string) *PresentationStore {
	return &PresentationStore{client: client, prefix: prefix + "presentation:"}
}

func (s *PresentationStore) key(k string) string { return s.prefix + k }

func (s *PresentationStore) Get(ctx context.Context, key string) (*model.PresentationState, error) {
	vals, err := s.client.HMGet(ctx, s.key(key), "slide", "updated_at").Result()
	if err != nil {
		return nil, fmt.Errorf("redis hmget: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return nil, core.ErrPresentationNotFound
	}
	slide, _ := vals[0].(string)
	updated, _ := vals[1].(string)
	return decodeState(key, slide, updated)
}

func (s *PresentationStore) SetIfNewer(
	ctx context.Context,
	params core.SetIfNewerParams,
) (*model.PresentationState, bool, error) {
	if params.Key == "" {
		return nil, false, errors.New("presentation key cannot be empty")
	}
	res, err := setIfNewerScript.Run(ctx, s.client,
		[]string{s.key(params.Key)},
		params.Slide, params.At.UTC().UnixMicro(),
	).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("redis set if newer: %w", err)
	}
	if len(res) != 3 {
		return nil, false, fmt.Errorf("redis set if newer: unexpected reply %v", res)
	}

	applied, _ := res[0].(int64)
	st, err := decodeState(params.Key, fmt.Sprint(res[1]), fmt.Sprint(res[2]))
	if err != nil {
		return nil, false, err
	}
	return st, applied == 1, nil
}

func decodeState(key, slide, updated string) (*model.PresentationState, error) {
	n, err := strconv.Atoi(slide)
	if err != nil {
		return nil, fmt.Errorf("decode slide for %s: %w", key, err)
	}
	micros, err := strconv.ParseInt(updated, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode updated_at for %s: %w", key, err)
	}
	return &model.PresentationState{
		Key:          key,
		CurrentSlide: n,
		LastUpdated:  time.UnixMicro(micros).UTC(),
		Exists:       true,
	}, nil
}
