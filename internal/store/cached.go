package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zaydhassan/AspireOn/internal/model"
)

const cacheKeyPrefix = "aspireon:insight:"

// CachedStore is a read-through Redis cache in front of an InsightStore.
// Get serves from Redis when possible; Upsert writes through and then
// invalidates the key. Cache failures are logged and never fail a call.
type CachedStore struct {
	inner  model.InsightStore
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps inner with a Redis cache. A zero ttl keeps entries
// until the next Upsert invalidates them.
func NewCachedStore(inner model.InsightStore, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

var _ model.InsightStore = (*CachedStore)(nil)

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return client, nil
}

func cacheKey(industry string) string { return cacheKeyPrefix + industry }

// Upsert writes to the backing store, then drops the cached copy.
func (s *CachedStore) Upsert(ctx context.Context, in model.IndustryInsight) error {
	if err := s.inner.Upsert(ctx, in); err != nil {
		return err
	}
	if err := s.client.Del(ctx, cacheKey(in.Industry)).Err(); err != nil {
		s.logger.Warn("cache invalidate failed", "industry", in.Industry, "error", err)
	}
	return nil
}

// Get returns the cached insight or loads it from the backing store.
func (s *CachedStore) Get(ctx context.Context, industry string) (*model.IndustryInsight, error) {
	raw, err := s.client.Get(ctx, cacheKey(industry)).Bytes()
	switch {
	case err == nil:
		var in model.IndustryInsight
		if jsonErr := json.Unmarshal(raw, &in); jsonErr == nil {
			return &in, nil
		}
		s.logger.Warn("discarding corrupt cache entry", "industry", industry)
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("cache read failed", "industry", industry, "error", err)
	}

	in, err := s.inner.Get(ctx, industry)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(in); err == nil {
		if err := s.client.Set(ctx, cacheKey(industry), data, s.ttl).Err(); err != nil {
			s.logger.Warn("cache fill failed", "industry", industry, "error", err)
		}
	}
	return in, nil
}

// List always reads the backing store.
func (s *CachedStore) List(ctx context.Context) ([]model.IndustryInsight, error) {
	return s.inner.List(ctx)
}
