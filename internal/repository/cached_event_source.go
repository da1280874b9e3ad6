package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/store"
)

// CacheObserver receives cache hit/miss telemetry. Optional.
type CacheObserver interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

// CachedEventSource caches whole window fetches in Redis in front of any
// event source. Cache trouble never fails a load; it falls through to the
// inner source and logs.
type CachedEventSource struct {
	inner    store.EventSource
	client   *redis.Client
	ttl      time.Duration
	observer CacheObserver
	logger   *zap.Logger
}

// NewCachedEventSource wraps inner with a Redis window cache. observer may
// be nil; a nil client disables caching entirely.
func NewCachedEventSource(inner store.EventSource, client *redis.Client, ttl time.Duration, observer CacheObserver, logger *zap.Logger) *CachedEventSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEventSource{inner: inner, client: client, ttl: ttl, observer: observer, logger: logger}
}

func windowKey(start, end string) string {
	return fmt.Sprintf("grid:window:%s:%s", start, end)
}

// FetchEvents serves the window from Redis when present, otherwise loads
// through the inner source and caches the result.
func (s *CachedEventSource) FetchEvents(ctx context.Context, windowStart, windowEnd string) ([]models.CalendarEvent, error) {
	if s.client == nil {
		return s.inner.FetchEvents(ctx, windowStart, windowEnd)
	}

	key := windowKey(windowStart, windowEnd)
	started := time.Now()
	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var events []models.CalendarEvent
		if jsonErr := json.Unmarshal(raw, &events); jsonErr == nil {
			s.record(true, time.Since(started))
			return events, nil
		}
		// Corrupt entry: drop it and reload.
		s.logger.Warn("discarding unreadable cache entry", zap.String("key", key))
		_ = s.client.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
		// fall through to the inner source
	default:
		s.logger.Warn("cache read failed, falling through", zap.String("key", key), zap.Error(err))
	}
	s.record(false, time.Since(started))

	events, err := s.inner.FetchEvents(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(events)
	if err != nil {
		s.logger.Warn("failed to marshal window for cache", zap.String("key", key), zap.Error(err))
		return events, nil
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return events, nil
}

// Invalidate drops the cached copy of one window, e.g. after a persisted
// relocation.
func (s *CachedEventSource) Invalidate(ctx context.Context, windowStart, windowEnd string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, windowKey(windowStart, windowEnd)).Err(); err != nil {
		return fmt.Errorf("invalidate window cache: %w", err)
	}
	return nil
}

func (s *CachedEventSource) record(hit bool, duration time.Duration) {
	if s.observer != nil {
		s.observer.RecordCacheOperation(hit, duration)
	}
}
