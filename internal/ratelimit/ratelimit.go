// Package ratelimit implements fixed-window request limiting keyed by client.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/rueidis"
)

// Limiter reports whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	count int
	start time.Time
}

// MemoryLimiter keeps per-key counters in process memory.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > m.window {
		m.sweep(now)
	}

	b, ok := m.buckets[key]
	if !ok || now.Sub(b.start) > m.window {
		b = &bucket{start: now}
		m.buckets[key] = b
	}

	if b.count >= m.limit {
		return false, nil
	}

	b.count++
	return true, nil
}

// sweep drops buckets whose window has closed. Caller holds mu.
func (m *MemoryLimiter) sweep(now time.Time) {
	for key, b := range m.buckets {
		if now.Sub(b.start) > m.window {
			delete(m.buckets, key)
		}
	}
	m.lastSweep = now
}

// RedisLimiter shares counters across API instances through Redis.
type RedisLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client rueidis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.prefix + key
	seconds := r.windowSeconds()

	// SET NX opens the window with its TTL in the same round trip as INCR,
	// so a counter never exists without an expiry.
	results := r.client.DoMulti(ctx,
		r.client.B().Set().Key(redisKey).Value("0").Nx().ExSeconds(seconds).Build(),
		r.client.B().Incr().Key(redisKey).Build(),
		r.client.B().Ttl().Key(redisKey).Build(),
	)

	if err := results[0].Error(); err != nil && !rueidis.IsRedisNil(err) {
		return false, fmt.Errorf("failed to open rate window: %w", err)
	}

	count, err := results[1].AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	// -1 means the key has no expiry; repair it so the client is not throttled forever.
	if ttl, err := results[2].AsInt64(); err == nil && ttl == -1 {
		cmd := r.client.B().Expire().Key(redisKey).Seconds(seconds).Build()
		if err := r.client.Do(ctx, cmd).Error(); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}

	return count <= int64(r.limit), nil
}

func (r *RedisLimiter) windowSeconds() int64 {
	seconds := int64(r.window / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

// NewRedisClient connects to the Redis server at addr.
func NewRedisClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(
		rueidis.ClientOption{
			InitAddress: []string{addr},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return client, nil
}
