// Package ratelimit throttles login attempts per client address with a fixed
// window counter. Counters live in Redis when it is configured so every
// instance shares them; otherwise, or while Redis is unreachable, they live
// in process memory.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
)

// Store counts hits of key in the current window.
type Store interface {
	// Allow records a hit and reports whether it is within limit. When it is
	// not, retryAfter is the time left in the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

type Config struct {
	Limit  int
	Window time.Duration
	Prefix string
}

// Limiter applies Config against a Store.
type Limiter struct {
	cfg      Config
	store    Store
	fallback *MemoryStore
	logger   *slog.Logger
}

// New returns a Limiter over store. A nil store uses memory only.
// Limit <= 0 disables limiting.
func New(cfg Config, store Store, logger *slog.Logger) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "watchwonders:login"
	}
	fallback := NewMemoryStore()
	if store == nil {
		store = fallback
	}
	return &Limiter{cfg: cfg, store: store, fallback: fallback, logger: logger}
}

// Allow records an attempt for key.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l == nil || l.cfg.Limit <= 0 {
		return true, 0
	}
	if key == "" {
		key = "unknown"
	}
	full := l.cfg.Prefix + ":" + key

	allowed, retry, err := l.store.Allow(ctx, full, l.cfg.Limit, l.cfg.Window)
	if err != nil {
		l.logger.Warn("rate limit store failed, using memory",
			slog.String("key", full),
			slog.String("error", err.Error()),
		)
		allowed, retry, _ = l.fallback.Allow(ctx, full, l.cfg.Limit, l.cfg.Window)
	}
	return allowed, retry
}

// ErrorWriter renders an error response.
type ErrorWriter func(w http.ResponseWriter, err error)

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. It keys on the remote address, which chi's RealIP middleware has
// already rewritten when the server sits behind a proxy.
func (l *Limiter) Middleware(writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retry := l.Allow(r.Context(), clientIP(r))
			if !allowed {
				if retry > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				}
				writeErr(w, apperror.RateLimited("Too many login attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// =========================================================================
// REDIS
// =========================================================================

// RedisStore keeps counters in Redis: INCR the key, set its expiry on the
// first hit, read the TTL once the limit is passed.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: incr %s: %w", key, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, fmt.Errorf("ratelimit: expire %s: %w", key, err)
		}
	}
	if count <= int64(limit) {
		return true, 0, nil
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: ttl %s: %w", key, err)
	}
	if ttl < 0 {
		// The expiry was lost (e.g. a crash between INCR and EXPIRE).
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, fmt.Errorf("ratelimit: expire %s: %w", key, err)
		}
		ttl = window
	}
	return false, ttl, nil
}

// =========================================================================
// MEMORY
// =========================================================================

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a per-process fixed window counter.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window), now: time.Now}
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit int, d time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.cleanupLocked(now)

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	if w.count <= limit {
		return true, 0, nil
	}
	return false, w.resetAt.Sub(now), nil
}

func (s *MemoryStore) cleanupLocked(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}
