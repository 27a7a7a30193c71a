package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/quill/internal/utils"
)

// RateLimitConfig configures the per-IP token bucket.
type RateLimitConfig struct {
	Burst      int           // bucket capacity
	PerMinute  int           // refill rate
	IdleTTL    time.Duration // buckets unused this long are dropped (default 15m)
	TrustProxy bool          // resolve the client IP from proxy headers
	Now        func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

type limiter struct {
	mu        sync.Mutex
	capacity  float64
	rate      float64 // tokens per second
	idleTTL   time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig, now time.Time) *limiter {
	burst := max(cfg.Burst, 1)
	perMin := max(cfg.PerMinute, 1)
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &limiter{
		capacity:  float64(burst),
		rate:      float64(perMin) / 60,
		idleTTL:   ttl,
		buckets:   make(map[string]*bucket),
		lastSweep: now,
	}
}

// take consumes one token for key. When the bucket is empty it returns the
// number of seconds until the next token.
func (l *limiter) take(key string, now time.Time) (ok bool, remaining, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, found := l.buckets[key]
	if !found {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.lastSeen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false, 0, max(int(math.Ceil((1-b.tokens)/l.rate)), 1)
	}
	b.tokens--
	return true, int(b.tokens), 0
}

// RateLimit rejects clients that exceed cfg with 429 and a Retry-After header.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	l := newLimiter(cfg, now())
	limit := strconv.Itoa(int(l.capacity))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retry := l.take(utils.ClientIP(r, cfg.TrustProxy), now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
