package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MrSnakeDoc/mcphub/internal/utils"
)

const defaultRateLimitEntries = 4096

// RateLimitConfig configures the submission limiter. Clients are keyed by
// ClientIP; at most MaxEntries buckets are tracked, least recently used
// first out.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int
	TrustProxy        bool
	Now               func() time.Time
}

// tokenBucket refills continuously at rate tokens per second up to burst.
type tokenBucket struct {
	mu      sync.Mutex
	tokens  float64
	updated time.Time
}

func (b *tokenBucket) take(now time.Time, rate, burst float64) (ok bool, remaining int, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dt := now.Sub(b.updated).Seconds(); dt > 0 {
		b.tokens = math.Min(burst, b.tokens+dt*rate)
		b.updated = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	return false, 0, max(1, int(math.Ceil((1-b.tokens)/rate)))
}

type submitLimiter struct {
	cfg     RateLimitConfig
	rate    float64
	burst   float64
	mu      sync.Mutex
	buckets *lru.Cache[string, *tokenBucket]
}

func newSubmitLimiter(cfg RateLimitConfig) *submitLimiter {
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerIPPerMin = max(cfg.RefillPerIPPerMin, 1)
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultRateLimitEntries
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	// lru.New only fails on a non-positive size.
	buckets, _ := lru.New[string, *tokenBucket](cfg.MaxEntries)
	return &submitLimiter{
		cfg:     cfg,
		rate:    float64(cfg.RefillPerIPPerMin) / 60,
		burst:   float64(cfg.Burst),
		buckets: buckets,
	}
}

func (l *submitLimiter) bucket(key string, now time.Time) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets.Get(key)
	if !ok {
		b = &tokenBucket{tokens: l.burst, updated: now}
		l.buckets.Add(key, b)
	}
	return b
}

// RateLimit is a per-client token bucket. Rejections answer 429 with
// Retry-After and a JSON error body.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newSubmitLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := l.cfg.Now()
			ok, remaining, retry := l.bucket(utils.ClientIP(r, l.cfg.TrustProxy), now).take(now, l.rate, l.burst)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			if !ok {
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", strconv.Itoa(retry))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many submissions, please retry later"}` + "\n"))
				return
			}
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			next.ServeHTTP(w, r)
		})
	}
}
