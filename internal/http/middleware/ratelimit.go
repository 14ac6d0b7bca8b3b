package middleware

// In-memory token-bucket rate limiting, one bucket per caller. The limiter is
// process-local; a horizontally scaled deployment needs a shared store.

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-qa-backend/internal/apperr"
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByClientIP keys buckets by the caller's address as resolved by Gin
// (honouring trusted proxies). Keys are prefixed with "ip:".
func KeyByClientIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// RateLimitOptions configures NewRateLimiter.
type RateLimitOptions struct {
	RPS   float64 // tokens per second
	Burst int     // bucket size; values <= 0 become 1
	Key   keyFunc // nil keys by client IP
	// IdleTTL is how long an unused bucket is kept. Zero means 10 minutes.
	IdleTTL time.Duration
	// Exempt lists route templates (c.FullPath()) that are never limited.
	Exempt []string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-key token buckets. Idle buckets are swept at
// most once per IdleTTL, during a lookup. Safe for concurrent use.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	key    keyFunc
	ttl    time.Duration
	exempt map[string]struct{}

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter builds a limiter from opts. Install it with Handler.
func NewRateLimiter(opts RateLimitOptions) *RateLimiter {
	rl := &RateLimiter{
		limit:   rate.Limit(opts.RPS),
		burst:   opts.Burst,
		key:     opts.Key,
		ttl:     opts.IdleTTL,
		exempt:  make(map[string]struct{}, len(opts.Exempt)),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	if rl.burst <= 0 {
		rl.burst = 1
	}
	if rl.key == nil {
		rl.key = KeyByClientIP()
	}
	if rl.ttl <= 0 {
		rl.ttl = 10 * time.Minute
	}
	for _, p := range opts.Exempt {
		rl.exempt[p] = struct{}{}
	}
	rl.lastSweep = rl.now()
	return rl
}

// bucketFor returns the limiter for key, creating it if absent. Stale buckets
// are swept before the lookup so an expired bucket is never revived.
func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.ttl {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// size reports the number of live buckets.
func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay, which is served without consuming tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limits. A denied request gets a Retry-After header
// with the whole seconds until a token is available and a RateLimited error.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := rl.exempt[c.FullPath()]; ok || IsRateBypass(c) {
			c.Next()
			return
		}

		key := rl.key(c)
		res := rl.bucketFor(key).ReserveN(rl.now(), 1)
		if res.OK() && res.Delay() == 0 {
			c.Next()
			return
		}

		wait := 1
		if res.OK() {
			wait = int(math.Ceil(res.Delay().Seconds()))
			res.Cancel()
		}
		c.Header("Retry-After", strconv.Itoa(wait))
		_ = c.Error(apperr.New(apperr.RateLimited, key))
		c.Abort()
	}
}
