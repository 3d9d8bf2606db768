package rate_limit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimitResult struct {
	Allowed       bool `json:"allowed"`
	RetryAfterSec int  `json:"retryAfterSec,omitempty"`
}

const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key. Buckets idle for longer than
// idleLimiterTTL are dropped on the next check.
type RateLimiter struct {
	rpsLimit   int
	burstLimit int

	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter returns a limiter allowing rpsLimit requests per second per
// key. A non-positive rpsLimit disables limiting. A non-positive burstLimit
// defaults to max(rpsLimit*5, 10).
func NewRateLimiter(rpsLimit, burstLimit int) *RateLimiter {
	if burstLimit <= 0 {
		burstLimit = max(rpsLimit*5, 10)
	}

	return &RateLimiter{
		rpsLimit:   rpsLimit,
		burstLimit: burstLimit,
		limiters:   make(map[string]*clientLimiter),
		now:        time.Now,
	}
}

func (r *RateLimiter) IsEnabled() bool {
	return r.rpsLimit > 0
}

func (r *RateLimiter) CheckRateLimit(key string) RateLimitResult {
	if !r.IsEnabled() {
		return RateLimitResult{Allowed: true}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	entry, ok := r.limiters[key]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(r.rpsLimit), r.burstLimit)}
		r.limiters[key] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return RateLimitResult{Allowed: true}
	}

	retryAfterSec := int(math.Ceil(1.0 / float64(r.rpsLimit)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	return RateLimitResult{Allowed: false, RetryAfterSec: retryAfterSec}
}

func (r *RateLimiter) ResetRateLimit(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.limiters, key)
}

func (r *RateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < idleLimiterTTL {
		return
	}
	r.lastSweep = now

	for key, entry := range r.limiters {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(r.limiters, key)
		}
	}
}
