package telephony

import (
	"sync"
	"time"

	"callrelay/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures per-caller rate limiting on the voice webhooks.
type RateLimiterConfig struct {
	// Rate is the number of requests allowed per second per caller number.
	Rate rate.Limit
	// Burst is the maximum burst size per caller number.
	Burst int
	// CleanupInterval is how often stale entries are removed.
	CleanupInterval time.Duration
	// MaxAge is how long an idle limiter is kept before eviction.
	MaxAge time.Duration
}

// DefaultRateLimiterConfig is generous: a legitimate call produces at most two
// webhooks, so 1/sec with burst 5 only throttles redial loops and abuse.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            rate.Limit(1),
		Burst:           5,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// CallerRateLimiter tracks a token bucket per caller number.
type CallerRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	cfg     RateLimiterConfig
	stopCh  chan struct{}
}

// NewCallerRateLimiter creates a rate limiter and starts background cleanup.
func NewCallerRateLimiter(cfg RateLimiterConfig) *CallerRateLimiter {
	rl := &CallerRateLimiter{
		entries: make(map[string]*rateLimitEntry),
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow checks whether a request from the given caller is allowed.
// An empty caller is never limited; anonymous calls share no bucket.
func (rl *CallerRateLimiter) Allow(caller string) bool {
	if caller == "" {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[caller]
	if !ok {
		e = &rateLimitEntry{limiter: rate.NewLimiter(rl.cfg.Rate, rl.cfg.Burst)}
		rl.entries[caller] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// Stop terminates the cleanup goroutine.
func (rl *CallerRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *CallerRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictStale()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CallerRateLimiter) evictStale() {
	cutoff := time.Now().Add(-rl.cfg.MaxAge)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, k)
		}
	}
}

// RateLimit throttles webhook POSTs per caller number. Over-limit callers get
// the decline markup with HTTP 200: Twilio is still bridging a live call, so
// even a throttled request must receive well-formed TwiML.
func RateLimit(rl *CallerRateLimiter, h WebhookHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Request.ParseForm()
		caller := normalizePhone(c.Request.PostFormValue("From"))
		if !rl.Allow(caller) {
			logger.FromGin(c).Warn("caller rate limited", "from", caller)
			h.writeDecline(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
