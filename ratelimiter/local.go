package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter combines a token budget and a request budget, both
// replenished every minute.
type RateLimiter struct {
	TokensBucket   *TokenBucket
	RequestsBucket *TokenBucket
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// Config stores the per-minute budgets. A zero budget disables that
// dimension.
type Config struct {
	TokensPerMinute   int
	RequestsPerMinute int
}

// New creates a limiter with the given per-minute budgets.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return NewLimiter(&Config{
		TokensPerMinute:   tokensPerMinute,
		RequestsPerMinute: requestsPerMinute,
	})
}

// NewLimiter initializes a new rate limiter with the given config.
func NewLimiter(config *Config) *RateLimiter {
	refillInterval := time.Minute
	return &RateLimiter{
		TokensBucket:   NewTokenBucket(config.TokensPerMinute, config.TokensPerMinute, refillInterval),
		RequestsBucket: NewTokenBucket(config.RequestsPerMinute, config.RequestsPerMinute, refillInterval),
	}
}

// TryConsume consumes numTokens and one request only when both budgets
// allow it; a refusal leaves both buckets untouched.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	first, second := rl.TokensBucket, rl.RequestsBucket
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	now := time.Now()
	first.refillLocked(now)
	second.refillLocked(now)
	if !first.allowsLocked(numTokens) || !second.allowsLocked(1) {
		return false
	}
	first.takeLocked(numTokens)
	second.takeLocked(1)
	return true
}

// TimeUntilAvailable returns how long until one request plus tokens
// would be accepted. It does not modify state.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	tokenWait := rl.TokensBucket.TimeUntilAvailable(tokens)
	requestWait := rl.RequestsBucket.TimeUntilAvailable(1)
	if tokenWait > requestWait {
		return tokenWait
	}
	return requestWait
}

// TokenBucket implements a token bucket rate limit algorithm. A bucket
// with zero capacity never limits.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      initialTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

// Unlimited reports whether the bucket was created without a budget.
func (tb *TokenBucket) Unlimited() bool {
	return tb.capacity <= 0
}

func (tb *TokenBucket) refillLocked(now time.Time) {
	if now.Sub(tb.lastRefill) >= tb.refillInterval {
		tb.remaining = tb.capacity
		tb.lastRefill = now
	}
}

func (tb *TokenBucket) allowsLocked(tokens int) bool {
	return tb.Unlimited() || tokens <= tb.remaining
}

func (tb *TokenBucket) takeLocked(tokens int) {
	if !tb.Unlimited() {
		tb.remaining -= tokens
	}
}

// TimeUntilAvailable returns how long until tokens would be available
// (read-only). Buckets refill in full, so this is the time to the next
// refill or zero.
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.Unlimited() {
		return 0
	}

	next := tb.lastRefill.Add(tb.refillInterval)
	now := time.Now()
	if !now.Before(next) || tokens <= tb.remaining {
		return 0
	}
	return next.Sub(now)
}
