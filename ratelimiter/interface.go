package ratelimiter

import "time"

// Limiter guards an upstream quota measured in requests and estimated
// tokens per minute. Implementations can be local (in-memory) or shared.
type Limiter interface {
	// TryConsume atomically checks capacity and consumes one request plus
	// numTokens if available. Returns false if either budget is short.
	TryConsume(numTokens int) bool

	// TimeUntilAvailable returns how long until tokens would be available (read-only).
	TimeUntilAvailable(tokens int) time.Duration
}
