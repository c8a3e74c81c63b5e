package ratelimiter

import "sync"

// RateLimiterRegistry holds one limiter per key, e.g. per session and
// model.
type RateLimiterRegistry interface {
	// GetOrCreate returns the limiter for key, creating it with newFn on
	// first use.
	GetOrCreate(key string, newFn func() Limiter) Limiter
	Delete(key string)
}

type rateLimiterMapRegistry struct {
	registry map[string]Limiter
	mu       sync.RWMutex
}

// NewRateLimiterRegistry creates a new in-memory rate limiter registry.
func NewRateLimiterRegistry() RateLimiterRegistry {
	return &rateLimiterMapRegistry{
		registry: make(map[string]Limiter),
	}
}

func (r *rateLimiterMapRegistry) GetOrCreate(key string, newFn func() Limiter) Limiter {
	r.mu.RLock()
	limiter, ok := r.registry[key]
	r.mu.RUnlock()
	if ok {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if limiter, ok := r.registry[key]; ok {
		return limiter
	}
	limiter = newFn()
	r.registry[key] = limiter
	return limiter
}

func (r *rateLimiterMapRegistry) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.registry, key)
}
