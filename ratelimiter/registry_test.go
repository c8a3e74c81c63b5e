package ratelimiter

import (
	"sync"
	"testing"
)

func TestRateLimiterRegistry_Delete(t *testing.T) {
	registry := NewRateLimiterRegistry()

	first := registry.GetOrCreate("session-a", func() Limiter { return New(100, 10) })
	if again := registry.GetOrCreate("session-a", func() Limiter { return New(1, 1) }); again != first {
		t.Error("expected the existing limiter to be returned")
	}

	registry.Delete("session-a")
	fresh := registry.GetOrCreate("session-a", func() Limiter { return New(1, 1) })
	if fresh == first {
		t.Error("expected a new limiter after delete")
	}

	registry.Delete("missing")
}

func TestRateLimiterRegistry_GetOrCreate(t *testing.T) {
	registry := NewRateLimiterRegistry()

	var mu sync.Mutex
	created := 0
	newFn := func() Limiter {
		mu.Lock()
		created++
		mu.Unlock()
		return New(100, 10)
	}

	var wg sync.WaitGroup
	results := make([]Limiter, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = registry.GetOrCreate("session-b", newFn)
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("expected 1 limiter created, got %d", created)
	}
	for i, l := range results {
		if l != results[0] {
			t.Errorf("result %d is a different limiter", i)
		}
	}
}
