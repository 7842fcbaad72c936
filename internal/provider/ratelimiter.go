package provider

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimiter implements a token bucket. The batch fetcher uses it to space
// dispatches across different symbols.
type RateLimiter struct {
	mu             sync.Mutex
	clock          clockwork.Clock
	tokens         int
	maxTokens      int
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewRateLimiter creates a limiter that allows maxTokens calls per refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(maxTokens, refillInterval, clockwork.NewRealClock())
}

func NewRateLimiterWithClock(maxTokens int, refillInterval time.Duration, clock clockwork.Clock) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	return &RateLimiter{
		clock:          clock,
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillInterval: refillInterval,
		lastRefill:     clock.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil || r.refillInterval <= 0 {
		return ctx.Err()
	}
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		wait := r.lastRefill.Add(r.refillInterval).Sub(r.clock.Now())
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(wait):
		}
	}
}

func (r *RateLimiter) refill() {
	now := r.clock.Now()
	elapsed := now.Sub(r.lastRefill)
	newTokens := int(elapsed / r.refillInterval)
	if newTokens > 0 {
		r.tokens += newTokens
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(newTokens) * r.refillInterval)
	}
}
