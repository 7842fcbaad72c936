package provider

import "time"

// Backoff is the retry policy for rate-limited requests: the wait before
// retry n (0-based) is Base * 2^n, and after MaxRetries retries the next
// rate-limited attempt is final.
type Backoff struct {
	Base       time.Duration
	MaxRetries int
}

func DefaultBackoff() Backoff {
	return Backoff{Base: time.Second, MaxRetries: 5}
}

func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return b.Base << uint(attempt)
}

// Schedule lists every wait the policy allows, in order.
func (b Backoff) Schedule() []time.Duration {
	out := make([]time.Duration, 0, b.MaxRetries)
	for i := 0; i < b.MaxRetries; i++ {
		out = append(out, b.Delay(i))
	}
	return out
}
