package gateway

import (
	"sync"
	"time"
)

// RateLimiter throttles REST calls so a busy poll loop cannot trip the
// backend's per-session rate limit.
type RateLimiter interface {
	Wait()
}

// TokenBucketLimiter grants one token per Wait. Each call reserves its token
// under the lock, so the bucket may go negative; the caller then sleeps off
// its share of the debt outside the lock. Refill earned during the sleep is
// already accounted for by the reservation, so concurrent waiters pace out
// evenly instead of racing for tokens when they wake.
type TokenBucketLimiter struct {
	rate   float64 // tokens per second
	burst  int
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:   rate,
		burst:  burst,
		tokens: float64(burst),
		last:   time.Now(),
	}
}

func (l *TokenBucketLimiter) Wait() {
	l.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(l.last).Seconds()
	l.last = now
	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
	l.tokens--
	var sleep time.Duration
	if l.tokens < 0 {
		sleep = time.Duration(-l.tokens / l.rate * float64(time.Second))
	}
	l.mu.Unlock()
	if sleep > 0 {
		time.Sleep(sleep)
	}
}
