package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a per-minute token budget for API calls that
// are billed by token rather than by request.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	used        int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMin tokens per
// sliding one-minute window.
func NewTokenLimiter(maxPerMin int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxPerMin,
		windowStart: time.Now(),
	}
}

// Wait blocks until n tokens fit into the current window, or the
// context is cancelled. Requests larger than the whole budget are
// admitted alone once the window resets.
func (t *TokenLimiter) Wait(ctx context.Context, n int) error {
	for {
		t.mu.Lock()
		now := time.Now()
		if now.Sub(t.windowStart) >= time.Minute {
			t.windowStart = now
			t.used = 0
		}
		if t.used+n <= t.maxPerMin || t.used == 0 {
			t.used += n
			t.mu.Unlock()
			return nil
		}
		wait := time.Minute - now.Sub(t.windowStart)
		t.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (t *TokenLimiter) GetRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if time.Since(t.windowStart) >= time.Minute {
		return t.maxPerMin
	}
	remaining := t.maxPerMin - t.used
	if remaining < 0 {
		return 0
	}
	return remaining
}
