package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter paces requests to at most requestsPerMinute by spacing them
// evenly. Refills are computed lazily from timestamps, so there is no
// background goroutine to manage.
type rateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &rateLimiter{interval: time.Minute / time.Duration(requestsPerMinute)}
}

// wait blocks until the limiter's schedule allows another request or the
// context is canceled. Each caller claims the next slot on the schedule, so
// concurrent workers are serialized fairly.
func (rl *rateLimiter) wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	if rl.next.Before(now) {
		rl.next = now
	}
	delay := rl.next.Sub(now)
	rl.next = rl.next.Add(rl.interval)
	rl.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
