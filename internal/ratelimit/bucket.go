package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrExhausted is returned by TryTake when no token is available.
var ErrExhausted = errors.New("rate limit exhausted")

// Bucket is a token bucket. It holds its own clock reference so tests can
// drive it with a fake clock, and multiple independently configured buckets
// can coexist in one process.
type Bucket struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	refill   float64 // tokens per second
	last     time.Time
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
}

// New creates a bucket holding capacity tokens, refilled at refillPerSec.
func New(capacity int, refillPerSec float64) *Bucket {
	return NewWithClock(capacity, refillPerSec, time.Now)
}

// NewWithClock creates a bucket driven by the given clock.
func NewWithClock(capacity int, refillPerSec float64, now func() time.Time) *Bucket {
	if capacity < 1 {
		capacity = 1
	}
	return &Bucket{
		capacity: float64(capacity),
		tokens:   float64(capacity),
		refill:   refillPerSec,
		last:     now(),
		now:      now,
		sleep:    sleepCtx,
	}
}

// TryTake takes a token if one is available, without blocking.
func (b *Bucket) TryTake() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	if b.tokens < 1 {
		return ErrExhausted
	}
	b.tokens--
	return nil
}

// Wait blocks until a token is available or the context is done.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		b.advance()
		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		need := 1 - b.tokens
		var wait time.Duration
		if b.refill > 0 {
			wait = time.Duration(need / b.refill * float64(time.Second))
		} else {
			b.mu.Unlock()
			return ErrExhausted
		}
		b.mu.Unlock()

		if err := b.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Available reports the tokens currently in the bucket.
func (b *Bucket) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return int(b.tokens)
}

// advance credits tokens for time elapsed since the last update.
// Callers must hold mu.
func (b *Bucket) advance() {
	now := b.now()
	elapsed := now.Sub(b.last).Seconds()
	if elapsed <= 0 {
		return
	}
	b.last = now
	b.tokens += elapsed * b.refill
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
