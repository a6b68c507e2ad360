package service

import (
	"context"
	"math"
	"sync"
	"time"
)

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

// TokenBucket is an in-memory per-key rate limiter. It is safe for
// concurrent use. Buckets idle for longer than ten minutes are dropped by a
// sweeper that runs until the context passed to NewTokenBucket is done.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter allowing bursts of capacity per key,
// refilling at rate tokens per second.
func NewTokenBucket(ctx context.Context, rate, capacity float64) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
	}
	go tb.sweep(ctx)
	return tb
}

// Allow consumes one token for key. When the bucket is empty it returns
// false and how long until the next token is available.
func (tb *TokenBucket) Allow(key string) (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens = min(b.tokens+elapsed*tb.rate, tb.capacity)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	if tb.rate <= 0 {
		return false, 0
	}
	wait := (1 - b.tokens) / tb.rate
	return false, time.Duration(math.Ceil(wait * float64(time.Second)))
}

func (tb *TokenBucket) sweep(ctx context.Context) {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tb.evictIdle()
		}
	}
}

func (tb *TokenBucket) evictIdle() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	cutoff := tb.now().Add(-bucketIdleTTL)
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}
