package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/msomdec/task-board/internal/service"
)

func newBucket(t *testing.T, rate, capacity float64) *service.TokenBucket {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return service.NewTokenBucket(ctx, rate, capacity)
}

func allowed(tb *service.TokenBucket, key string) bool {
	ok, _ := tb.Allow(key)
	return ok
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb := newBucket(t, 1, 3)

	for i := 0; i < 3; i++ {
		if !allowed(tb, "test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}

	ok, retry := tb.Allow("test-key")
	if ok {
		t.Fatal("4th request should be denied (bucket empty)")
	}
	if retry <= 0 || retry > time.Second {
		t.Fatalf("expected retry-after within (0, 1s], got %v", retry)
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb := newBucket(t, 1, 1)

	if !allowed(tb, "ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if allowed(tb, "ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !allowed(tb, "ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := newBucket(t, 1000, 1)

	if !allowed(tb, "k") {
		t.Fatal("first request should be allowed")
	}
	time.Sleep(20 * time.Millisecond)
	if !allowed(tb, "k") {
		t.Fatal("request after refill should be allowed")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	tb := newBucket(t, 0, 2)

	if !allowed(tb, "k") {
		t.Fatal("first request should be allowed")
	}
	if !allowed(tb, "k") {
		t.Fatal("second request should be allowed")
	}
	if allowed(tb, "k") {
		t.Fatal("third request should be denied (no refill)")
	}
}
