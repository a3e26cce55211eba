package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 3})
	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if rl.Allow() {
		t.Error("request over burst should be rejected")
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1})
	if !rl.Allow() {
		t.Fatal("first request should be allowed")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow() {
		t.Error("bucket should refill over time")
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	var waited time.Duration
	rl := NewRateLimiter(RateLimiterConfig{
		Name:    "api",
		Rate:    50,
		Burst:   1,
		OnLimit: func(name string, wait time.Duration) { waited = wait },
	})
	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("expected to wait for a token, waited %v", elapsed)
	}
	if waited <= 0 {
		t.Error("expected OnLimit with a positive wait")
	}
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.1, Burst: 1})
	rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if got := rl.Tokens(); got != 10 {
		t.Errorf("expected default burst of 10 tokens, got %v", got)
	}

	rl = NewRateLimiter(RateLimiterConfig{Rate: 0.5})
	if got := rl.Tokens(); got < 1 {
		t.Errorf("fractional rate should still allow one token, got %v", got)
	}
}
