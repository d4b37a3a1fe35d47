package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	l := New(2, 1)

	if !l.Allow() {
		t.Fatal("first token should be available")
	}
	if !l.Allow() {
		t.Fatal("second token should be available")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty after burst")
	}
}

func TestRefill(t *testing.T) {
	l := New(1, 10)
	l.tokens = 0
	l.last = time.Now().Add(-200 * time.Millisecond)

	if !l.Allow() {
		t.Fatal("200ms at 10/s should refill at least one token")
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	l := New(1, 100)
	l.last = time.Now().Add(-time.Hour)
	l.refill(time.Now())

	if l.tokens > l.capacity {
		t.Fatalf("tokens %v exceed capacity %v", l.tokens, l.capacity)
	}
}

func TestWaitBlocksUntilToken(t *testing.T) {
	l := New(1, 20) // 50ms per token
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("second wait returned after %v, expected a throttle delay", elapsed)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	l := New(1, 0.001) // effectively never refills
	l.tokens = 0

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	if err == nil {
		t.Fatal("expected context error")
	}
	if err != context.DeadlineExceeded {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
