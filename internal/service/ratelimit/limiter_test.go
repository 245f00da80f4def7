package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesAndRefills(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("expected first two requests to pass")
	}
	if l.Allow("a") {
		t.Fatal("expected third request to be limited")
	}
	if !l.Allow("b") {
		t.Fatal("keys must not share a bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatal("expected refill after one second")
	}
}

func TestSweepDropsIdleBuckets(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(5, 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(10 * time.Second)
	if n := l.Sweep(); n != 1 {
		t.Fatalf("expected 1 bucket swept, got %d", n)
	}
}
