package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowsEverythingWithoutRedis(t *testing.T) {
	l := NewLimiter(nil, "verify", 3, time.Minute)

	for i := 0; i < 10; i++ {
		ok, err := l.Allow(context.Background(), "203.0.113.7")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !ok {
			t.Fatal("nil redis must never block")
		}
	}

	if err := l.Reset(context.Background(), "203.0.113.7"); err != nil {
		t.Fatalf("reset: %v", err)
	}
}
