package ratelimit

import (
	"context"
	"testing"
	"time"

	"cryptotracker/internal/fetcher"
)

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0)

	for i := 0; i < 10; i++ {
		if !l.Allow(fetcher.EndpointPrimary) {
			t.Fatalf("Allow() = false on request %d with pacing disabled", i+1)
		}
	}
}

func TestLimiter_PacesRequests(t *testing.T) {
	// 1 request per second with burst 1: the second immediate request is denied
	l := New(1)

	if !l.Allow(fetcher.EndpointPrimary) {
		t.Fatal("Allow() = false for the first request")
	}
	if l.Allow(fetcher.EndpointPrimary) {
		t.Error("Allow() = true for an immediate second request")
	}
}

func TestLimiter_EndpointsAreIndependent(t *testing.T) {
	l := New(1)

	if !l.Allow(fetcher.EndpointPrimary) {
		t.Fatal("Allow() = false for the first primary request")
	}
	if !l.Allow(fetcher.EndpointBackup) {
		t.Error("Allow() = false for backup after a primary request; budgets must be independent")
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	l := New(0.001) // effectively never refills within the test

	if !l.Allow(fetcher.EndpointPrimary) {
		t.Fatal("Allow() = false for the first request")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, fetcher.EndpointPrimary); err == nil {
		t.Error("Wait() expected error when context expires before a token is available")
	}
}
