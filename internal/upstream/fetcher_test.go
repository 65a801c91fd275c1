package upstream

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestFetchFollowsCoin(t *testing.T) {
	f := NewFetcher(0, Sequence(true, false))
	ctx := context.Background()

	v, err := f.Fetch(ctx)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if v != InitialBalance {
		t.Fatalf("expected %d, got %d", InitialBalance, v)
	}

	if _, err := f.Fetch(ctx); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchFailureRateIsFair(t *testing.T) {
	f := NewFetcher(0, NewCoin(42))
	ctx := context.Background()

	const calls = 1000
	failures := 0
	for i := 0; i < calls; i++ {
		if _, err := f.Fetch(ctx); err != nil {
			failures++
		}
	}

	rate := float64(failures) / calls
	if math.Abs(rate-0.5) > 0.05 {
		t.Fatalf("failure rate %.3f outside 0.5 +/- 0.05", rate)
	}
}

func TestSeededCoinIsReproducible(t *testing.T) {
	a, b := NewCoin(7), NewCoin(7)
	for i := 0; i < 64; i++ {
		if a.Flip() != b.Flip() {
			t.Fatalf("flip %d diverged", i)
		}
	}
}

func TestFetchWaitsForDelay(t *testing.T) {
	f := NewFetcher(20*time.Millisecond, Fixed(true))
	start := time.Now()
	if _, err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("returned after %s, expected at least 20ms", elapsed)
	}
}

func TestFetchHonorsCancellation(t *testing.T) {
	f := NewFetcher(time.Minute, Fixed(true))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
