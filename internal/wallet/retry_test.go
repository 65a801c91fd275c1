package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/upstream"
)

type countingService struct {
	Service
	fetches int
	err     error
}

func (c *countingService) FetchBalance(ctx context.Context) (Balance, error) {
	c.fetches++
	if c.err != nil {
		return balance.Unknown, c.err
	}
	return c.Service.FetchBalance(ctx)
}

func fastPolicy(retries uint64) RetryPolicy {
	return RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, MaxRetries: retries}
}

func TestFetchWithRetryRecovers(t *testing.T) {
	inner := NewRaceService(newStore(t, balance.Unknown), upstream.NewFetcher(0, upstream.Sequence(false, false, true)))
	svc := &countingService{Service: inner}

	got, err := FetchWithRetry(context.Background(), svc, fastPolicy(5))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != balance.Of(0) {
		t.Fatalf("expected 0, got %s", got)
	}
	if svc.fetches != 3 {
		t.Fatalf("expected 3 attempts, got %d", svc.fetches)
	}
}

func TestFetchWithRetryGivesUp(t *testing.T) {
	svc := &countingService{Service: NewRaceService(newStore(t, balance.Unknown), alwaysDown())}

	_, err := FetchWithRetry(context.Background(), svc, fastPolicy(2))
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if svc.fetches != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d", svc.fetches)
	}
}

func TestFetchWithRetryStopsOnPermanentError(t *testing.T) {
	boom := errors.New("store offline")
	svc := &countingService{Service: NewRaceService(newStore(t, balance.Unknown), alwaysUp()), err: boom}

	_, err := FetchWithRetry(context.Background(), svc, fastPolicy(5))
	if !errors.Is(err, boom) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if svc.fetches != 1 {
		t.Fatalf("expected a single attempt, got %d", svc.fetches)
	}
}

func TestDepositWithInit(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes then deposits", func(t *testing.T) {
		store := newStore(t, balance.Unknown)
		svc := NewRaceService(store, alwaysUp())
		v, err := DepositWithInit(ctx, svc, 40, fastPolicy(1))
		if err != nil {
			t.Fatalf("deposit: %v", err)
		}
		if v != 40 || store.Get() != balance.Of(40) {
			t.Fatalf("expected 40, got %d / %s", v, store.Get())
		}
	})

	t.Run("surfaces init failure", func(t *testing.T) {
		store := newStore(t, balance.Unknown)
		svc := NewRaceService(store, alwaysDown())
		if _, err := DepositWithInit(ctx, svc, 40, fastPolicy(1)); !errors.Is(err, ErrFetchFailed) {
			t.Fatalf("expected ErrFetchFailed, got %v", err)
		}
		if store.Get().Known {
			t.Fatalf("expected unknown, got %s", store.Get())
		}
	})

	t.Run("known wallet deposits once", func(t *testing.T) {
		svc := NewRaceService(newStore(t, balance.Of(5)), alwaysDown())
		v, err := DepositWithInit(ctx, svc, 5, fastPolicy(1))
		if err != nil || v != 10 {
			t.Fatalf("expected 10, got %d (%v)", v, err)
		}
	})
}
