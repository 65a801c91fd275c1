package wallet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/isolation"
	"github.com/congo-pay/walletrace/internal/upstream"
)

func TestActorServiceConcurrentDepositsAreExact(t *testing.T) {
	cases := []struct {
		depositors int
		amount     int64
	}{
		{depositors: 1, amount: 10},
		{depositors: 50, amount: 0},
		{depositors: 400, amount: 10},
		{depositors: 250, amount: 7},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%dx%d", tc.depositors, tc.amount), func(t *testing.T) {
			store := newStore(t, balance.Of(0))
			svc := NewActorService(store, alwaysUp(), time.Millisecond)
			defer svc.Close()

			var wg sync.WaitGroup
			for i := 0; i < tc.depositors; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := svc.Deposit(context.Background(), tc.amount); err != nil {
						t.Errorf("deposit: %v", err)
					}
				}()
			}
			wg.Wait()

			want := int64(tc.depositors) * tc.amount
			if got := store.Get(); got != balance.Of(want) {
				t.Fatalf("expected %d, got %s", want, got)
			}
		})
	}
}

func TestActorServiceDepositsAndWithdrawalsCancelOut(t *testing.T) {
	store := newStore(t, balance.Of(0))
	svc := NewActorService(store, alwaysUp(), 0)
	defer svc.Close()

	const calls = 200
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Deposit(context.Background(), 100)
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Withdraw(context.Background(), 100)
		}()
	}
	wg.Wait()

	if got := store.Get(); got != balance.Of(0) {
		t.Fatalf("expected 0, got %s", got)
	}
}

func TestActorServiceNoWallet(t *testing.T) {
	store := newStore(t, balance.Unknown)
	svc := NewActorService(store, alwaysUp(), 0)
	defer svc.Close()

	if _, err := svc.Deposit(context.Background(), 10); !errors.Is(err, ErrNoWallet) {
		t.Fatalf("expected ErrNoWallet, got %v", err)
	}
	if store.Get().Known {
		t.Fatalf("expected balance to stay unknown, got %s", store.Get())
	}
}

func TestActorServiceFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes unknown balance", func(t *testing.T) {
		store := newStore(t, balance.Unknown)
		svc := NewActorService(store, alwaysUp(), 0)
		defer svc.Close()

		got, err := svc.FetchBalance(ctx)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got != balance.Of(0) || store.Get() != balance.Of(0) {
			t.Fatalf("expected 0, got %s / %s", got, store.Get())
		}
	})

	t.Run("keeps known balance", func(t *testing.T) {
		store := newStore(t, balance.Of(120))
		svc := NewActorService(store, alwaysUp(), 0)
		defer svc.Close()

		got, err := svc.FetchBalance(ctx)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if got != balance.Of(120) {
			t.Fatalf("expected 120, got %s", got)
		}
	})

	t.Run("failure leaves balance", func(t *testing.T) {
		store := newStore(t, balance.Unknown)
		svc := NewActorService(store, alwaysDown(), 0)
		defer svc.Close()

		if _, err := svc.FetchBalance(ctx); !errors.Is(err, ErrFetchFailed) {
			t.Fatalf("expected ErrFetchFailed, got %v", err)
		}
		if store.Get().Known {
			t.Fatalf("expected unknown balance, got %s", store.Get())
		}
	})
}

func TestActorServiceFetchFailureRate(t *testing.T) {
	store := newStore(t, balance.Unknown)
	svc := NewActorService(store, upstream.NewFetcher(0, upstream.NewCoin(42)), 0)
	defer svc.Close()
	ctx := context.Background()

	const calls = 1000
	failures := 0
	for i := 0; i < calls; i++ {
		got, err := svc.FetchBalance(ctx)
		if err != nil {
			failures++
			continue
		}
		after, err := svc.Balance(ctx)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if got != after {
			t.Fatalf("fetch returned %s but store holds %s", got, after)
		}
	}

	rate := float64(failures) / calls
	if math.Abs(rate-0.5) > 0.05 {
		t.Fatalf("failure rate %.3f outside 0.5 +/- 0.05", rate)
	}
}

func TestActorServiceResetIsStableAtZero(t *testing.T) {
	store := newStore(t, balance.Of(990))
	svc := NewActorService(store, alwaysUp(), 0)
	defer svc.Close()
	ctx := context.Background()

	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err := svc.FetchBalance(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != balance.Of(0) {
		t.Fatalf("expected 0 after reset, got %s", got)
	}
}

func TestActorServiceResetWhenFetchFails(t *testing.T) {
	store := newStore(t, balance.Unknown)
	svc := NewActorService(store, alwaysDown(), 0)
	defer svc.Close()

	if err := svc.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.Get() != balance.Of(0) {
		t.Fatalf("expected 0, got %s", store.Get())
	}
}

func TestActorServiceClosed(t *testing.T) {
	svc := NewActorService(newStore(t, balance.Of(0)), alwaysUp(), 0)
	svc.Close()

	if _, err := svc.Deposit(context.Background(), 1); !errors.Is(err, isolation.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
