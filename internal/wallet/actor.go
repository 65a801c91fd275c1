package wallet

import (
	"context"
	"time"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/isolation"
	"github.com/congo-pay/walletrace/internal/upstream"
)

// ActorService owns its balance through a private executor: every read and
// write of the balance runs on that executor, one at a time. Simulated
// latency is spent before entering the executor, so slow callers do not hold
// up the queue.
type ActorService struct {
	store   *balance.Store
	fetcher *upstream.Fetcher
	latency time.Duration
	exec    *isolation.Executor
}

// NewActorService builds an isolated wallet. latency is the simulated network
// cost of a deposit.
func NewActorService(store *balance.Store, fetcher *upstream.Fetcher, latency time.Duration) *ActorService {
	return &ActorService{
		store:   store,
		fetcher: newFetcher(fetcher),
		latency: latency,
		exec:    isolation.NewExecutor("actor:" + store.Key()),
	}
}

// Variant implements Service.
func (s *ActorService) Variant() Variant {
	return VariantActor
}

// Deposit pays the simulated latency, then adds amount atomically and
// returns the new balance.
func (s *ActorService) Deposit(ctx context.Context, amount int64) (int64, error) {
	if err := upstream.Sleep(ctx, s.latency); err != nil {
		return 0, err
	}
	return s.apply(ctx, amount)
}

// Withdraw subtracts amount atomically and returns the new balance.
func (s *ActorService) Withdraw(ctx context.Context, amount int64) (int64, error) {
	return s.apply(ctx, -amount)
}

func (s *ActorService) apply(ctx context.Context, delta int64) (int64, error) {
	return isolation.Call(ctx, s.exec, func() (int64, error) {
		return readModifyWrite(ctx, s.store, delta, nil)
	})
}

// FetchBalance fails with ErrFetchFailed half of the time. Otherwise it
// returns the stored balance, initializing it to the upstream value when it
// is still unknown.
func (s *ActorService) FetchBalance(ctx context.Context) (Balance, error) {
	if err := s.fetcher.Wait(ctx); err != nil {
		return balance.Unknown, err
	}
	return isolation.Call(ctx, s.exec, func() (Balance, error) {
		v, err := s.fetcher.Outcome()
		if err != nil {
			return balance.Unknown, err
		}
		return initializeIfAbsent(ctx, s.store, v)
	})
}

// Reset zeroes the balance and then fetches, discarding the result. The
// fetch never overwrites a known balance, so the balance stays at zero.
func (s *ActorService) Reset(ctx context.Context) error {
	var setErr error
	if err := s.exec.Do(ctx, func() { setErr = s.store.Set(ctx, balance.Of(0)) }); err != nil {
		return err
	}
	if setErr != nil {
		return setErr
	}
	_, _ = s.FetchBalance(ctx)
	return nil
}

// Balance reads the balance on the executor.
func (s *ActorService) Balance(ctx context.Context) (Balance, error) {
	return isolation.Call(ctx, s.exec, func() (Balance, error) {
		return s.store.Get(), nil
	})
}

// Close stops the executor. Later calls fail with isolation.ErrClosed.
func (s *ActorService) Close() {
	s.exec.Close()
}
