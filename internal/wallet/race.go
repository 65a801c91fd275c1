package wallet

import (
	"context"
	"runtime"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/upstream"
)

// RaceService is a wallet with no synchronization. Concurrent deposits and
// withdrawals read the same starting balance and overwrite each other's
// writes. It exists as the unsafe baseline; do not add locking here.
type RaceService struct {
	store      *balance.Store
	fetcher    *upstream.Fetcher
	interleave func()
}

// RaceOption customizes a RaceService.
type RaceOption func(*RaceService)

// WithInterleave sets the hook that runs between the read and the write of
// every deposit and withdrawal. Tests use it to force a lost update.
func WithInterleave(fn func()) RaceOption {
	return func(s *RaceService) {
		s.interleave = fn
	}
}

// NewRaceService builds an unsynchronized wallet. By default the goroutine
// yields between read and write, which widens the race window.
func NewRaceService(store *balance.Store, fetcher *upstream.Fetcher, opts ...RaceOption) *RaceService {
	s := &RaceService{store: store, fetcher: newFetcher(fetcher), interleave: runtime.Gosched}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variant implements Service.
func (s *RaceService) Variant() Variant {
	return VariantRace
}

// Deposit adds amount and returns the new balance.
func (s *RaceService) Deposit(ctx context.Context, amount int64) (int64, error) {
	return readModifyWrite(ctx, s.store, amount, s.interleave)
}

// Withdraw subtracts amount and returns the new balance. The balance may go
// negative.
func (s *RaceService) Withdraw(ctx context.Context, amount int64) (int64, error) {
	return readModifyWrite(ctx, s.store, -amount, s.interleave)
}

// FetchBalance asks upstream for the balance. On success the stored balance
// is overwritten with the upstream value.
func (s *RaceService) FetchBalance(ctx context.Context) (Balance, error) {
	v, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return balance.Unknown, err
	}
	fetched := balance.Of(v)
	if err := s.store.Set(ctx, fetched); err != nil {
		return fetched, err
	}
	return fetched, nil
}

// Balance returns the stored balance.
func (s *RaceService) Balance(_ context.Context) (Balance, error) {
	return s.store.Get(), nil
}
