package wallet

import (
	"context"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/upstream"
)

// Balance is an optional wallet balance.
type Balance = balance.Amount

// Service is a wallet holding one balance. Implementations differ only in
// the synchronization applied around the balance.
type Service interface {
	Variant() Variant
	Deposit(ctx context.Context, amount int64) (int64, error)
	Withdraw(ctx context.Context, amount int64) (int64, error)
	FetchBalance(ctx context.Context) (Balance, error)
	Balance(ctx context.Context) (Balance, error)
}

// Resetter is implemented by services that can be reset to a zero balance.
type Resetter interface {
	Reset(ctx context.Context) error
}

// readModifyWrite adds delta to the stored balance as two separate steps.
// between runs after the read and before the write.
func readModifyWrite(ctx context.Context, store *balance.Store, delta int64, between func()) (int64, error) {
	current, ok := store.Get().Get()
	if !ok {
		return 0, ErrNoWallet
	}
	if between != nil {
		between()
	}
	next := current + delta
	if err := store.Set(ctx, balance.Of(next)); err != nil {
		return next, err
	}
	return next, nil
}

// initializeIfAbsent keeps a known balance, otherwise stores the upstream one.
func initializeIfAbsent(ctx context.Context, store *balance.Store, upstreamValue int64) (Balance, error) {
	if current := store.Get(); current.Known {
		return current, nil
	}
	fetched := balance.Of(upstreamValue)
	if err := store.Set(ctx, fetched); err != nil {
		return fetched, err
	}
	return fetched, nil
}

func newFetcher(f *upstream.Fetcher) *upstream.Fetcher {
	if f == nil {
		return upstream.NewFetcher(0, nil)
	}
	return f
}
