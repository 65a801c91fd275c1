// Package upstream simulates the remote service wallets refresh their balance
// from: a fixed latency followed by a coin flip.
package upstream

import (
	"context"
	"errors"
	"time"
)

// ErrFetchFailed is the transient upstream failure.
var ErrFetchFailed = errors.New("cannot fetch wallet balance")

// InitialBalance is what upstream reports for a wallet it has never seen.
const InitialBalance int64 = 0

// Fetcher performs one simulated network call per Fetch. It does not retry.
type Fetcher struct {
	Delay time.Duration
	Coin  Coin
}

// NewFetcher builds a fetcher. A nil coin is replaced by a time-seeded one.
func NewFetcher(delay time.Duration, coin Coin) *Fetcher {
	if coin == nil {
		coin = NewCoin(uint64(time.Now().UnixNano()))
	}
	return &Fetcher{Delay: delay, Coin: coin}
}

// Fetch waits out the latency and then either fails with ErrFetchFailed or
// returns the upstream balance.
func (f *Fetcher) Fetch(ctx context.Context) (int64, error) {
	if err := f.Wait(ctx); err != nil {
		return 0, err
	}
	return f.Outcome()
}

// Outcome flips the coin without waiting. Callers that need the latency and
// the outcome in different critical sections call Wait and Outcome separately.
func (f *Fetcher) Outcome() (int64, error) {
	if !f.Coin.Flip() {
		return 0, ErrFetchFailed
	}
	return InitialBalance, nil
}

// Wait sleeps for the configured delay unless ctx ends first.
func (f *Fetcher) Wait(ctx context.Context) error {
	return Sleep(ctx, f.Delay)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
