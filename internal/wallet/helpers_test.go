package wallet

import (
	"context"
	"testing"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/upstream"
)

func newStore(t *testing.T, initial balance.Amount) *balance.Store {
	t.Helper()
	s := balance.NewStore(balance.NewMemoryKV(), "wallet:test")
	if err := s.Set(context.Background(), initial); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

func alwaysUp() *upstream.Fetcher {
	return upstream.NewFetcher(0, upstream.Fixed(true))
}

func alwaysDown() *upstream.Fetcher {
	return upstream.NewFetcher(0, upstream.Fixed(false))
}
