package wallet

import (
	"context"
	"time"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/isolation"
	"github.com/congo-pay/walletrace/internal/upstream"
)

// DefaultDomain is the shared domain global-actor wallets enroll in.
const DefaultDomain = "bank"

// GlobalActorService routes only Deposit through a shared executor. Any
// number of instances may share the domain; their deposits are mutually
// exclusive. Withdraw, FetchBalance, Reset and Balance touch the balance
// directly, so a withdrawal can still lose an update against a deposit.
type GlobalActorService struct {
	store   *balance.Store
	fetcher *upstream.Fetcher
	latency time.Duration
	domain  *isolation.Executor
}

// NewGlobalActorService builds a wallet enrolled in domain. A nil domain
// means isolation.Default's DefaultDomain.
func NewGlobalActorService(store *balance.Store, fetcher *upstream.Fetcher, latency time.Duration, domain *isolation.Executor) *GlobalActorService {
	if domain == nil {
		domain = isolation.Default.Domain(DefaultDomain)
	}
	return &GlobalActorService{
		store:   store,
		fetcher: newFetcher(fetcher),
		latency: latency,
		domain:  domain,
	}
}

// Variant implements Service.
func (s *GlobalActorService) Variant() Variant {
	return VariantGlobalActor
}

// Deposit adds amount inside the shared domain.
func (s *GlobalActorService) Deposit(ctx context.Context, amount int64) (int64, error) {
	if err := upstream.Sleep(ctx, s.latency); err != nil {
		return 0, err
	}
	return isolation.Call(ctx, s.domain, func() (int64, error) {
		return readModifyWrite(ctx, s.store, amount, nil)
	})
}

// Withdraw subtracts amount outside the domain.
func (s *GlobalActorService) Withdraw(ctx context.Context, amount int64) (int64, error) {
	return readModifyWrite(ctx, s.store, -amount, nil)
}

// FetchBalance has the same outcome rules as ActorService.FetchBalance but
// runs outside the domain.
func (s *GlobalActorService) FetchBalance(ctx context.Context) (Balance, error) {
	v, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return balance.Unknown, err
	}
	return initializeIfAbsent(ctx, s.store, v)
}

// Reset zeroes the balance and then runs a fetch whose result is discarded.
func (s *GlobalActorService) Reset(ctx context.Context) error {
	if err := s.store.Set(ctx, balance.Of(0)); err != nil {
		return err
	}
	_, _ = s.FetchBalance(ctx)
	return nil
}

// Balance reads the balance without entering the domain.
func (s *GlobalActorService) Balance(_ context.Context) (Balance, error) {
	return s.store.Get(), nil
}
