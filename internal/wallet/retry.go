package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of transient upstream failures.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
}

// DefaultRetryPolicy retries five times starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxRetries:      5,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// FetchWithRetry fetches the balance, retrying ErrFetchFailed with
// exponential backoff. Other errors stop immediately.
func FetchWithRetry(ctx context.Context, svc Service, p RetryPolicy) (Balance, error) {
	var out Balance
	op := func() error {
		b, err := svc.FetchBalance(ctx)
		if err != nil {
			if errors.Is(err, ErrFetchFailed) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = b
		return nil
	}
	if err := backoff.Retry(op, p.backOff(ctx)); err != nil {
		return Balance{}, err
	}
	return out, nil
}

// DepositWithInit deposits amount. When the wallet has no balance yet it
// fetches one (with retries) and deposits again.
func DepositWithInit(ctx context.Context, svc Service, amount int64, p RetryPolicy) (int64, error) {
	v, err := svc.Deposit(ctx, amount)
	if !errors.Is(err, ErrNoWallet) {
		return v, err
	}
	if _, err := FetchWithRetry(ctx, svc, p); err != nil {
		return 0, err
	}
	return svc.Deposit(ctx, amount)
}
