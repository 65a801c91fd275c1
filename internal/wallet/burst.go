package wallet

import (
	"context"
	"log/slog"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/driver"
)

// sessionTarget lets the driver run bursts through a session, so each call
// updates the session's counter and is presented like any other.
type sessionTarget struct {
	s *Session
}

func (t sessionTarget) Deposit(ctx context.Context, amount int64) error {
	_, err := t.s.Deposit(ctx, amount)
	return err
}

func (t sessionTarget) Withdraw(ctx context.Context, amount int64) error {
	_, err := t.s.Withdraw(ctx, amount)
	return err
}

func (t sessionTarget) Current(ctx context.Context) (balance.Amount, error) {
	return t.s.Current(ctx)
}

// Burst runs plan concurrently against the session.
func (s *Session) Burst(ctx context.Context, plan driver.Plan) (driver.Result, error) {
	return driver.Burst(ctx, sessionTarget{s: s}, plan, s.logger.With(slog.String("component", "burst")))
}
