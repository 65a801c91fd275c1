package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/logging"
	"github.com/congo-pay/walletrace/internal/presentation"
)

// Snapshot is the presentation state of a session.
type Snapshot = presentation.Snapshot

// Session is the caller-facing side of a wallet: it remembers the last
// balance it saw, counts successful deposits and flags in-flight refreshes.
// Session state only changes on the presentation loop, and every change is
// handed to the presenter from there.
type Session struct {
	svc       Service
	loop      *presentation.Loop
	presenter presentation.Presenter
	logger    *slog.Logger
	retry     *RetryPolicy

	// owned by loop
	balance      Balance
	transactions int
	loading      bool
}

// SessionConfig collects the collaborators of a Session.
type SessionConfig struct {
	Loop      *presentation.Loop
	Presenter presentation.Presenter
	Logger    *slog.Logger
	// Retry, when set, makes Refresh and DepositOrInit retry transient
	// failures. Without it a failed fetch is reported once and dropped.
	Retry *RetryPolicy
}

// NewSession wraps svc.
func NewSession(svc Service, cfg SessionConfig) *Session {
	if cfg.Loop == nil {
		cfg.Loop = presentation.NewLoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{
		svc:       svc,
		loop:      cfg.Loop,
		presenter: cfg.Presenter,
		logger:    cfg.Logger.With(slog.String("variant", string(svc.Variant()))),
		retry:     cfg.Retry,
	}
}

// Variant returns the wrapped service's variant.
func (s *Session) Variant() Variant {
	return s.svc.Variant()
}

// Service exposes the wrapped service.
func (s *Session) Service() Service {
	return s.svc
}

// Deposit adds amount and records the resulting balance.
func (s *Session) Deposit(ctx context.Context, amount int64) (Snapshot, error) {
	v, err := s.svc.Deposit(ctx, amount)
	if err != nil {
		s.logger.WarnContext(ctx, "deposit failed", append(logging.Attrs(ctx), slog.Int64("amount", amount), slog.Any("error", err))...)
		return s.failed(ctx, err)
	}
	return s.update(ctx, func() {
		if s.svc.Variant().CountsTransactions() {
			s.transactions++
		}
		s.balance = balance.Of(v)
	})
}

// DepositOrInit deposits and, when the wallet has no balance yet, fetches one
// and tries the deposit again.
func (s *Session) DepositOrInit(ctx context.Context, amount int64) (Snapshot, error) {
	policy := DefaultRetryPolicy()
	if s.retry != nil {
		policy = *s.retry
	}
	v, err := DepositWithInit(ctx, s.svc, amount, policy)
	if err != nil {
		s.logger.WarnContext(ctx, "deposit with init failed", append(logging.Attrs(ctx), slog.Int64("amount", amount), slog.Any("error", err))...)
		return s.failed(ctx, err)
	}
	return s.update(ctx, func() {
		if s.svc.Variant().CountsTransactions() {
			s.transactions++
		}
		s.balance = balance.Of(v)
	})
}

// Withdraw subtracts amount and records the resulting balance.
func (s *Session) Withdraw(ctx context.Context, amount int64) (Snapshot, error) {
	v, err := s.svc.Withdraw(ctx, amount)
	if err != nil {
		s.logger.WarnContext(ctx, "withdraw failed", append(logging.Attrs(ctx), slog.Int64("amount", amount), slog.Any("error", err))...)
		return s.failed(ctx, err)
	}
	return s.update(ctx, func() { s.balance = balance.Of(v) })
}

// Refresh fetches the balance from upstream. While the fetch is in flight the
// session reports loading, and a failed fetch leaves the balance unknown.
// The race variant has no loading state and keeps its balance on failure.
func (s *Session) Refresh(ctx context.Context) (Snapshot, error) {
	tracksLoading := s.svc.Variant().TracksLoading()
	if tracksLoading {
		if _, err := s.update(ctx, func() { s.loading = true }); err != nil {
			return Snapshot{}, err
		}
	}

	var (
		fetched Balance
		err     error
	)
	if s.retry != nil {
		fetched, err = FetchWithRetry(ctx, s.svc, *s.retry)
	} else {
		fetched, err = s.svc.FetchBalance(ctx)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "fetch balance failed", append(logging.Attrs(ctx), slog.Any("error", err))...)
		if !tracksLoading {
			return s.failed(ctx, err)
		}
		snap, updErr := s.update(ctx, func() {
			s.balance = balance.Unknown
			s.loading = false
		})
		if updErr != nil {
			return snap, updErr
		}
		return snap, err
	}

	s.logger.DebugContext(ctx, "fetch balance succeeded", append(logging.Attrs(ctx), slog.String("balance", fetched.String()))...)
	return s.update(ctx, func() {
		s.balance = fetched
		s.loading = false
	})
}

// Reset resets the wallet and then re-reads it: the transaction counter goes
// back to zero and the balance is whatever the service now holds.
func (s *Session) Reset(ctx context.Context) (Snapshot, error) {
	r, ok := s.svc.(Resetter)
	if !ok {
		return s.failed(ctx, ErrResetUnsupported)
	}
	if err := r.Reset(ctx); err != nil {
		s.logger.WarnContext(ctx, "reset failed", append(logging.Attrs(ctx), slog.Any("error", err))...)
		return s.failed(ctx, err)
	}
	current, err := s.svc.Balance(ctx)
	if err != nil {
		return s.failed(ctx, err)
	}
	return s.update(ctx, func() {
		s.transactions = 0
		s.balance = current
	})
}

// Current returns the balance the service holds right now, which may differ
// from the last balance the session recorded.
func (s *Session) Current(ctx context.Context) (Balance, error) {
	return s.svc.Balance(ctx)
}

// Snapshot returns the session state without changing it.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.loop.Run(context.WithoutCancel(ctx), func() { snap = s.snapshotLocked() })
	return snap, err
}

func (s *Session) failed(ctx context.Context, err error) (Snapshot, error) {
	snap, snapErr := s.Snapshot(ctx)
	if snapErr != nil {
		return snap, snapErr
	}
	return snap, err
}

// update applies fn on the loop and presents the resulting state there too,
// so presenters see snapshots in the order the state changed. The hand-off
// ignores cancellation of ctx so a decided state change is always recorded.
func (s *Session) update(ctx context.Context, fn func()) (Snapshot, error) {
	var snap Snapshot
	err := s.loop.Run(context.WithoutCancel(ctx), func() {
		fn()
		snap = s.snapshotLocked()
		if s.presenter == nil {
			return
		}
		if err := s.presenter.Present(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "present snapshot", append(logging.Attrs(ctx), slog.Any("error", err))...)
		}
	})
	return snap, err
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:               uuid.NewString(),
		Variant:          string(s.svc.Variant()),
		Balance:          s.balance,
		TransactionCount: s.transactions,
		IsLoading:        s.loading,
		At:               time.Now().UTC(),
	}
}
