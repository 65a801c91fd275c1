// Package driver issues bursts of concurrent wallet operations and reports
// how many updates survived.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/walletrace/internal/balance"
)

// Op selects which wallet operation a burst issues.
type Op string

const (
	OpDeposit  Op = "deposit"
	OpWithdraw Op = "withdraw"
	// OpMixed alternates deposits and withdrawals, starting with a deposit.
	OpMixed Op = "mixed"
)

// Default burst shape: 4 workers making 100 deposits of 10 each.
const (
	DefaultWorkers   = 4
	DefaultPerWorker = 100
	DefaultAmount    = 10

	// MaxCalls caps Workers × PerWorker.
	MaxCalls = 100_000
)

// ErrInvalidPlan is returned for plans that cannot be run.
var ErrInvalidPlan = errors.New("invalid burst plan")

// Target is the wallet a burst runs against.
type Target interface {
	Deposit(ctx context.Context, amount int64) error
	Withdraw(ctx context.Context, amount int64) error
	Current(ctx context.Context) (balance.Amount, error)
}

// Plan describes a burst. Zero fields take the defaults. Timeout bounds how
// long the burst waits for outstanding calls once every call is queued;
// calls still running after it are cancelled.
type Plan struct {
	Workers   int           `json:"workers"`
	PerWorker int           `json:"per_worker"`
	Amount    int64         `json:"amount"`
	Op        Op            `json:"op"`
	Timeout   time.Duration `json:"timeout"`
}

// WithDefaults fills zero fields.
func (p Plan) WithDefaults() Plan {
	if p.Workers == 0 {
		p.Workers = DefaultWorkers
	}
	if p.PerWorker == 0 {
		p.PerWorker = DefaultPerWorker
	}
	if p.Amount == 0 {
		p.Amount = DefaultAmount
	}
	if p.Op == "" {
		p.Op = OpDeposit
	}
	return p
}

// Validate reports whether the plan can run.
func (p Plan) Validate() error {
	switch {
	case p.Workers < 1 || p.PerWorker < 1:
		return fmt.Errorf("%w: workers and per_worker must be positive", ErrInvalidPlan)
	case p.Workers*p.PerWorker > MaxCalls:
		return fmt.Errorf("%w: at most %d calls per burst", ErrInvalidPlan, MaxCalls)
	case p.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPlan)
	case p.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidPlan)
	}
	switch p.Op {
	case OpDeposit, OpWithdraw, OpMixed:
		return nil
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidPlan, p.Op)
	}
}

// delta returns the signed amount of call i.
func (p Plan) delta(i int) int64 {
	switch p.Op {
	case OpWithdraw:
		return -p.Amount
	case OpMixed:
		if i%2 == 1 {
			return -p.Amount
		}
	}
	return p.Amount
}

// Result summarizes a burst. Expected is Start plus the net of the successful
// calls; Lost is how far Final falls short of it. Both stay zero when the
// wallet had no balance to start from.
type Result struct {
	ID        uuid.UUID      `json:"id"`
	Plan      Plan           `json:"plan"`
	Requested int            `json:"requested"`
	Succeeded int64          `json:"succeeded"`
	Failed    int64          `json:"failed"`
	Start     balance.Amount `json:"start"`
	Final     balance.Amount `json:"final"`
	Expected  balance.Amount `json:"expected"`
	Lost      int64          `json:"lost"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Burst runs plan against t on a pool of plan.Workers goroutines and waits for
// every call to finish. Each call is cancelled when ctx ends or when the pool
// gives up waiting after plan.Timeout.
func Burst(ctx context.Context, t Target, plan Plan, logger *slog.Logger) (Result, error) {
	plan = plan.WithDefaults()
	if err := plan.Validate(); err != nil {
		return Result{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	res := Result{ID: uuid.New(), Plan: plan, Requested: plan.Workers * plan.PerWorker}
	logger = logger.With(slog.String("burst_id", res.ID.String()), slog.String("op", string(plan.Op)))

	start, err := t.Current(ctx)
	if err != nil {
		return res, fmt.Errorf("read starting balance: %w", err)
	}
	res.Start = start

	pool := NewPool(PoolConfig{
		Workers:         plan.Workers,
		QueueSize:       res.Requested,
		ShutdownTimeout: plan.Timeout,
		Logger:          logger,
	})
	var applied atomic.Int64
	began := time.Now()

	var submitErr error
	for i := 0; i < res.Requested; i++ {
		d := plan.delta(i)
		job := func(poolCtx context.Context) error {
			callCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			stop := context.AfterFunc(poolCtx, cancel)
			defer stop()

			var err error
			if d > 0 {
				err = t.Deposit(callCtx, d)
			} else {
				err = t.Withdraw(callCtx, -d)
			}
			if err == nil {
				applied.Add(d)
			}
			return err
		}
		if submitErr = pool.Submit(ctx, job); submitErr != nil {
			break
		}
	}
	if err := pool.Shutdown(); err != nil && submitErr == nil {
		submitErr = err
	}
	res.Duration = time.Since(began)

	m := pool.Metrics()
	res.Succeeded = m.Succeeded
	res.Failed = int64(res.Requested) - m.Succeeded

	final, err := t.Current(ctx)
	if err != nil {
		return res, errors.Join(submitErr, fmt.Errorf("read final balance: %w", err))
	}
	res.Final = final
	if start.Known && final.Known {
		res.Expected = balance.Of(start.Value + applied.Load())
		res.Lost = res.Expected.Value - final.Value
	}

	logger.InfoContext(ctx, "burst finished",
		slog.Int("requested", res.Requested),
		slog.Int64("succeeded", res.Succeeded),
		slog.Int64("failed", res.Failed),
		slog.String("start", res.Start.String()),
		slog.String("final", res.Final.String()),
		slog.Int64("lost", res.Lost),
		slog.Duration("duration", res.Duration),
	)
	return res, submitErr
}
