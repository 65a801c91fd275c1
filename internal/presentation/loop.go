package presentation

import (
	"context"

	"github.com/congo-pay/walletrace/internal/isolation"
)

// Loop is the presentation context: closures passed to Run execute one at a
// time on a single goroutine, in submission order per caller.
type Loop struct {
	exec *isolation.Executor
}

// NewLoop starts a presentation loop.
func NewLoop() *Loop {
	return &Loop{exec: isolation.NewExecutor("presentation")}
}

// Run executes fn on the loop and waits for it.
func (l *Loop) Run(ctx context.Context, fn func()) error {
	return l.exec.Do(ctx, fn)
}

// Close stops the loop.
func (l *Loop) Close() {
	l.exec.Close()
}
