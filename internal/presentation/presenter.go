package presentation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Presenter receives snapshots. Implementations are called from the Loop.
type Presenter interface {
	Present(ctx context.Context, snapshot Snapshot) error
}

// LoggerPresenter writes snapshots to the structured logger.
type LoggerPresenter struct {
	logger *slog.Logger
}

// NewLoggerPresenter constructs a logging presenter.
func NewLoggerPresenter(logger *slog.Logger) *LoggerPresenter {
	return &LoggerPresenter{logger: logger}
}

// Present logs the snapshot at debug level.
func (p *LoggerPresenter) Present(ctx context.Context, s Snapshot) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.DebugContext(ctx, "wallet snapshot",
		slog.String("variant", s.Variant),
		slog.String("balance", s.Balance.String()),
		slog.Int("transaction_count", s.TransactionCount),
		slog.Bool("is_loading", s.IsLoading),
	)
	return nil
}

// Fanout forwards every snapshot to each presenter and joins their errors.
type Fanout []Presenter

// Present implements Presenter.
func (f Fanout) Present(ctx context.Context, s Snapshot) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Present(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every snapshot it receives. Useful for tests.
type Recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

// Present implements Presenter.
func (r *Recorder) Present(_ context.Context, s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
	return nil
}

// Snapshots returns a copy of what was recorded.
func (r *Recorder) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Snapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

// Last returns the most recent snapshot.
func (r *Recorder) Last() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return Snapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}
