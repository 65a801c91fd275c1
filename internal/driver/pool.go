package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Job is one unit of work. It receives the pool's context, which is cancelled
// if Shutdown gives up waiting.
type Job func(ctx context.Context) error

// PoolConfig holds pool construction parameters.
type PoolConfig struct {
	// Workers is the number of goroutines consuming jobs.
	Workers int
	// QueueSize is the capacity of the job channel. Zero makes Submit block
	// until a worker is free.
	QueueSize int
	// ShutdownTimeout bounds how long Shutdown waits before cancelling
	// in-flight jobs. Defaults to 30s.
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Metrics is a point-in-time copy of the pool counters.
type Metrics struct {
	Submitted int64 `json:"submitted"`
	Started   int64 `json:"started"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// Sentinel errors returned by the pool.
var (
	ErrPoolClosed      = errors.New("worker pool is closed")
	ErrShutdownTimeout = errors.New("shutdown timeout elapsed; workers were cancelled")
)

// Pool is a fixed-size worker pool.
type Pool struct {
	cfg  PoolConfig
	jobs chan Job
	wg   sync.WaitGroup

	workerCtx     context.Context
	cancelWorkers context.CancelFunc

	submitted atomic.Int64
	started   atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	mu     sync.RWMutex // guards closed against concurrent Submit
	closed bool
	once   sync.Once
}

// NewPool starts cfg.Workers goroutines that run until Shutdown.
func NewPool(cfg PoolConfig) *Pool {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:           cfg,
		jobs:          make(chan Job, cfg.QueueSize),
		workerCtx:     ctx,
		cancelWorkers: cancel,
	}
	cfg.Logger.Debug("pool starting",
		slog.Int("workers", cfg.Workers),
		slog.Int("queue", cfg.QueueSize),
		slog.Duration("shutdown_timeout", cfg.ShutdownTimeout),
	)
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	return p
}

// Submit enqueues job, blocking while the queue is full. It fails with
// ErrPoolClosed after Shutdown, or with ctx's error if ctx ends first.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.dropped.Add(1)
		return ErrPoolClosed
	}
	p.submitted.Add(1)
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		p.dropped.Add(1)
		return fmt.Errorf("submit cancelled: %w", ctx.Err())
	}
}

// Shutdown stops accepting jobs, drains the queue and waits for the workers.
// If that takes longer than ShutdownTimeout the workers' context is cancelled
// and ErrShutdownTimeout is returned. Later calls are no-ops.
func (p *Pool) Shutdown() error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		timer := time.NewTimer(p.cfg.ShutdownTimeout)
		defer timer.Stop()
		select {
		case <-done:
			p.cfg.Logger.Debug("pool stopped")
		case <-timer.C:
			p.cfg.Logger.Warn("pool shutdown timed out, cancelling workers",
				slog.Duration("shutdown_timeout", p.cfg.ShutdownTimeout))
			p.cancelWorkers()
			<-done
			err = ErrShutdownTimeout
		}
		p.cancelWorkers()
	})
	return err
}

// Metrics returns the current counters. Fields are read independently.
func (p *Pool) Metrics() Metrics {
	return Metrics{
		Submitted: p.submitted.Load(),
		Started:   p.started.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		if p.workerCtx.Err() != nil {
			p.failed.Add(1)
			continue
		}
		p.started.Add(1)
		if err := job(p.workerCtx); err != nil {
			p.failed.Add(1)
			p.cfg.Logger.Debug("job failed", slog.Int("worker", id), slog.Any("error", err))
			continue
		}
		p.succeeded.Add(1)
	}
}
