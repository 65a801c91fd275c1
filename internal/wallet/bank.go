package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/isolation"
	"github.com/congo-pay/walletrace/internal/presentation"
	"github.com/congo-pay/walletrace/internal/upstream"
)

// BankConfig describes how to build one session per variant.
type BankConfig struct {
	KV balance.KV
	// Fetcher serves the actor and global-actor wallets.
	Fetcher *upstream.Fetcher
	// RaceFetcher serves the race wallet, which historically fetched slower.
	RaceFetcher   *upstream.Fetcher
	InternetSpeed time.Duration
	// Domain is the shared executor global-actor deposits run on.
	Domain    *isolation.Executor
	Loop      *presentation.Loop
	Presenter presentation.Presenter
	Logger    *slog.Logger
	Retry     *RetryPolicy
	// Interleave overrides the race wallet's read/write hook.
	Interleave func()
}

// Bank holds the session of every variant.
type Bank struct {
	sessions map[Variant]*Session
	actor    *ActorService
	loop     *presentation.Loop
	ownsLoop bool
}

// NewBank opens the three wallets, loading any persisted balances.
func NewBank(ctx context.Context, cfg BankConfig) (*Bank, error) {
	if cfg.KV == nil {
		cfg.KV = balance.NewMemoryKV()
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = upstream.NewFetcher(cfg.InternetSpeed, nil)
	}
	if cfg.RaceFetcher == nil {
		cfg.RaceFetcher = cfg.Fetcher
	}
	b := &Bank{sessions: make(map[Variant]*Session, len(Variants))}
	if cfg.Loop == nil {
		cfg.Loop = presentation.NewLoop()
		b.ownsLoop = true
	}
	b.loop = cfg.Loop

	stores := make(map[Variant]*balance.Store, len(Variants))
	for _, v := range Variants {
		store, err := balance.Open(ctx, cfg.KV, v.StorageKey())
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open %s wallet: %w", v, err)
		}
		stores[v] = store
	}

	var raceOpts []RaceOption
	if cfg.Interleave != nil {
		raceOpts = append(raceOpts, WithInterleave(cfg.Interleave))
	}
	b.actor = NewActorService(stores[VariantActor], cfg.Fetcher, cfg.InternetSpeed)
	services := []Service{
		NewRaceService(stores[VariantRace], cfg.RaceFetcher, raceOpts...),
		b.actor,
		NewGlobalActorService(stores[VariantGlobalActor], cfg.Fetcher, cfg.InternetSpeed, cfg.Domain),
	}

	sessionCfg := SessionConfig{Loop: cfg.Loop, Presenter: cfg.Presenter, Logger: cfg.Logger, Retry: cfg.Retry}
	for _, svc := range services {
		b.sessions[svc.Variant()] = NewSession(svc, sessionCfg)
	}
	return b, nil
}

// Session returns the session of variant v.
func (b *Bank) Session(v Variant) (*Session, error) {
	s, ok := b.sessions[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	return s, nil
}

// Snapshots returns the state of every session in display order.
func (b *Bank) Snapshots(ctx context.Context) ([]Snapshot, error) {
	out := make([]Snapshot, 0, len(Variants))
	for _, v := range Variants {
		snap, err := b.sessions[v].Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// ResetAll resets every variant that supports it and returns their snapshots.
func (b *Bank) ResetAll(ctx context.Context) ([]Snapshot, error) {
	var (
		out  []Snapshot
		errs []error
	)
	for _, v := range Variants {
		s := b.sessions[v]
		if _, ok := s.Service().(Resetter); !ok {
			continue
		}
		snap, err := s.Reset(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("reset %s: %w", v, err))
			continue
		}
		out = append(out, snap)
	}
	return out, errors.Join(errs...)
}

// Close stops the executors the bank started.
func (b *Bank) Close() {
	if b.actor != nil {
		b.actor.Close()
	}
	if b.ownsLoop && b.loop != nil {
		b.loop.Close()
	}
}
