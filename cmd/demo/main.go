// Command demo runs the default payment burst against every wallet variant
// in process and logs how many updates each one lost.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/congo-pay/walletrace/internal/config"
	"github.com/congo-pay/walletrace/internal/driver"
	"github.com/congo-pay/walletrace/internal/isolation"
	"github.com/congo-pay/walletrace/internal/logging"
	"github.com/congo-pay/walletrace/internal/presentation"
	"github.com/congo-pay/walletrace/internal/upstream"
	"github.com/congo-pay/walletrace/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var coin upstream.Coin
	if cfg.FetchSeed != 0 {
		coin = upstream.NewCoin(cfg.FetchSeed)
	}
	defer isolation.Default.Close()

	policy := wallet.DefaultRetryPolicy()
	bank, err := wallet.NewBank(ctx, wallet.BankConfig{
		Fetcher:       upstream.NewFetcher(cfg.InternetSpeed, coin),
		RaceFetcher:   upstream.NewFetcher(cfg.RaceFetchDelay, coin),
		InternetSpeed: cfg.InternetSpeed,
		Domain:        isolation.Default.Domain(cfg.GlobalDomain),
		Presenter:     presentation.NewLoggerPresenter(logger),
		Logger:        logger,
		Retry:         &policy,
	})
	if err != nil {
		return err
	}
	defer bank.Close()

	for _, v := range wallet.Variants {
		s, err := bank.Session(v)
		if err != nil {
			return err
		}
		if _, err := s.Refresh(ctx); err != nil {
			return fmt.Errorf("initialize %s wallet: %w", v, err)
		}
		res, err := s.Burst(ctx, driver.Plan{})
		if err != nil {
			return fmt.Errorf("burst %s wallet: %w", v, err)
		}
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		logger.Info("variant finished",
			slog.String("variant", string(v)),
			slog.Int("calls", res.Requested),
			slog.String("expected", res.Expected.String()),
			slog.String("final", res.Final.String()),
			slog.Int64("lost", res.Lost),
			slog.Int("transactions", snap.TransactionCount),
			slog.Duration("took", res.Duration),
		)
	}
	return nil
}
