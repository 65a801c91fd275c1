package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletrace/internal/balance"
	"github.com/congo-pay/walletrace/internal/config"
	"github.com/congo-pay/walletrace/internal/infra"
	"github.com/congo-pay/walletrace/internal/isolation"
	"github.com/congo-pay/walletrace/internal/logging"
	"github.com/congo-pay/walletrace/internal/presentation"
	"github.com/congo-pay/walletrace/internal/routes"
	"github.com/congo-pay/walletrace/internal/server"
	"github.com/congo-pay/walletrace/internal/upstream"
	"github.com/congo-pay/walletrace/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With(slog.String("app", cfg.AppName))
	slog.SetDefault(logger)

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	presenters := presentation.Fanout{presentation.NewLoggerPresenter(logger)}
	var broker *infra.Broker
	if cfg.AMQPURL != "" {
		broker, err = infra.NewAMQPBroker(ctx, cfg.AMQPURL, cfg.AppName+"_snapshots")
		if err != nil {
			// Snapshots are still logged without a broker.
			logger.Warn("connect amqp, snapshots will not be published", "error", err)
		} else {
			defer func() {
				if err := broker.Close(); err != nil {
					logger.Warn("close amqp", "error", err)
				}
			}()
			if err := presentation.DeclareExchange(broker.Channel, presentation.SnapshotExchange); err != nil {
				logger.Error("declare exchange", "error", err)
				os.Exit(1)
			}
			presenters = append(presenters, presentation.NewAMQPPresenter(broker.Channel, presentation.SnapshotExchange))
		}
	}

	kv, err := balanceKV(ctx, db, cache)
	if err != nil {
		logger.Error("prepare balance store", "error", err)
		os.Exit(1)
	}

	var coin upstream.Coin
	if cfg.FetchSeed != 0 {
		coin = upstream.NewCoin(cfg.FetchSeed)
	}
	policy := wallet.DefaultRetryPolicy()
	defer isolation.Default.Close()

	bank, err := wallet.NewBank(ctx, wallet.BankConfig{
		KV:            kv,
		Fetcher:       upstream.NewFetcher(cfg.InternetSpeed, coin),
		RaceFetcher:   upstream.NewFetcher(cfg.RaceFetchDelay, coin),
		InternetSpeed: cfg.InternetSpeed,
		Domain:        isolation.Default.Domain(cfg.GlobalDomain),
		Presenter:     presenters,
		Logger:        logger,
		Retry:         &policy,
	})
	if err != nil {
		logger.Error("open wallets", "error", err)
		os.Exit(1)
	}
	defer bank.Close()

	srv, err := server.New(routes.Deps{Cfg: cfg, DB: db, Cache: cache, Broker: broker, Bank: bank, Logger: logger})
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

// balanceKV prefers Postgres, then Redis, then process memory.
func balanceKV(ctx context.Context, db *pgxpool.Pool, cache *redis.Client) (balance.KV, error) {
	switch {
	case db != nil:
		kv := balance.NewPostgresKV(db)
		if err := kv.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return kv, nil
	case cache != nil:
		return balance.NewRedisKV(cache), nil
	default:
		return balance.NewMemoryKV(), nil
	}
}
