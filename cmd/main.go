package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"goldentrader/internal/backtest"
	"goldentrader/internal/config"
	"goldentrader/internal/db"
	"goldentrader/internal/exchange"
	"goldentrader/internal/livetrading"
	"goldentrader/internal/monitor"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Main | Received %s, shutting down", sig)
		cancel()
	}()

	storage := buildStorage(cfg)
	defer storage.Close()

	exch := buildExchange(cfg)

	switch cfg.Mode {
	case "backtest":
		runBacktest(ctx, cfg, storage, exch)
	case "live":
		runLive(ctx, cfg, storage, exch)
	default:
		log.Fatalf("Main | Unsupported mode: %s", cfg.Mode)
	}
}

func buildStorage(cfg config.Config) db.Storage {
	if cfg.DBConnStr == "" {
		log.Printf("Main | DB_CONN_STR not set, using in-memory storage")
		return db.NewMemory()
	}
	pg, err := db.NewPostgres(cfg.DBConnStr, cfg.DBMaxOpen, cfg.DBMaxIdle)
	if err != nil {
		log.Fatalf("Main | Failed to connect to postgres: %v", err)
	}
	log.Printf("Main | Connected to postgres")
	return pg
}

func buildExchange(cfg config.Config) exchange.Exchange {
	switch cfg.Exchange {
	case "wallex":
		return exchange.NewWallexExchange(cfg.WallexAPIKey)
	default:
		return exchange.NewBinanceExchange(cfg.BinanceAPIKey, cfg.BinanceSecretKey)
	}
}

func runBacktest(ctx context.Context, cfg config.Config, storage db.Storage, exch exchange.Exchange) {
	bt := backtest.New(cfg, storage, exch)
	res, err := bt.Run(ctx)
	if err != nil {
		log.Fatalf("Main | Backtest failed: %v", err)
	}
	res.PrintSummary()
	if err := res.SaveArtifacts("backtest_results"); err != nil {
		log.Fatalf("Main | Failed to save backtest artifacts: %v", err)
	}
	log.Printf("Main | Backtest artifacts written to backtest_results/")
}

func runLive(ctx context.Context, cfg config.Config, storage db.Storage, exch exchange.Exchange) {
	trader := livetrading.New(cfg, storage, exch)

	mon := monitor.New(trader.Ledger(), cfg.MonitorInterval, cfg.SnapshotDir, monitor.DefaultThresholds())
	go mon.Run(ctx)

	if err := trader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Main | Live trading stopped: %v", err)
	}
}
