// Package backtest replays historical candles through the trading
// engine against a simulated ledger.
package backtest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"goldentrader/internal/candle"
	"goldentrader/internal/config"
	"goldentrader/internal/db"
	"goldentrader/internal/engine"
	"goldentrader/internal/exchange"
	"goldentrader/internal/indicator"
	"goldentrader/internal/ledger"
	"goldentrader/internal/position"
	"goldentrader/internal/strategy"
)

const maxDownloadCandles = 1000

// Result bundles everything a finished run produced.
type Result struct {
	Stats       ledger.PerformanceStats
	Trades      []ledger.Trade
	EquityCurve []ledger.EquityPoint
}

type Backtester struct {
	cfg     config.Config
	storage db.Storage
	exch    exchange.Exchange
}

func New(cfg config.Config, storage db.Storage, exch exchange.Exchange) *Backtester {
	return &Backtester{cfg: cfg, storage: storage, exch: exch}
}

// Run loads candles for the configured window, replays them through the
// engine and force-closes any open position at the final close.
func (b *Backtester) Run(ctx context.Context) (*Result, error) {
	candles, err := b.loadCandles(ctx)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles available for %s %s in [%s, %s)",
			b.cfg.Symbol, b.cfg.Timeframe,
			b.cfg.BacktestFrom.Format("2006-01-02"), b.cfg.BacktestTo.Format("2006-01-02"))
	}
	log.Printf("Backtest | Running %s %s over %d candles", b.cfg.Symbol, b.cfg.Timeframe, len(candles))

	led := ledger.New(b.cfg.InitialBalance, b.cfg.AllocationFraction)
	strat := strategy.NewGoldenCross(b.cfg.ShortPeriod, b.cfg.LongPeriod)
	machine := position.NewStateMachine(led, b.cfg.StopLossPercent, b.cfg.TakeProfitPercent)
	exec := &engine.LedgerExecutor{Ledger: led}
	runner := engine.NewRunner(strat, machine, led, exec, indicator.DefaultParams(b.cfg.ShortPeriod, b.cfg.LongPeriod))

	if err := runner.Run(ctx, candles); err != nil {
		return nil, fmt.Errorf("backtest run: %w", err)
	}

	last := candles[len(candles)-1]
	if err := runner.CloseAll(ctx, last.Close, last.Timestamp); err != nil {
		return nil, fmt.Errorf("closing final position: %w", err)
	}

	res := &Result{
		Stats:       led.Stats(),
		Trades:      led.Trades(),
		EquityCurve: led.EquityCurve(),
	}

	for _, t := range res.Trades {
		if err := b.storage.SaveTrade(ctx, b.cfg.Symbol, t); err != nil {
			log.Printf("Backtest | Failed to persist trade: %v", err)
		}
	}
	return res, nil
}

// loadCandles prefers the local store and falls back to downloading
// from the exchange, persisting whatever it fetched.
func (b *Backtester) loadCandles(ctx context.Context) ([]candle.Candle, error) {
	candles, err := b.storage.GetCandles(ctx, b.cfg.Symbol, b.cfg.Timeframe, b.cfg.BacktestFrom, b.cfg.BacktestTo)
	if err != nil {
		return nil, fmt.Errorf("loading candles from storage: %w", err)
	}
	if len(candles) > 0 {
		log.Printf("Backtest | Loaded %d candles from storage", len(candles))
		return candles, nil
	}

	dur := candle.GetTimeframeDuration(b.cfg.Timeframe)
	if dur == 0 {
		return nil, fmt.Errorf("unsupported timeframe: %s", b.cfg.Timeframe)
	}
	count := int(b.cfg.BacktestTo.Sub(b.cfg.BacktestFrom) / dur)
	if count > maxDownloadCandles {
		count = maxDownloadCandles
	}
	if count <= 0 {
		return nil, fmt.Errorf("empty backtest window [%s, %s)", b.cfg.BacktestFrom, b.cfg.BacktestTo)
	}

	log.Printf("Backtest | No stored candles, downloading up to %d from %s", count, b.exch.Name())
	fetched, err := b.exch.FetchLatestCandles(ctx, b.cfg.Symbol, b.cfg.Timeframe, count)
	if err != nil {
		return nil, fmt.Errorf("downloading candles: %w", err)
	}
	if err := b.storage.SaveCandles(ctx, fetched); err != nil {
		log.Printf("Backtest | Failed to persist downloaded candles: %v", err)
	}

	filtered := make([]candle.Candle, 0, len(fetched))
	for _, c := range fetched {
		if !c.Timestamp.Before(b.cfg.BacktestFrom) && c.Timestamp.Before(b.cfg.BacktestTo) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// PrintSummary writes a human readable report to the log.
func (r *Result) PrintSummary() {
	s := r.Stats
	log.Printf("Backtest | ===== Results =====")
	log.Printf("Backtest | Total trades:   %d", s.TotalTrades)
	log.Printf("Backtest | Winning trades: %d", s.WinningTrades)
	log.Printf("Backtest | Losing trades:  %d", s.LosingTrades)
	log.Printf("Backtest | Win rate:       %.2f%%", s.WinRatePct)
	log.Printf("Backtest | Total return:   %.2f%%", s.TotalReturnPct)
	log.Printf("Backtest | Max drawdown:   %.2f%%", s.MaxDrawdownPct)
	log.Printf("Backtest | Sharpe ratio:   %.2f", s.SharpeRatio)
	log.Printf("Backtest | Profit factor:  %.2f", s.ProfitFactor)
}

// SaveArtifacts writes trades and the equity curve as CSV plus the
// stats as JSON into dir.
func (r *Result) SaveArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := r.saveTradesCSV(filepath.Join(dir, "trades.csv")); err != nil {
		return err
	}
	if err := r.saveEquityCSV(filepath.Join(dir, "equity_curve.csv")); err != nil {
		return err
	}
	return r.saveStatsJSON(filepath.Join(dir, "stats.json"))
}

func (r *Result) saveTradesCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "side", "price", "size", "amount", "realized_profit", "reason", "balance_after"}); err != nil {
		return err
	}
	for _, t := range r.Trades {
		rec := []string{
			t.Timestamp.Format(time.RFC3339),
			string(t.Side),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			strconv.FormatFloat(t.Size, 'f', -1, 64),
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			strconv.FormatFloat(t.RealizedProfit, 'f', -1, 64),
			t.Reason,
			strconv.FormatFloat(t.BalanceAfter, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Result) saveEquityCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "equity", "price"}); err != nil {
		return err
	}
	for _, p := range r.EquityCurve {
		rec := []string{
			p.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(p.Equity, 'f', -1, 64),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Result) saveStatsJSON(path string) error {
	data, err := json.MarshalIndent(r.Stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
