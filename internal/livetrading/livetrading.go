// Package livetrading drives the trading engine from freshly fetched
// candles on a fixed interval. All ledger writes happen on the tick
// goroutine; monitoring only reads.
package livetrading

import (
	"context"
	"fmt"
	"log"
	"time"

	"goldentrader/internal/config"
	"goldentrader/internal/db"
	"goldentrader/internal/engine"
	"goldentrader/internal/exchange"
	"goldentrader/internal/indicator"
	"goldentrader/internal/ledger"
	"goldentrader/internal/position"
	"goldentrader/internal/strategy"
)

// LiveExecutor submits market orders to the exchange and records a
// trade in the ledger only after the order went through.
type LiveExecutor struct {
	Exchange   exchange.Exchange
	Ledger     *ledger.Ledger
	Symbol     string
	Allocation float64
}

func (e *LiveExecutor) ExecuteBuy(ctx context.Context, intent position.Intent, ts time.Time) error {
	quote := exchange.QuoteAsset(e.Symbol)
	free, err := e.Exchange.FetchFreeBalance(ctx, quote)
	if err != nil {
		return fmt.Errorf("fetching %s balance: %w", quote, err)
	}

	amount := e.Ledger.Balance() * e.Allocation
	if free < amount {
		return fmt.Errorf("insufficient %s balance on %s: have %.2f, need %.2f",
			quote, e.Exchange.Name(), free, amount)
	}

	quantity := amount / intent.Price
	res, err := e.Exchange.SubmitMarketOrder(ctx, e.Symbol, "BUY", quantity)
	if err != nil {
		return fmt.Errorf("submitting buy order: %w", err)
	}

	price := intent.Price
	if res.AvgPrice > 0 {
		price = res.AvgPrice
	}
	log.Printf("LiveExecutor | Buy filled: order=%s qty=%.8f price=%.2f", res.OrderID, res.FilledQty, price)

	_, err = e.Ledger.ApplyBuy(price, ts, intent.StopLoss, intent.TakeProfit)
	return err
}

func (e *LiveExecutor) ExecuteSell(ctx context.Context, intent position.Intent, ts time.Time) error {
	pos := e.Ledger.Position()
	if pos.Side != ledger.Long {
		return ledger.ErrInvalidTransition
	}

	res, err := e.Exchange.SubmitMarketOrder(ctx, e.Symbol, "SELL", pos.Size)
	if err != nil {
		return fmt.Errorf("submitting sell order: %w", err)
	}

	price := intent.Price
	if res.AvgPrice > 0 {
		price = res.AvgPrice
	}
	log.Printf("LiveExecutor | Sell filled: order=%s qty=%.8f price=%.2f reason=%s", res.OrderID, res.FilledQty, price, intent.Reason)

	_, err = e.Ledger.ApplySell(price, ts, intent.Reason)
	return err
}

type Trader struct {
	cfg     config.Config
	storage db.Storage
	exch    exchange.Exchange
	led     *ledger.Ledger
	runner  *engine.Runner

	persistedTrades int
}

func New(cfg config.Config, storage db.Storage, exch exchange.Exchange) *Trader {
	led := ledger.New(cfg.InitialBalance, cfg.AllocationFraction)
	strat := strategy.NewGoldenCross(cfg.ShortPeriod, cfg.LongPeriod)
	machine := position.NewStateMachine(led, cfg.StopLossPercent, cfg.TakeProfitPercent)
	exec := &LiveExecutor{
		Exchange:   exch,
		Ledger:     led,
		Symbol:     cfg.Symbol,
		Allocation: cfg.AllocationFraction,
	}
	runner := engine.NewRunner(strat, machine, led, exec, indicator.DefaultParams(cfg.ShortPeriod, cfg.LongPeriod))
	return &Trader{cfg: cfg, storage: storage, exch: exch, led: led, runner: runner}
}

// Ledger exposes the live ledger for read-only monitoring.
func (t *Trader) Ledger() *ledger.Ledger { return t.led }

// Run ticks until the context is cancelled. Exchange failures skip the
// tick; the loop keeps going.
func (t *Trader) Run(ctx context.Context) error {
	log.Printf("LiveTrader | Starting %s %s on %s, checking every %s",
		t.cfg.Symbol, t.cfg.Timeframe, t.exch.Name(), t.cfg.TickInterval)

	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("LiveTrader | Shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := t.tick(ctx); err != nil {
				if exchange.IsGatewayError(err) {
					log.Printf("LiveTrader | Exchange unavailable, skipping tick: %v", err)
					continue
				}
				log.Printf("LiveTrader | Tick failed: %v", err)
			}
		}
	}
}

func (t *Trader) tick(ctx context.Context) error {
	candles, err := t.exch.FetchLatestCandles(ctx, t.cfg.Symbol, t.cfg.Timeframe, t.cfg.CandleWindow)
	if err != nil {
		return err
	}
	if err := t.storage.SaveCandles(ctx, candles); err != nil {
		log.Printf("LiveTrader | Failed to persist candles: %v", err)
	}

	if err := t.runner.ProcessLatest(ctx, candles); err != nil {
		return err
	}
	t.persistNewTrades(ctx)
	return nil
}

func (t *Trader) persistNewTrades(ctx context.Context) {
	trades := t.led.Trades()
	for _, tr := range trades[t.persistedTrades:] {
		if err := t.storage.SaveTrade(ctx, t.cfg.Symbol, tr); err != nil {
			log.Printf("LiveTrader | Failed to persist trade: %v", err)
			return
		}
		t.persistedTrades++
	}
}
