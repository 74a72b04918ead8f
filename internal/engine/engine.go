// Package engine
package engine

import (
	"context"
	"errors"
	"time"

	"goldentrader/internal/ledger"
	"goldentrader/internal/position"
)

// ErrInsufficientData signals that the candle window is shorter than the
// strategy warmup period. The runner evaluates no signals in that case
// and a backtest over such input reports zero-default stats.
var ErrInsufficientData = errors.New("insufficient candle data")

// Executor confirms and records decided trade intents. The backtest
// executor applies them straight to the ledger; the live executor
// submits a market order through the exchange gateway first and records
// the trade only after the order is confirmed.
type Executor interface {
	ExecuteBuy(ctx context.Context, intent position.Intent, ts time.Time) error
	ExecuteSell(ctx context.Context, intent position.Intent, ts time.Time) error
}

// LedgerExecutor applies intents directly to the ledger. Used by
// backtests, where no external confirmation exists.
type LedgerExecutor struct {
	Ledger *ledger.Ledger
}

func (e *LedgerExecutor) ExecuteBuy(_ context.Context, intent position.Intent, ts time.Time) error {
	_, err := e.Ledger.ApplyBuy(intent.Price, ts, intent.StopLoss, intent.TakeProfit)
	return err
}

func (e *LedgerExecutor) ExecuteSell(_ context.Context, intent position.Intent, ts time.Time) error {
	_, err := e.Ledger.ApplySell(intent.Price, ts, intent.Reason)
	return err
}
