package engine

import (
	"context"
	"fmt"
	"time"

	"goldentrader/internal/candle"
	"goldentrader/internal/indicator"
	"goldentrader/internal/ledger"
	"goldentrader/internal/position"
	"goldentrader/internal/strategy"
)

// Runner drives one candle through the decision pipeline: signal engine,
// position state machine, executor, equity recording. The same per-candle
// step serves the backtest replay (Run) and the live engine
// (ProcessLatest); neither caller is special-cased.
type Runner struct {
	strat   strategy.Engine
	machine *position.StateMachine
	ledger  LedgerRecorder
	exec    Executor
	params  indicator.Params
}

// LedgerRecorder is the slice of the ledger the runner needs directly:
// equity recording and the read-only position view. Trades go through
// the Executor.
type LedgerRecorder interface {
	RecordEquityPoint(price float64, ts time.Time)
	Position() ledger.Position
}

// NewRunner wires a runner. The executor decides whether trades are
// simulated (backtest) or confirmed against an exchange (live).
func NewRunner(strat strategy.Engine, machine *position.StateMachine, led LedgerRecorder, exec Executor, params indicator.Params) *Runner {
	return &Runner{
		strat:   strat,
		machine: machine,
		ledger:  led,
		exec:    exec,
		params:  params,
	}
}

// Run replays a full candle sequence, starting at the warmup index.
// Candles must be ordered by strictly increasing timestamp. Returns
// ErrInsufficientData when the sequence is shorter than the warmup
// period; no signal is evaluated in that case.
func (r *Runner) Run(ctx context.Context, candles []candle.Candle) error {
	warmup := r.strat.WarmupPeriod()
	if len(candles) < warmup {
		return fmt.Errorf("%w: have %d candles, need %d", ErrInsufficientData, len(candles), warmup)
	}
	if err := candle.ValidateSequence(candles); err != nil {
		return fmt.Errorf("Run | invalid candle sequence: %w", err)
	}

	sets := indicator.Compute(candles, r.params)

	for i := warmup; i < len(candles); i++ {
		if err := r.step(ctx, candles[i], sets[i], sets[i-1]); err != nil {
			return err
		}
	}
	return nil
}

// ProcessLatest runs the per-candle step for the newest candle of a
// fetched window. The window must cover at least the warmup period plus
// one candle of lookback; indicators are recomputed over the whole
// window so no partial state survives a restart.
func (r *Runner) ProcessLatest(ctx context.Context, candles []candle.Candle) error {
	warmup := r.strat.WarmupPeriod()
	if len(candles) <= warmup {
		return fmt.Errorf("%w: have %d candles, need more than %d", ErrInsufficientData, len(candles), warmup)
	}
	if err := candle.ValidateSequence(candles); err != nil {
		return fmt.Errorf("ProcessLatest | invalid candle sequence: %w", err)
	}

	sets := indicator.Compute(candles, r.params)
	last := len(candles) - 1

	return r.step(ctx, candles[last], sets[last], sets[last-1])
}

// step applies one tick: stop-loss/take-profit exits take priority and
// skip signal evaluation for that candle; otherwise the signal drives
// the state machine. An equity point is recorded whenever the tick
// completes; a failed tick records nothing and is retried by the caller.
func (r *Runner) step(ctx context.Context, c candle.Candle, cur, prev indicator.Set) error {
	if intent, ok := r.machine.CheckStops(c.Close); ok {
		if err := r.exec.ExecuteSell(ctx, intent, c.Timestamp); err != nil {
			return fmt.Errorf("step | executing %s exit: %w", intent.Reason, err)
		}
	} else {
		sig := r.strat.Evaluate(c, cur, prev)
		intent := r.machine.OnSignal(sig, c.Close)

		switch intent.Action {
		case position.Buy:
			if err := r.exec.ExecuteBuy(ctx, intent, c.Timestamp); err != nil {
				return fmt.Errorf("step | executing buy: %w", err)
			}
		case position.Sell:
			if err := r.exec.ExecuteSell(ctx, intent, c.Timestamp); err != nil {
				return fmt.Errorf("step | executing %s sell: %w", intent.Reason, err)
			}
		}
	}

	r.ledger.RecordEquityPoint(c.Close, c.Timestamp)
	return nil
}

// CloseAll force-closes any open position at the given price, so a
// finite replay always ends flat. No-op when already flat.
func (r *Runner) CloseAll(ctx context.Context, price float64, ts time.Time) error {
	if r.ledger.Position().Side != ledger.Long {
		return nil
	}
	intent := position.Intent{Action: position.Sell, Reason: position.ReasonEndOfData, Price: price}
	return r.exec.ExecuteSell(ctx, intent, ts)
}
