// Package strategy
package strategy

import (
	"time"

	"goldentrader/internal/candle"
	"goldentrader/internal/indicator"
)

// Signal is the per-candle decision surface of a strategy. The booleans
// are derived deterministically from the current and previous indicator
// sets; one candle of lookback is required, so the first evaluated index
// of any sequence yields an all-false signal.
type Signal struct {
	Time        time.Time `json:"time"`
	GoldenCross bool      `json:"golden_cross"`
	DeadCross   bool      `json:"dead_cross"`
	BuySignal   bool      `json:"buy_signal"`
	SellSignal  bool      `json:"sell_signal"`
	ForceSell   bool      `json:"force_sell"`
}

// Engine is the interface for signal engines: one candle plus its
// indicator set (and the previous candle's set) in, one Signal out.
type Engine interface {
	Name() string
	WarmupPeriod() int
	Evaluate(c candle.Candle, cur, prev indicator.Set) Signal
}
