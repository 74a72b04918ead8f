// Package position
package position

import (
	"goldentrader/internal/ledger"
	"goldentrader/internal/strategy"
)

// Action is the trade intent emitted by the state machine. The machine
// never mutates position state itself; callers apply intents through the
// ledger (and, live, through the exchange first).
type Action string

const (
	None Action = "none"
	Buy  Action = "buy"
	Sell Action = "sell"
)

// Exit reasons recorded on sell trades.
const (
	ReasonSignal     = "signal"
	ReasonForceSell  = "force-sell"
	ReasonStopLoss   = "stop-loss"
	ReasonTakeProfit = "take-profit"
	ReasonEndOfData  = "end-of-data"
)

// Intent describes one decided transition. StopLoss/TakeProfit are set
// on buy intents only.
type Intent struct {
	Action     Action
	Reason     string
	Price      float64
	StopLoss   float64
	TakeProfit float64
}

// View is the read-only position state the machine decides against,
// provided by the ledger.
type View interface {
	Position() ledger.Position
}

// StateMachine decides entries and exits for a single flat/long
// position. It is re-entrant for the life of the engine: signals toward
// the current state are no-ops.
type StateMachine struct {
	view          View
	stopLossPct   float64
	takeProfitPct float64
}

// NewStateMachine creates a state machine reading position state from
// view, with stop-loss/take-profit distances in percent of entry price.
func NewStateMachine(view View, stopLossPct, takeProfitPct float64) *StateMachine {
	return &StateMachine{
		view:          view,
		stopLossPct:   stopLossPct,
		takeProfitPct: takeProfitPct,
	}
}

// EntryLevels computes stop-loss/take-profit thresholds for a long entry
// at the given price.
func (m *StateMachine) EntryLevels(entry float64) (stopLoss, takeProfit float64) {
	stopLoss = entry * (1 - m.stopLossPct/100)
	takeProfit = entry * (1 + m.takeProfitPct/100)
	return stopLoss, takeProfit
}

// CheckStops checks the open position's stop-loss/take-profit thresholds
// against the current price. It must run before signal evaluation on
// every tick; a triggered exit uses the current price, not the threshold
// price. Returns false when flat or when no threshold is crossed.
func (m *StateMachine) CheckStops(price float64) (Intent, bool) {
	pos := m.view.Position()
	if pos.Side != ledger.Long {
		return Intent{Action: None}, false
	}
	if price <= pos.StopLoss {
		return Intent{Action: Sell, Reason: ReasonStopLoss, Price: price}, true
	}
	if price >= pos.TakeProfit {
		return Intent{Action: Sell, Reason: ReasonTakeProfit, Price: price}, true
	}
	return Intent{Action: None}, false
}

// OnSignal decides the transition for a candle's signal at the candle's
// close price. When both a normal sell signal and a forced exit fire on
// the same candle the exit is recorded as forced; the trade mechanics
// are identical.
func (m *StateMachine) OnSignal(sig strategy.Signal, price float64) Intent {
	pos := m.view.Position()

	switch pos.Side {
	case ledger.Flat:
		if sig.BuySignal {
			stop, take := m.EntryLevels(price)
			return Intent{
				Action:     Buy,
				Reason:     ReasonSignal,
				Price:      price,
				StopLoss:   stop,
				TakeProfit: take,
			}
		}
	case ledger.Long:
		if sig.ForceSell {
			return Intent{Action: Sell, Reason: ReasonForceSell, Price: price}
		}
		if sig.SellSignal {
			return Intent{Action: Sell, Reason: ReasonSignal, Price: price}
		}
	}

	return Intent{Action: None}
}
