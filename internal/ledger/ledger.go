// Package ledger
package ledger

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidTransition signals a contract violation in the caller: a buy
// while already positioned or a sell while flat. It is surfaced, never
// swallowed.
var ErrInvalidTransition = errors.New("invalid position transition")

type Side string

const (
	Flat Side = "flat"
	Long Side = "long"
	// Short exists for calculation symmetry only; the golden-cross
	// strategy never enters it.
	Short Side = "short"
)

type TradeSide string

const (
	Buy  TradeSide = "buy"
	Sell TradeSide = "sell"
)

// Position is the single open position. Side == Flat iff EntryPrice == 0.
type Position struct {
	Side       Side      `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	Size       float64   `json:"size"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	EntryTime  time.Time `json:"entry_time"`
}

// Trade is an immutable record in the append-only trade log.
// RealizedProfit is meaningful on sells only.
type Trade struct {
	Timestamp      time.Time `json:"timestamp"`
	Side           TradeSide `json:"side"`
	Price          float64   `json:"price"`
	Size           float64   `json:"size"`
	Amount         float64   `json:"amount"`
	RealizedProfit float64   `json:"realized_profit,omitempty"`
	Reason         string    `json:"reason"`
	BalanceAfter   float64   `json:"balance_after"`
}

// EquityPoint is one sample of the equity curve, recorded once per
// processed candle.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
	Price     float64   `json:"price"`
}

// Ledger owns the cash balance, the open position, the trade log and the
// equity curve. All mutation goes through ApplyBuy/ApplySell/
// RecordEquityPoint; those are confined to a single writer goroutine,
// while readers (monitoring) take snapshots under the read lock.
type Ledger struct {
	mu sync.RWMutex

	initialBalance float64
	balance        float64
	allocation     float64

	position    Position
	trades      []Trade
	equityCurve []EquityPoint

	closedTrades int
	wins         int
	losses       int
}

// New creates a ledger with the given starting balance and allocation
// fraction (share of the balance committed per entry).
func New(initialBalance, allocationFraction float64) *Ledger {
	return &Ledger{
		initialBalance: initialBalance,
		balance:        initialBalance,
		allocation:     allocationFraction,
		position:       Position{Side: Flat},
		trades:         make([]Trade, 0, 64),
		equityCurve:    make([]EquityPoint, 0, 1024),
	}
}

// ApplyBuy opens a long position at price: allocates a fraction of the
// balance, debits it and records a buy trade. Returns
// ErrInvalidTransition when a position is already open. The ledger is
// left untouched on error.
func (l *Ledger) ApplyBuy(price float64, ts time.Time, stopLoss, takeProfit float64) (Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.position.Side != Flat {
		return Trade{}, ErrInvalidTransition
	}

	tradeAmount := l.balance * l.allocation
	size := tradeAmount / price

	l.balance -= tradeAmount
	l.position = Position{
		Side:       Long,
		EntryPrice: price,
		Size:       size,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		EntryTime:  ts,
	}

	trade := Trade{
		Timestamp:    ts,
		Side:         Buy,
		Price:        price,
		Size:         size,
		Amount:       tradeAmount,
		Reason:       "signal",
		BalanceAfter: l.balance,
	}
	l.trades = append(l.trades, trade)

	return trade, nil
}

// ApplySell closes the open long position at price: credits the
// proceeds, realizes the profit and records a sell trade. A realized
// profit of exactly zero counts as a loss. Returns ErrInvalidTransition
// when no position is open; the ledger is left untouched on error.
func (l *Ledger) ApplySell(price float64, ts time.Time, reason string) (Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.position.Side != Long {
		return Trade{}, ErrInvalidTransition
	}

	size := l.position.Size
	proceeds := size * price
	realized := proceeds - size*l.position.EntryPrice

	l.balance += proceeds
	l.position = Position{Side: Flat}

	l.closedTrades++
	if realized > 0 {
		l.wins++
	} else {
		l.losses++
	}

	trade := Trade{
		Timestamp:      ts,
		Side:           Sell,
		Price:          price,
		Size:           size,
		Amount:         proceeds,
		RealizedProfit: realized,
		Reason:         reason,
		BalanceAfter:   l.balance,
	}
	l.trades = append(l.trades, trade)

	return trade, nil
}

// RecordEquityPoint appends one equity sample: balance plus position
// value at the current price when long, plain balance otherwise.
func (l *Ledger) RecordEquityPoint(price float64, ts time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	equity := l.balance
	if l.position.Side == Long {
		equity += l.position.Size * price
	}
	l.equityCurve = append(l.equityCurve, EquityPoint{
		Timestamp: ts,
		Equity:    equity,
		Price:     price,
	})
}

// Position returns a copy of the current position.
func (l *Ledger) Position() Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// InitialBalance returns the starting balance.
func (l *Ledger) InitialBalance() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialBalance
}

// Trades returns a copy of the trade log.
func (l *Ledger) Trades() []Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// EquityCurve returns a copy of the equity curve.
func (l *Ledger) EquityCurve() []EquityPoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]EquityPoint, len(l.equityCurve))
	copy(out, l.equityCurve)
	return out
}
