package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestApplyBuy(t *testing.T) {
	l := New(10000, 0.9)

	trade, err := l.ApplyBuy(100, testTime, 98, 105)
	require.NoError(t, err)

	assert.Equal(t, Buy, trade.Side)
	assert.InDelta(t, 90.0, trade.Size, 1e-9)
	assert.InDelta(t, 9000.0, trade.Amount, 1e-9)
	assert.InDelta(t, 1000.0, trade.BalanceAfter, 1e-9)
	assert.InDelta(t, 1000.0, l.Balance(), 1e-9)

	pos := l.Position()
	assert.Equal(t, Long, pos.Side)
	assert.InDelta(t, 100.0, pos.EntryPrice, 1e-9)
	assert.InDelta(t, 90.0, pos.Size, 1e-9)
	assert.InDelta(t, 98.0, pos.StopLoss, 1e-9)
	assert.InDelta(t, 105.0, pos.TakeProfit, 1e-9)
}

func TestApplyBuyWhileLong(t *testing.T) {
	l := New(10000, 0.9)
	_, err := l.ApplyBuy(100, testTime, 98, 105)
	require.NoError(t, err)

	_, err = l.ApplyBuy(110, testTime.Add(time.Hour), 108, 115)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Ledger untouched by the failed buy.
	assert.InDelta(t, 1000.0, l.Balance(), 1e-9)
	assert.Len(t, l.Trades(), 1)
	assert.InDelta(t, 100.0, l.Position().EntryPrice, 1e-9)
}

func TestApplySell(t *testing.T) {
	l := New(10000, 0.9)
	_, err := l.ApplyBuy(100, testTime, 98, 105)
	require.NoError(t, err)

	trade, err := l.ApplySell(110, testTime.Add(time.Hour), "signal")
	require.NoError(t, err)

	// 90 units sold at 110 realizes 900 on a 9000 allocation.
	assert.Equal(t, Sell, trade.Side)
	assert.InDelta(t, 900.0, trade.RealizedProfit, 1e-9)
	assert.InDelta(t, 10900.0, trade.BalanceAfter, 1e-9)
	assert.InDelta(t, 10900.0, l.Balance(), 1e-9)
	assert.Equal(t, Flat, l.Position().Side)

	stats := l.Stats()
	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, 1, stats.WinningTrades)
	assert.Equal(t, 0, stats.LosingTrades)
	assert.InDelta(t, 100.0, stats.WinRatePct, 1e-9)
	assert.InDelta(t, 9.0, stats.TotalReturnPct, 1e-9)
	assert.InDelta(t, 0.0, stats.ProfitFactor, 1e-9, "no losing trades")
}

func TestApplySellWhileFlat(t *testing.T) {
	l := New(10000, 0.9)
	_, err := l.ApplySell(110, testTime, "signal")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.InDelta(t, 10000.0, l.Balance(), 1e-9)
	assert.Empty(t, l.Trades())
}

func TestBreakEvenCountsAsLoss(t *testing.T) {
	l := New(10000, 0.9)
	_, err := l.ApplyBuy(100, testTime, 98, 105)
	require.NoError(t, err)
	trade, err := l.ApplySell(100, testTime.Add(time.Hour), "signal")
	require.NoError(t, err)

	assert.InDelta(t, 0.0, trade.RealizedProfit, 1e-9)
	stats := l.Stats()
	assert.Equal(t, 0, stats.WinningTrades)
	assert.Equal(t, 1, stats.LosingTrades)
}

func TestRecordEquityPoint(t *testing.T) {
	l := New(10000, 0.9)

	l.RecordEquityPoint(100, testTime)
	_, err := l.ApplyBuy(100, testTime, 98, 105)
	require.NoError(t, err)
	l.RecordEquityPoint(105, testTime.Add(time.Hour))

	curve := l.EquityCurve()
	require.Len(t, curve, 2)
	assert.InDelta(t, 10000.0, curve[0].Equity, 1e-9, "flat equity is the balance")
	// Long equity marks the position to the current price: 1000 + 90*105.
	assert.InDelta(t, 10450.0, curve[1].Equity, 1e-9)
}

func TestSnapshotsAreCopies(t *testing.T) {
	l := New(10000, 0.9)
	_, err := l.ApplyBuy(100, testTime, 98, 105)
	require.NoError(t, err)
	l.RecordEquityPoint(100, testTime)

	trades := l.Trades()
	trades[0].Price = 0
	curve := l.EquityCurve()
	curve[0].Equity = 0

	assert.InDelta(t, 100.0, l.Trades()[0].Price, 1e-9)
	assert.InDelta(t, 10000.0, l.EquityCurve()[0].Equity, 1e-9)
}
