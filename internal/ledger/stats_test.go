package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curveFrom(equities []float64) []EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := make([]EquityPoint, len(equities))
	for i, e := range equities {
		curve[i] = EquityPoint{Timestamp: base.Add(time.Duration(i) * time.Hour), Equity: e}
	}
	return curve
}

func TestMaxDrawdownPct(t *testing.T) {
	tests := []struct {
		name     string
		equities []float64
		expected float64
	}{
		{
			name:     "Peak then trough",
			equities: []float64{10000, 11000, 9000, 9500},
			expected: 18.1818,
		},
		{
			name:     "Monotonic rise has no drawdown",
			equities: []float64{10000, 10500, 11000},
			expected: 0,
		},
		{
			name:     "Later peak resets the reference",
			equities: []float64{100, 90, 120, 108},
			expected: 10,
		},
		{
			name:     "Empty curve",
			equities: nil,
			expected: 0,
		},
		{
			name:     "Single point",
			equities: []float64{10000},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, maxDrawdownPct(curveFrom(tt.equities)), 0.001)
		})
	}
}

func TestSharpeRatio(t *testing.T) {
	t.Run("Constant equity has zero sharpe", func(t *testing.T) {
		assert.InDelta(t, 0.0, sharpeRatio(curveFrom([]float64{100, 100, 100})), 1e-9)
	})

	t.Run("Too few points", func(t *testing.T) {
		assert.InDelta(t, 0.0, sharpeRatio(curveFrom([]float64{100})), 1e-9)
		assert.InDelta(t, 0.0, sharpeRatio(nil), 1e-9)
	})

	t.Run("Known series", func(t *testing.T) {
		// Returns are +10% and -10%/1.1: mean and population stddev by hand.
		curve := curveFrom([]float64{100, 110, 100})
		r1, r2 := 0.1, -10.0/110.0
		mean := (r1 + r2) / 2
		std := math.Sqrt(((r1-mean)*(r1-mean) + (r2-mean)*(r2-mean)) / 2)
		expected := mean / std * math.Sqrt(252)
		assert.InDelta(t, expected, sharpeRatio(curve), 1e-9)
	})

	t.Run("Positive drift gives positive sharpe", func(t *testing.T) {
		curve := curveFrom([]float64{100, 102, 103, 106, 108})
		assert.Greater(t, sharpeRatio(curve), 0.0)
	})
}

func TestProfitFactor(t *testing.T) {
	sell := func(profit float64) Trade {
		return Trade{Side: Sell, RealizedProfit: profit}
	}

	t.Run("Wins over losses", func(t *testing.T) {
		trades := []Trade{sell(300), sell(-100), sell(200), sell(-150)}
		assert.InDelta(t, 2.0, profitFactor(trades), 1e-9)
	})

	t.Run("No losers reports zero", func(t *testing.T) {
		assert.InDelta(t, 0.0, profitFactor([]Trade{sell(300), sell(200)}), 1e-9)
	})

	t.Run("Buys are ignored", func(t *testing.T) {
		trades := []Trade{{Side: Buy}, sell(100), sell(-50)}
		assert.InDelta(t, 2.0, profitFactor(trades), 1e-9)
	})

	t.Run("Empty log", func(t *testing.T) {
		assert.InDelta(t, 0.0, profitFactor(nil), 1e-9)
	})
}

func TestStatsZeroDefaults(t *testing.T) {
	l := New(10000, 0.9)
	stats := l.Stats()
	assert.Equal(t, 0, stats.TotalTrades)
	assert.InDelta(t, 0.0, stats.WinRatePct, 1e-9)
	assert.InDelta(t, 0.0, stats.TotalReturnPct, 1e-9)
	assert.InDelta(t, 0.0, stats.MaxDrawdownPct, 1e-9)
	assert.InDelta(t, 0.0, stats.SharpeRatio, 1e-9)
	assert.InDelta(t, 0.0, stats.ProfitFactor, 1e-9)
}

func TestStatsRoundTrip(t *testing.T) {
	l := New(10000, 0.9)
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := l.ApplyBuy(100, ts, 98, 105)
	require.NoError(t, err)
	l.RecordEquityPoint(100, ts)
	_, err = l.ApplySell(110, ts.Add(time.Hour), "signal")
	require.NoError(t, err)
	l.RecordEquityPoint(110, ts.Add(time.Hour))

	_, err = l.ApplyBuy(110, ts.Add(2*time.Hour), 107, 116)
	require.NoError(t, err)
	_, err = l.ApplySell(105, ts.Add(3*time.Hour), "stop_loss")
	require.NoError(t, err)
	l.RecordEquityPoint(105, ts.Add(3*time.Hour))

	stats := l.Stats()
	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 1, stats.WinningTrades)
	assert.Equal(t, 1, stats.LosingTrades)
	assert.InDelta(t, 50.0, stats.WinRatePct, 1e-9)
	assert.Greater(t, stats.ProfitFactor, 1.0)
}
