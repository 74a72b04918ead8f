package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldentrader/internal/ledger"
)

var monTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestCollectHealthy(t *testing.T) {
	led := ledger.New(10000, 0.9)
	m := New(led, time.Minute, t.TempDir(), DefaultThresholds())

	snap := m.Collect(monTime)
	assert.Equal(t, monTime, snap.Timestamp)
	assert.InDelta(t, 10000.0, snap.Balance, 1e-9)
	assert.Equal(t, string(ledger.Flat), snap.Position)
	assert.Empty(t, snap.Alerts)
}

func TestCollectDrawdownAlert(t *testing.T) {
	led := ledger.New(10000, 0.9)
	led.RecordEquityPoint(100, monTime)
	// Simulate a 20% equity drop via the curve alone.
	_, err := led.ApplyBuy(100, monTime, 80, 200)
	require.NoError(t, err)
	led.RecordEquityPoint(75, monTime.Add(time.Hour))

	m := New(led, time.Minute, t.TempDir(), DefaultThresholds())
	snap := m.Collect(monTime.Add(time.Hour))
	require.NotEmpty(t, snap.Alerts)
	assert.Contains(t, snap.Alerts[0], "drawdown")
}

func TestCollectConsecutiveLossAlert(t *testing.T) {
	led := ledger.New(10000, 0.9)
	ts := monTime
	for i := 0; i < 4; i++ {
		_, err := led.ApplyBuy(100, ts, 90, 120)
		require.NoError(t, err)
		ts = ts.Add(time.Hour)
		_, err = led.ApplySell(99, ts, "signal")
		require.NoError(t, err)
		ts = ts.Add(time.Hour)
	}

	m := New(led, time.Minute, t.TempDir(), DefaultThresholds())
	snap := m.Collect(ts)
	found := false
	for _, a := range snap.Alerts {
		if a == "4 consecutive losing trades" {
			found = true
		}
	}
	assert.True(t, found, "expected a consecutive-loss alert, got %v", snap.Alerts)
}

func TestCollectLowBalanceAlert(t *testing.T) {
	led := ledger.New(10000, 0.9)
	_, err := led.ApplyBuy(100, monTime, 50, 300)
	require.NoError(t, err)
	// 90 units bought at 100, sold at 75: balance 1000 + 6750 = 7750.
	_, err = led.ApplySell(75, monTime.Add(time.Hour), "stop-loss")
	require.NoError(t, err)

	m := New(led, time.Minute, t.TempDir(), DefaultThresholds())
	snap := m.Collect(monTime.Add(time.Hour))

	found := false
	for _, a := range snap.Alerts {
		if strings.HasPrefix(a, "balance") {
			found = true
		}
	}
	assert.True(t, found, "expected a low-balance alert, got %v", snap.Alerts)
}

func TestConsecutiveLossesResetOnWin(t *testing.T) {
	led := ledger.New(10000, 0.9)
	ts := monTime
	trade := func(exit float64) {
		_, err := led.ApplyBuy(100, ts, 1, 10000)
		require.NoError(t, err)
		ts = ts.Add(time.Hour)
		_, err = led.ApplySell(exit, ts, "signal")
		require.NoError(t, err)
		ts = ts.Add(time.Hour)
	}
	trade(99)
	trade(99)
	trade(120) // win resets the streak
	trade(99)

	m := New(led, time.Minute, t.TempDir(), DefaultThresholds())
	assert.Equal(t, 1, m.consecutiveLosses())
}
