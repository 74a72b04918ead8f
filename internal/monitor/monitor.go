// Package monitor periodically snapshots ledger performance and raises
// alerts when it degrades. It never writes to the ledger.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"goldentrader/internal/ledger"
)

// Thresholds controls when alerts fire.
type Thresholds struct {
	MaxDrawdownPct      float64
	MaxConsecutiveLosses int
	MinBalanceFraction  float64 // fraction of initial balance
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDrawdownPct:       15.0,
		MaxConsecutiveLosses: 4,
		MinBalanceFraction:   0.8,
	}
}

// Snapshot is the JSON document written per monitoring cycle.
type Snapshot struct {
	Timestamp time.Time               `json:"timestamp"`
	Balance   float64                 `json:"balance"`
	Position  string                  `json:"position"`
	Stats     ledger.PerformanceStats `json:"stats"`
	Alerts    []string                `json:"alerts,omitempty"`
}

type Monitor struct {
	led        *ledger.Ledger
	interval   time.Duration
	dir        string
	thresholds Thresholds
}

func New(led *ledger.Ledger, interval time.Duration, dir string, thresholds Thresholds) *Monitor {
	return &Monitor{led: led, interval: interval, dir: dir, thresholds: thresholds}
}

// Run blocks until the context is cancelled, writing one snapshot per
// interval. Intended to run in its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		log.Printf("Monitor | Cannot create snapshot dir: %v", err)
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			snap := m.Collect(now)
			for _, a := range snap.Alerts {
				log.Printf("Monitor | ALERT: %s", a)
			}
			if err := m.write(snap); err != nil {
				log.Printf("Monitor | Failed to write snapshot: %v", err)
			}
		}
	}
}

// Collect builds a snapshot from the current ledger state.
func (m *Monitor) Collect(now time.Time) Snapshot {
	stats := m.led.Stats()
	snap := Snapshot{
		Timestamp: now,
		Balance:   m.led.Balance(),
		Position:  string(m.led.Position().Side),
		Stats:     stats,
	}

	if stats.MaxDrawdownPct > m.thresholds.MaxDrawdownPct {
		snap.Alerts = append(snap.Alerts,
			fmt.Sprintf("max drawdown %.2f%% exceeds %.2f%%", stats.MaxDrawdownPct, m.thresholds.MaxDrawdownPct))
	}
	if losses := m.consecutiveLosses(); losses >= m.thresholds.MaxConsecutiveLosses {
		snap.Alerts = append(snap.Alerts,
			fmt.Sprintf("%d consecutive losing trades", losses))
	}
	if floor := m.led.InitialBalance() * m.thresholds.MinBalanceFraction; m.led.Balance() < floor {
		snap.Alerts = append(snap.Alerts,
			fmt.Sprintf("balance %.2f below floor %.2f", m.led.Balance(), floor))
	}
	return snap
}

// consecutiveLosses counts losing exits at the tail of the trade log.
func (m *Monitor) consecutiveLosses() int {
	trades := m.led.Trades()
	count := 0
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Side != ledger.Sell {
			continue
		}
		if trades[i].RealizedProfit > 0 {
			break
		}
		count++
	}
	return count
}

func (m *Monitor) write(snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("snapshot_%s.json", snap.Timestamp.UTC().Format("20060102T150405"))
	return os.WriteFile(filepath.Join(m.dir, name), data, 0o644)
}
