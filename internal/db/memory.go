package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"goldentrader/internal/candle"
	"goldentrader/internal/ledger"
)

// MemoryStorage is an in-memory Storage for tests and backtests run
// without a database.
type MemoryStorage struct {
	mu sync.RWMutex

	// Candles keyed by symbol|timeframe|timestamp
	candles map[string]candle.Candle

	// Trades (append-only) keyed by symbol
	trades map[string][]ledger.Trade
}

func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		candles: make(map[string]candle.Candle),
		trades:  make(map[string][]ledger.Trade),
	}
}

func candleKey(symbol, timeframe string, ts time.Time) string {
	return strings.ToUpper(symbol) + "|" + timeframe + "|" + ts.UTC().Format(time.RFC3339Nano)
}

func (m *MemoryStorage) SaveCandles(_ context.Context, candles []candle.Candle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range candles {
		if err := c.Validate(); err != nil {
			return err
		}
		m.candles[candleKey(c.Symbol, c.Timeframe, c.Timestamp)] = c
	}
	return nil
}

func (m *MemoryStorage) GetCandles(_ context.Context, symbol, timeframe string, start, end time.Time) ([]candle.Candle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []candle.Candle
	for _, c := range m.candles {
		if !strings.EqualFold(c.Symbol, symbol) || c.Timeframe != timeframe {
			continue
		}
		if c.Timestamp.Before(start) || !c.Timestamp.Before(end) {
			continue
		}
		out = append(out, c)
	}
	candle.SortByTimestamp(out)
	return out, nil
}

func (m *MemoryStorage) SaveTrade(_ context.Context, symbol string, t ledger.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToUpper(symbol)
	m.trades[key] = append(m.trades[key], t)
	return nil
}

func (m *MemoryStorage) GetTrades(_ context.Context, symbol string, start, end time.Time) ([]ledger.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ledger.Trade
	for _, t := range m.trades[strings.ToUpper(symbol)] {
		if t.Timestamp.Before(start) || !t.Timestamp.Before(end) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *MemoryStorage) Close() error { return nil }
