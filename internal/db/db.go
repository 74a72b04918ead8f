// Package db
package db

import (
	"context"
	"time"

	"goldentrader/internal/candle"
	"goldentrader/internal/ledger"
)

// Storage is the interface for all persistent storage: historical
// candles for backtests and the executed-trade journal for live runs.
type Storage interface {
	SaveCandles(ctx context.Context, candles []candle.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]candle.Candle, error)
	SaveTrade(ctx context.Context, symbol string, trade ledger.Trade) error
	GetTrades(ctx context.Context, symbol string, start, end time.Time) ([]ledger.Trade, error)
	Close() error
}
