package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"goldentrader/internal/candle"
	"goldentrader/internal/ledger"
)

// Postgres is the production Storage backed by PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool and ensures the schema exists.
func NewPostgres(connStr string, maxOpen, maxIdle int) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.migrate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate() error {
	_, err := p.db.Exec(`
	CREATE TABLE IF NOT EXISTS candles (
		symbol     TEXT            NOT NULL,
		timeframe  TEXT            NOT NULL,
		timestamp  TIMESTAMPTZ     NOT NULL,
		open       DOUBLE PRECISION NOT NULL,
		high       DOUBLE PRECISION NOT NULL,
		low        DOUBLE PRECISION NOT NULL,
		close      DOUBLE PRECISION NOT NULL,
		volume     DOUBLE PRECISION NOT NULL,
		source     TEXT            NOT NULL DEFAULT '',
		PRIMARY KEY (symbol, timeframe, timestamp)
	);
	CREATE TABLE IF NOT EXISTS trades (
		id              BIGSERIAL PRIMARY KEY,
		symbol          TEXT            NOT NULL,
		timestamp       TIMESTAMPTZ     NOT NULL,
		side            TEXT            NOT NULL,
		price           DOUBLE PRECISION NOT NULL,
		size            DOUBLE PRECISION NOT NULL,
		amount          DOUBLE PRECISION NOT NULL,
		realized_profit DOUBLE PRECISION NOT NULL DEFAULT 0,
		reason          TEXT            NOT NULL DEFAULT '',
		balance_after   DOUBLE PRECISION NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON trades (symbol, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// SaveCandles upserts candles in a single transaction.
func (p *Postgres) SaveCandles(ctx context.Context, candles []candle.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	for _, c := range candles {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid candle for %s %s at %s: %w", c.Symbol, c.Timeframe, c.Timestamp, err)
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (symbol, timeframe, timestamp) DO UPDATE SET
			open=EXCLUDED.open, high=EXCLUDED.high, low=EXCLUDED.low,
			close=EXCLUDED.close, volume=EXCLUDED.volume, source=EXCLUDED.source`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing candle insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Symbol, c.Timeframe, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume, c.Source); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save candle for %s at %s: %w", c.Symbol, c.Timestamp, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// GetCandles returns candles in [start, end), ordered by timestamp.
func (p *Postgres) GetCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]candle.Candle, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT symbol, timeframe, timestamp, open, high, low, close, volume, source
		FROM candles
		WHERE symbol=$1 AND timeframe=$2 AND timestamp >= $3 AND timestamp < $4
		ORDER BY timestamp ASC`,
		symbol, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying candles: %w", err)
	}
	defer rows.Close()

	var candles []candle.Candle
	for rows.Next() {
		var c candle.Candle
		if err := rows.Scan(&c.Symbol, &c.Timeframe, &c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.Source); err != nil {
			return nil, fmt.Errorf("scanning candle row: %w", err)
		}
		c.Timestamp = c.Timestamp.UTC()
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

// SaveTrade appends one executed trade to the journal.
func (p *Postgres) SaveTrade(ctx context.Context, symbol string, t ledger.Trade) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO trades (symbol, timestamp, side, price, size, amount, realized_profit, reason, balance_after)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		symbol, t.Timestamp, string(t.Side), t.Price, t.Size, t.Amount, t.RealizedProfit, t.Reason, t.BalanceAfter)
	if err != nil {
		return fmt.Errorf("failed to save trade for %s at %s: %w", symbol, t.Timestamp, err)
	}
	return nil
}

// GetTrades returns trades in [start, end), ordered by timestamp.
func (p *Postgres) GetTrades(ctx context.Context, symbol string, start, end time.Time) ([]ledger.Trade, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT timestamp, side, price, size, amount, realized_profit, reason, balance_after
		FROM trades
		WHERE symbol=$1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC, id ASC`,
		symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying trades: %w", err)
	}
	defer rows.Close()

	var trades []ledger.Trade
	for rows.Next() {
		var t ledger.Trade
		var side string
		if err := rows.Scan(&t.Timestamp, &side, &t.Price, &t.Size, &t.Amount, &t.RealizedProfit, &t.Reason, &t.BalanceAfter); err != nil {
			return nil, fmt.Errorf("scanning trade row: %w", err)
		}
		t.Side = ledger.TradeSide(side)
		t.Timestamp = t.Timestamp.UTC()
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (p *Postgres) Close() error { return p.db.Close() }
