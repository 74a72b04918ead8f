// Package config
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

/*
YAML config example:
mode: "backtest"
exchange: "binance"
symbol: "BTCUSDT"
timeframe: "1h"
short_period: 10
long_period: 30
stop_loss_percent: 2.0
take_profit_percent: 5.0
initial_balance: 10000
allocation_fraction: 0.9
backtest_from: "2023-01-01"
backtest_to: "2024-01-01"
*/

type Config struct {
	// Credentials and connection strings come from the environment, not
	// the config file.
	BinanceAPIKey    string `yaml:"-"`
	BinanceSecretKey string `yaml:"-"`
	WallexAPIKey     string `yaml:"-"`
	DBConnStr        string `yaml:"-"`

	DBMaxOpen int `yaml:"db_max_open"`
	DBMaxIdle int `yaml:"db_max_idle"`

	Mode     string `yaml:"mode"`     // "live" or "backtest"
	Exchange string `yaml:"exchange"` // "binance" or "wallex"

	Symbol    string `yaml:"symbol"`
	Timeframe string `yaml:"timeframe"`

	ShortPeriod int `yaml:"short_period"`
	LongPeriod  int `yaml:"long_period"`

	StopLossPercent    float64 `yaml:"stop_loss_percent"`
	TakeProfitPercent  float64 `yaml:"take_profit_percent"`
	InitialBalance     float64 `yaml:"initial_balance"`
	AllocationFraction float64 `yaml:"allocation_fraction"`

	BacktestFrom time.Time `yaml:"-"`
	BacktestTo   time.Time `yaml:"-"`

	CandleWindow    int           `yaml:"candle_window"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	SnapshotDir     string        `yaml:"snapshot_dir"`
}

// Load builds the configuration from flags, an optional YAML file and
// the environment (.env is honored when present).
func Load() (Config, error) {
	mode := flag.String("mode", "backtest", "Mode: live or backtest")
	exchangeName := flag.String("exchange", "binance", "Exchange: binance or wallex")
	symbol := flag.String("symbol", "BTCUSDT", "Trading symbol")
	timeframe := flag.String("timeframe", "1h", "Candle timeframe")
	shortPeriod := flag.Int("short-period", 10, "Short moving average period")
	longPeriod := flag.Int("long-period", 30, "Long moving average period")
	stopLossPercent := flag.Float64("stop-loss-percent", 2.0, "Stop loss percent (e.g., 2.0 for 2%)")
	takeProfitPercent := flag.Float64("take-profit-percent", 5.0, "Take profit percent (e.g., 5.0 for 5%)")
	initialBalance := flag.Float64("initial-balance", 10000, "Initial simulated balance")
	allocationFraction := flag.Float64("allocation-fraction", 0.9, "Fraction of balance committed per entry")
	from := flag.String("from", time.Now().AddDate(-1, 0, 0).Format("2006-01-02"), "Backtest start date (YYYY-MM-DD)")
	to := flag.String("to", time.Now().Format("2006-01-02"), "Backtest end date (YYYY-MM-DD)")
	candleWindow := flag.Int("candle-window", 100, "Number of candles fetched per live tick")
	tickInterval := flag.Duration("tick-interval", time.Minute, "Live signal check interval")
	monitorInterval := flag.Duration("monitor-interval", 5*time.Minute, "Monitoring snapshot interval")
	snapshotDir := flag.String("snapshot-dir", "monitoring_data", "Directory for monitoring snapshots")
	configFile := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	// .env is optional; environment variables win when both exist.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Config | Skipping .env: %v", err)
	}

	cfg := Config{
		Mode:               *mode,
		Exchange:           *exchangeName,
		Symbol:             *symbol,
		Timeframe:          *timeframe,
		ShortPeriod:        *shortPeriod,
		LongPeriod:         *longPeriod,
		StopLossPercent:    *stopLossPercent,
		TakeProfitPercent:  *takeProfitPercent,
		InitialBalance:     *initialBalance,
		AllocationFraction: *allocationFraction,
		CandleWindow:       *candleWindow,
		TickInterval:       *tickInterval,
		MonitorInterval:    *monitorInterval,
		SnapshotDir:        *snapshotDir,
		DBMaxOpen:          10,
		DBMaxIdle:          5,
	}

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	fromTime, err := time.Parse("2006-01-02", *from)
	if err != nil {
		return Config{}, fmt.Errorf("parsing -from date: %w", err)
	}
	toTime, err := time.Parse("2006-01-02", *to)
	if err != nil {
		return Config{}, fmt.Errorf("parsing -to date: %w", err)
	}
	cfg.BacktestFrom = fromTime
	cfg.BacktestTo = toTime

	cfg.BinanceAPIKey = os.Getenv("BINANCE_API_KEY")
	cfg.BinanceSecretKey = os.Getenv("BINANCE_SECRET_KEY")
	cfg.WallexAPIKey = os.Getenv("WALLEX_API_KEY")
	cfg.DBConnStr = os.Getenv("DB_CONN_STR")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad loads the configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Config | %v", err)
	}
	return cfg
}

// Validate checks the numeric parameter bounds.
func (c Config) Validate() error {
	if c.ShortPeriod <= 0 || c.LongPeriod <= 0 {
		return fmt.Errorf("moving average periods must be positive (short=%d, long=%d)", c.ShortPeriod, c.LongPeriod)
	}
	if c.ShortPeriod >= c.LongPeriod {
		return fmt.Errorf("short period must be less than long period (short=%d, long=%d)", c.ShortPeriod, c.LongPeriod)
	}
	if c.StopLossPercent <= 0 {
		return fmt.Errorf("stop loss percent must be positive, got %v", c.StopLossPercent)
	}
	if c.TakeProfitPercent <= 0 {
		return fmt.Errorf("take profit percent must be positive, got %v", c.TakeProfitPercent)
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be positive, got %v", c.InitialBalance)
	}
	if c.AllocationFraction <= 0 || c.AllocationFraction > 1 {
		return fmt.Errorf("allocation fraction must be in (0,1], got %v", c.AllocationFraction)
	}
	switch c.Mode {
	case "live", "backtest":
	default:
		return fmt.Errorf("unsupported mode: %s", c.Mode)
	}
	switch c.Exchange {
	case "binance", "wallex":
	default:
		return fmt.Errorf("unsupported exchange: %s", c.Exchange)
	}
	return nil
}
