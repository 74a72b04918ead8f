// Package exchange
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"goldentrader/internal/candle"
)

// GatewayError marks a fault at the exchange boundary (network, API,
// malformed payload). The engine's policy on a gateway error is to skip
// the tick's trade decision and retry on the next schedule; backoff is
// the scheduler's concern.
type GatewayError struct {
	Exchange string
	Op       string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway: %s: %v", e.Exchange, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGatewayError reports whether err originated at the exchange boundary.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// OrderResult is the exchange's confirmation of a submitted order.
type OrderResult struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	FilledQty float64   `json:"filled_qty"`
	AvgPrice  float64   `json:"avg_price"`
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Quantity  float64   `json:"quantity"`
}

// Exchange is the narrow gateway contract the core depends on. All
// network access lives behind it; the core consumes fetched candles and
// balances and emits trade intents.
type Exchange interface {
	Name() string
	FetchLatestCandles(ctx context.Context, symbol, timeframe string, count int) ([]candle.Candle, error)
	FetchFreeBalance(ctx context.Context, asset string) (float64, error)
	SubmitMarketOrder(ctx context.Context, symbol, side string, quantity float64) (OrderResult, error)
}

// retry wraps a function with retry logic for transient errors, using
// exponential backoff capped at one minute.
func retry(name string, attempts int, delay time.Duration, fn func() error) error {
	backoff := delay
	var lastErr error
	for i := 1; i <= attempts; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Printf("Exchange | %s retry attempt %d/%d failed: %v. Backing off for %v", name, i, attempts, lastErr, backoff)
		if i == attempts {
			break
		}
		time.Sleep(backoff)
		if backoff < time.Minute {
			backoff *= 2
			if backoff > time.Minute {
				backoff = time.Minute
			}
		}
	}
	return lastErr
}

// NormalizeSymbol converts e.g. btc-usdt to BTCUSDT.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

// BaseAsset extracts the base asset from a concatenated symbol, e.g.
// BTCUSDT -> BTC. Quote assets longer than USDT are not supported here.
func BaseAsset(symbol string) string {
	s := NormalizeSymbol(symbol)
	for _, quote := range []string{"USDT", "USDC", "BUSD", "BTC", "ETH", "IRT", "TMN"} {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return strings.TrimSuffix(s, quote)
		}
	}
	return s
}

// QuoteAsset extracts the quote asset from a concatenated symbol, e.g.
// BTCUSDT -> USDT.
func QuoteAsset(symbol string) string {
	s := NormalizeSymbol(symbol)
	for _, quote := range []string{"USDT", "USDC", "BUSD", "BTC", "ETH", "IRT", "TMN"} {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return quote
		}
	}
	return ""
}
