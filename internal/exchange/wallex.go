package exchange

import (
	"context"
	"strconv"
	"strings"
	"time"

	wallex "github.com/wallexchange/wallex-go"

	"goldentrader/internal/candle"
)

// WallexExchange adapts the Wallex API to the Exchange contract.
type WallexExchange struct {
	client *wallex.Client
}

func NewWallexExchange(apiKey string) *WallexExchange {
	return &WallexExchange{
		client: wallex.New(wallex.ClientOptions{APIKey: apiKey}),
	}
}

func (w *WallexExchange) Name() string { return "wallex" }

// wallexResolution converts a timeframe to Wallex's resolution string:
// minutes lose their suffix, hours become minutes, daily is "1D".
func wallexResolution(timeframe string) string {
	switch timeframe {
	case "1h":
		return "60"
	case "4h":
		return "240"
	case "1d":
		return "1D"
	}
	return strings.TrimSuffix(timeframe, "m")
}

// FetchLatestCandles fetches the most recent count candles by time range.
func (w *WallexExchange) FetchLatestCandles(ctx context.Context, symbol, timeframe string, count int) ([]candle.Candle, error) {
	duration := candle.GetTimeframeDuration(timeframe)
	if duration == 0 {
		return nil, &GatewayError{Exchange: w.Name(), Op: "fetch candles", Err: errUnsupportedTimeframe(timeframe)}
	}
	end := time.Now().UTC()
	start := end.Add(-duration * time.Duration(count))

	var wallexCandles []*wallex.Candle
	err := retry(w.Name(), 3, 2*time.Second, func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		var err error
		wallexCandles, err = w.client.Candles(NormalizeSymbol(symbol), wallexResolution(timeframe), start, end)
		return err
	})
	if err != nil {
		return nil, &GatewayError{Exchange: w.Name(), Op: "fetch candles", Err: err}
	}

	var candles []candle.Candle
	for _, wc := range wallexCandles {
		open, _ := strconv.ParseFloat(string(wc.Open), 64)
		high, _ := strconv.ParseFloat(string(wc.High), 64)
		low, _ := strconv.ParseFloat(string(wc.Low), 64)
		closePrice, _ := strconv.ParseFloat(string(wc.Close), 64)
		volume, _ := strconv.ParseFloat(string(wc.Volume), 64)

		c := candle.Candle{
			Timestamp: wc.Timestamp.UTC().Truncate(duration),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			Symbol:    symbol,
			Timeframe: timeframe,
			Source:    w.Name(),
		}
		if err := c.Validate(); err != nil {
			continue // Skip invalid candles
		}
		candles = append(candles, c)
	}

	return candles, nil
}

// FetchFreeBalance returns the free balance of an asset.
func (w *WallexExchange) FetchFreeBalance(ctx context.Context, asset string) (float64, error) {
	var balances map[string]*wallex.Balance
	err := retry(w.Name(), 3, 2*time.Second, func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		var err error
		balances, err = w.client.Balances()
		return err
	})
	if err != nil {
		return 0, &GatewayError{Exchange: w.Name(), Op: "fetch balance", Err: err}
	}

	bal, ok := balances[asset]
	if !ok {
		return 0, nil
	}
	free, _ := strconv.ParseFloat(string(bal.Value), 64)
	return free, nil
}

// SubmitMarketOrder submits a market order and returns the confirmation.
func (w *WallexExchange) SubmitMarketOrder(ctx context.Context, symbol, side string, quantity float64) (OrderResult, error) {
	select {
	case <-ctx.Done():
		return OrderResult{}, ctx.Err()
	default:
	}

	params := &wallex.OrderParams{
		Symbol:   NormalizeSymbol(symbol),
		Type:     "MARKET",
		Side:     strings.ToUpper(side),
		Quantity: wallex.Number(strconv.FormatFloat(quantity, 'f', 8, 64)),
	}
	resp, err := w.client.PlaceOrder(params)
	if err != nil {
		return OrderResult{}, &GatewayError{Exchange: w.Name(), Op: "submit order", Err: err}
	}

	return OrderResult{
		OrderID:   resp.ClientOrderID,
		Status:    strings.ToUpper(resp.Status),
		FilledQty: numberToFloat(resp.ExecutedQty),
		AvgPrice:  numberToFloat(resp.ExecutedPrice),
		Timestamp: resp.CreatedAt.UTC(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
	}, nil
}

// numberToFloat safely dereferences a *wallex.Number.
func numberToFloat(n *wallex.Number) float64 {
	if n == nil {
		return 0
	}
	f, _ := strconv.ParseFloat(string(*n), 64)
	return f
}

type errUnsupportedTimeframe string

func (e errUnsupportedTimeframe) Error() string {
	return "unsupported timeframe: " + string(e)
}
