package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"goldentrader/internal/candle"
)

// BinanceExchange adapts the Binance spot API to the Exchange contract.
type BinanceExchange struct {
	client *binance.Client
}

func NewBinanceExchange(apiKey, secretKey string) *BinanceExchange {
	return &BinanceExchange{
		client: binance.NewClient(apiKey, secretKey),
	}
}

func (b *BinanceExchange) Name() string { return "binance" }

// binanceInterval maps our timeframe notation to Binance kline intervals.
// They happen to coincide for every timeframe we support.
func binanceInterval(timeframe string) (string, error) {
	if !candle.IsValidTimeframe(timeframe) {
		return "", fmt.Errorf("unsupported timeframe: %s", timeframe)
	}
	return timeframe, nil
}

// FetchLatestCandles fetches the most recent count closed candles.
func (b *BinanceExchange) FetchLatestCandles(ctx context.Context, symbol, timeframe string, count int) ([]candle.Candle, error) {
	interval, err := binanceInterval(timeframe)
	if err != nil {
		return nil, err
	}

	var klines []*binance.Kline
	err = retry(b.Name(), 3, 2*time.Second, func() error {
		var err error
		klines, err = b.client.NewKlinesService().
			Symbol(NormalizeSymbol(symbol)).
			Interval(interval).
			Limit(count).
			Do(ctx)
		return err
	})
	if err != nil {
		return nil, &GatewayError{Exchange: b.Name(), Op: "fetch candles", Err: err}
	}

	candles := make([]candle.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		c := candle.Candle{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			Symbol:    symbol,
			Timeframe: timeframe,
			Source:    b.Name(),
		}
		if err := c.Validate(); err != nil {
			continue // Skip invalid candles
		}
		candles = append(candles, c)
	}

	return candles, nil
}

// FetchFreeBalance returns the free (unlocked) balance of an asset.
func (b *BinanceExchange) FetchFreeBalance(ctx context.Context, asset string) (float64, error) {
	var account *binance.Account
	err := retry(b.Name(), 3, 2*time.Second, func() error {
		var err error
		account, err = b.client.NewGetAccountService().Do(ctx)
		return err
	})
	if err != nil {
		return 0, &GatewayError{Exchange: b.Name(), Op: "fetch balance", Err: err}
	}

	for _, bal := range account.Balances {
		if bal.Asset == asset {
			free, err := strconv.ParseFloat(bal.Free, 64)
			if err != nil {
				return 0, &GatewayError{Exchange: b.Name(), Op: "parse balance", Err: err}
			}
			return free, nil
		}
	}
	return 0, nil
}

// SubmitMarketOrder submits a market order and returns the confirmation.
func (b *BinanceExchange) SubmitMarketOrder(ctx context.Context, symbol, side string, quantity float64) (OrderResult, error) {
	var sideType binance.SideType
	switch strings.ToUpper(side) {
	case "BUY":
		sideType = binance.SideTypeBuy
	case "SELL":
		sideType = binance.SideTypeSell
	default:
		return OrderResult{}, fmt.Errorf("unsupported order side: %s", side)
	}

	resp, err := b.client.NewCreateOrderService().
		Symbol(NormalizeSymbol(symbol)).
		Side(sideType).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(quantity, 'f', 8, 64)).
		Do(ctx)
	if err != nil {
		return OrderResult{}, &GatewayError{Exchange: b.Name(), Op: "submit order", Err: err}
	}

	filledQty, _ := strconv.ParseFloat(resp.ExecutedQuantity, 64)
	quoteQty, _ := strconv.ParseFloat(resp.CummulativeQuoteQuantity, 64)
	avgPrice := 0.0
	if filledQty > 0 {
		avgPrice = quoteQty / filledQty
	}

	return OrderResult{
		OrderID:   strconv.FormatInt(resp.OrderID, 10),
		Status:    string(resp.Status),
		FilledQty: filledQty,
		AvgPrice:  avgPrice,
		Timestamp: time.UnixMilli(resp.TransactTime).UTC(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
	}, nil
}
