package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"goldentrader/internal/candle"
)

// MockExchange is an in-memory Exchange for tests and dry runs. Orders
// always fill at the configured price; failures can be injected per
// operation.
type MockExchange struct {
	mu sync.Mutex

	Candles      []candle.Candle
	FreeBalances map[string]float64
	FillPrice    float64

	FailFetch   bool
	FailBalance bool
	FailOrder   bool

	SubmittedOrders []OrderResult
	nextOrderID     int
}

func NewMockExchange() *MockExchange {
	return &MockExchange{
		FreeBalances: make(map[string]float64),
	}
}

func (m *MockExchange) Name() string { return "mock" }

func (m *MockExchange) FetchLatestCandles(_ context.Context, _, _ string, count int) ([]candle.Candle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailFetch {
		return nil, &GatewayError{Exchange: m.Name(), Op: "fetch candles", Err: errors.New("injected failure")}
	}
	if count >= len(m.Candles) {
		out := make([]candle.Candle, len(m.Candles))
		copy(out, m.Candles)
		return out, nil
	}
	out := make([]candle.Candle, count)
	copy(out, m.Candles[len(m.Candles)-count:])
	return out, nil
}

func (m *MockExchange) FetchFreeBalance(_ context.Context, asset string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailBalance {
		return 0, &GatewayError{Exchange: m.Name(), Op: "fetch balance", Err: errors.New("injected failure")}
	}
	return m.FreeBalances[asset], nil
}

func (m *MockExchange) SubmitMarketOrder(_ context.Context, symbol, side string, quantity float64) (OrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOrder {
		return OrderResult{}, &GatewayError{Exchange: m.Name(), Op: "submit order", Err: errors.New("injected failure")}
	}
	m.nextOrderID++
	result := OrderResult{
		OrderID:   fmt.Sprintf("mock-%d", m.nextOrderID),
		Status:    "FILLED",
		FilledQty: quantity,
		AvgPrice:  m.FillPrice,
		Timestamp: time.Now().UTC(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
	}
	m.SubmittedOrders = append(m.SubmittedOrders, result)
	return result, nil
}
