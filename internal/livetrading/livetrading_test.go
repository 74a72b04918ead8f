package livetrading

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldentrader/internal/exchange"
	"goldentrader/internal/ledger"
	"goldentrader/internal/position"
)

var execTime = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newExecutor(free float64) (*LiveExecutor, *exchange.MockExchange, *ledger.Ledger) {
	mock := exchange.NewMockExchange()
	mock.FreeBalances["USDT"] = free
	led := ledger.New(10000, 0.9)
	exec := &LiveExecutor{
		Exchange:   mock,
		Ledger:     led,
		Symbol:     "BTCUSDT",
		Allocation: 0.9,
	}
	return exec, mock, led
}

func buyIntent(price float64) position.Intent {
	return position.Intent{
		Action:     position.Buy,
		Reason:     position.ReasonSignal,
		Price:      price,
		StopLoss:   price * 0.98,
		TakeProfit: price * 1.05,
	}
}

func TestExecuteBuyConfirmsBeforeRecording(t *testing.T) {
	exec, mock, led := newExecutor(20000)
	mock.FillPrice = 100

	require.NoError(t, exec.ExecuteBuy(context.Background(), buyIntent(100), execTime))

	require.Len(t, mock.SubmittedOrders, 1)
	assert.Equal(t, "BUY", mock.SubmittedOrders[0].Side)
	assert.InDelta(t, 90.0, mock.SubmittedOrders[0].Quantity, 1e-9)

	pos := led.Position()
	assert.Equal(t, ledger.Long, pos.Side)
	assert.InDelta(t, 100.0, pos.EntryPrice, 1e-9)
}

func TestExecuteBuyUsesFillPrice(t *testing.T) {
	exec, mock, led := newExecutor(20000)
	mock.FillPrice = 100.5 // slippage against the intent price

	require.NoError(t, exec.ExecuteBuy(context.Background(), buyIntent(100), execTime))
	assert.InDelta(t, 100.5, led.Position().EntryPrice, 1e-9)
}

func TestExecuteBuyInsufficientExchangeBalance(t *testing.T) {
	exec, mock, led := newExecutor(100)
	mock.FillPrice = 100

	err := exec.ExecuteBuy(context.Background(), buyIntent(100), execTime)
	assert.Error(t, err)
	assert.Empty(t, mock.SubmittedOrders, "no order without funds")
	assert.Equal(t, ledger.Flat, led.Position().Side)
}

func TestExecuteBuyOrderFailureLeavesLedgerUntouched(t *testing.T) {
	exec, mock, led := newExecutor(20000)
	mock.FailOrder = true

	err := exec.ExecuteBuy(context.Background(), buyIntent(100), execTime)
	assert.True(t, exchange.IsGatewayError(err))
	assert.Equal(t, ledger.Flat, led.Position().Side)
	assert.Empty(t, led.Trades())
}

func TestExecuteSellConfirmsBeforeRecording(t *testing.T) {
	exec, mock, led := newExecutor(20000)
	mock.FillPrice = 100
	require.NoError(t, exec.ExecuteBuy(context.Background(), buyIntent(100), execTime))

	mock.FillPrice = 110
	sell := position.Intent{Action: position.Sell, Reason: position.ReasonSignal, Price: 110}
	require.NoError(t, exec.ExecuteSell(context.Background(), sell, execTime.Add(time.Hour)))

	require.Len(t, mock.SubmittedOrders, 2)
	assert.Equal(t, "SELL", mock.SubmittedOrders[1].Side)
	assert.Equal(t, ledger.Flat, led.Position().Side)

	trades := led.Trades()
	require.Len(t, trades, 2)
	assert.InDelta(t, 110.0, trades[1].Price, 1e-9)
	assert.Greater(t, trades[1].RealizedProfit, 0.0)
}

func TestExecuteSellWhileFlat(t *testing.T) {
	exec, mock, _ := newExecutor(20000)
	sell := position.Intent{Action: position.Sell, Reason: position.ReasonSignal, Price: 110}
	err := exec.ExecuteSell(context.Background(), sell, execTime)
	assert.ErrorIs(t, err, ledger.ErrInvalidTransition)
	assert.Empty(t, mock.SubmittedOrders)
}

func TestExecuteSellOrderFailureKeepsPosition(t *testing.T) {
	exec, mock, led := newExecutor(20000)
	mock.FillPrice = 100
	require.NoError(t, exec.ExecuteBuy(context.Background(), buyIntent(100), execTime))

	mock.FailOrder = true
	sell := position.Intent{Action: position.Sell, Reason: position.ReasonStopLoss, Price: 95}
	err := exec.ExecuteSell(context.Background(), sell, execTime.Add(time.Hour))
	assert.True(t, exchange.IsGatewayError(err))
	assert.Equal(t, ledger.Long, led.Position().Side, "position survives a failed exit")
}
