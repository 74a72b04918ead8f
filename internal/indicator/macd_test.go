package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMACD(t *testing.T) {
	t.Run("MACD equals fast EMA minus slow EMA", func(t *testing.T) {
		prices := []float64{10, 11, 13, 12, 14, 16, 15, 17, 19, 18, 20, 22, 21, 23, 25}
		result := CalculateMACD(prices, 3, 6, 4)
		require.NotNil(t, result)

		fast := CalculateEMA(prices, 3)
		slow := CalculateEMA(prices, 6)
		for i := range prices {
			if i < 5 {
				assert.True(t, math.IsNaN(result.MACD[i]), "Expected NaN at index %d", i)
				continue
			}
			assert.InDelta(t, fast[i]-slow[i], result.MACD[i], 1e-9, "MACD mismatch at index %d", i)
		}
	})

	t.Run("Signal and histogram alignment", func(t *testing.T) {
		prices := []float64{10, 11, 13, 12, 14, 16, 15, 17, 19, 18, 20, 22, 21, 23, 25}
		result := CalculateMACD(prices, 3, 6, 4)
		require.NotNil(t, result)

		// Signal becomes defined signalPeriod-1 elements after the MACD line.
		for i := 0; i < 8; i++ {
			assert.True(t, math.IsNaN(result.Signal[i]), "Expected NaN signal at index %d", i)
		}
		for i := 8; i < len(prices); i++ {
			assert.False(t, math.IsNaN(result.Signal[i]), "Expected defined signal at index %d", i)
			assert.InDelta(t, result.MACD[i]-result.Signal[i], result.Histogram[i], 1e-9)
		}
	})

	t.Run("Constant prices yield a flat MACD", func(t *testing.T) {
		prices := make([]float64, 20)
		for i := range prices {
			prices[i] = 100
		}
		result := CalculateMACD(prices, 3, 6, 4)
		require.NotNil(t, result)
		for i := 8; i < len(prices); i++ {
			assert.InDelta(t, 0.0, result.MACD[i], 1e-9)
			assert.InDelta(t, 0.0, result.Signal[i], 1e-9)
			assert.InDelta(t, 0.0, result.Histogram[i], 1e-9)
		}
	})

	t.Run("Insufficient data", func(t *testing.T) {
		assert.Nil(t, CalculateMACD([]float64{1, 2, 3}, 3, 6, 4))
	})

	t.Run("Fast period must be below slow", func(t *testing.T) {
		prices := make([]float64, 30)
		assert.Nil(t, CalculateMACD(prices, 6, 6, 4))
	})
}
