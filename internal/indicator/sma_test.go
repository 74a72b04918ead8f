package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSMA(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		period   int
		expected []float64
		isNil    bool
	}{
		{
			name:     "Basic SMA",
			values:   []float64{1, 2, 3, 4, 5},
			period:   3,
			expected: []float64{math.NaN(), math.NaN(), 2, 3, 4},
		},
		{
			name:     "Period equals length",
			values:   []float64{2, 4, 6},
			period:   3,
			expected: []float64{math.NaN(), math.NaN(), 4},
		},
		{
			name:     "Period of one mirrors input",
			values:   []float64{7, 8, 9},
			period:   1,
			expected: []float64{7, 8, 9},
		},
		{
			name:   "Insufficient data",
			values: []float64{1, 2},
			period: 3,
			isNil:  true,
		},
		{
			name:   "Invalid period",
			values: []float64{1, 2, 3},
			period: 0,
			isNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSMA(tt.values, tt.period)
			if tt.isNil {
				assert.Nil(t, result)
				return
			}
			assert.Equal(t, len(tt.expected), len(result))
			for i := range tt.expected {
				if math.IsNaN(tt.expected[i]) {
					assert.True(t, math.IsNaN(result[i]), "Expected NaN at index %d", i)
				} else {
					assert.InDelta(t, tt.expected[i], result[i], 1e-9, "SMA mismatch at index %d", i)
				}
			}
		})
	}
}

func TestCalculateEMA(t *testing.T) {
	t.Run("SMA seeded", func(t *testing.T) {
		result := CalculateEMA([]float64{1, 2, 3, 4, 5}, 3)
		assert.Len(t, result, 5)
		assert.True(t, math.IsNaN(result[0]))
		assert.True(t, math.IsNaN(result[1]))
		assert.InDelta(t, 2.0, result[2], 1e-9)
		assert.InDelta(t, 3.0, result[3], 1e-9)
		assert.InDelta(t, 4.0, result[4], 1e-9)
	})

	t.Run("Smoothing factor", func(t *testing.T) {
		result := CalculateEMA([]float64{2, 4, 6, 8, 12, 14, 16, 18, 20}, 5)
		// Seed is the SMA of the first 5 values, then alpha = 1/3.
		assert.InDelta(t, 6.4, result[4], 1e-9)
		assert.InDelta(t, 8.9333, result[5], 0.001)
		assert.InDelta(t, 11.2889, result[6], 0.001)
		assert.InDelta(t, 13.5259, result[7], 0.001)
		assert.InDelta(t, 15.6840, result[8], 0.001)
	})

	t.Run("Insufficient data", func(t *testing.T) {
		assert.Nil(t, CalculateEMA([]float64{1, 2}, 3))
	})

	t.Run("Invalid period", func(t *testing.T) {
		assert.Nil(t, CalculateEMA([]float64{1, 2, 3}, -1))
	})
}
