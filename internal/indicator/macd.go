package indicator

import "math"

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// CalculateMACD computes the MACD line (fast EMA minus slow EMA), a
// signal EMA of the MACD line, and their difference. The MACD line is NaN
// before slowPeriod-1 and the signal line for a further signalPeriod-1
// elements. Returns nil when there is not enough data for the slow EMA.
func CalculateMACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) *MACDResult {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 || fastPeriod >= slowPeriod {
		return nil
	}
	if len(prices) < slowPeriod {
		return nil
	}
	n := len(prices)
	fast := CalculateEMA(prices, fastPeriod)
	slow := CalculateEMA(prices, slowPeriod)

	result := &MACDResult{
		MACD:      make([]float64, n),
		Signal:    make([]float64, n),
		Histogram: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			result.MACD[i] = math.NaN()
		} else {
			result.MACD[i] = fast[i] - slow[i]
		}
		result.Signal[i] = math.NaN()
		result.Histogram[i] = math.NaN()
	}

	// Signal line is an EMA over the defined portion of the MACD line.
	defined := result.MACD[slowPeriod-1:]
	signal := CalculateEMA(defined, signalPeriod)
	if signal == nil {
		return result
	}
	for i, v := range signal {
		idx := slowPeriod - 1 + i
		result.Signal[idx] = v
		if !math.IsNaN(v) {
			result.Histogram[idx] = result.MACD[idx] - v
		}
	}
	return result
}
