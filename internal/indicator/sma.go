package indicator

import "math"

// CalculateSMA computes the simple moving average of values over a
// trailing window. The first period-1 elements are NaN. Returns nil when
// there is not enough data or the period is invalid.
func CalculateSMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}
	sma := make([]float64, len(values))
	for i := 0; i < period-1; i++ {
		sma[i] = math.NaN()
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	sma[period-1] = sum / float64(period)
	for i := period; i < len(values); i++ {
		sum += values[i] - values[i-period]
		sma[i] = sum / float64(period)
	}
	return sma
}

// CalculateEMA computes the exponential moving average with smoothing
// 2/(period+1), seeded with the SMA of the first period values. The first
// period-1 elements are NaN. Returns nil when there is not enough data.
func CalculateEMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}
	ema := make([]float64, len(values))
	for i := 0; i < period-1; i++ {
		ema[i] = math.NaN()
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema[period-1] = sum / float64(period)
	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema[i] = (values[i]-ema[i-1])*multiplier + ema[i-1]
	}
	return ema
}
