package indicator

import "math"

// BollingerResult holds the three Bollinger band series.
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// CalculateBollingerBands computes Bollinger bands over a trailing window:
// middle is the SMA, upper/lower are stdDev standard deviations away.
// The first period-1 elements are NaN. Returns nil on insufficient data.
func CalculateBollingerBands(prices []float64, period int, stdDev float64) *BollingerResult {
	if len(prices) < period || period <= 0 {
		return nil
	}
	n := len(prices)
	result := &BollingerResult{
		Upper:  make([]float64, n),
		Middle: make([]float64, n),
		Lower:  make([]float64, n),
	}
	for i := 0; i < period-1; i++ {
		result.Upper[i] = math.NaN()
		result.Middle[i] = math.NaN()
		result.Lower[i] = math.NaN()
	}
	for i := period - 1; i < n; i++ {
		window := prices[i-period+1 : i+1]
		var sum float64
		for _, p := range window {
			sum += p
		}
		mean := sum / float64(period)
		var variance float64
		for _, p := range window {
			variance += (p - mean) * (p - mean)
		}
		sigma := math.Sqrt(variance / float64(period))
		result.Middle[i] = mean
		result.Upper[i] = mean + stdDev*sigma
		result.Lower[i] = mean - stdDev*sigma
	}
	return result
}
