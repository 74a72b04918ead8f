// Package indicator
package indicator

import (
	"math"

	"goldentrader/internal/candle"
)

// Set holds the derived indicator values for a single candle. Values are
// NaN while their trailing window has not filled yet.
type Set struct {
	MAShort    float64 `json:"ma_short"`
	MALong     float64 `json:"ma_long"`
	RSI        float64 `json:"rsi"`
	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`
	VolumeMA   float64 `json:"volume_ma"`
}

// Defined reports whether an indicator value is usable (window filled).
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// Params configures the indicator pipeline. Only the moving-average
// periods vary per strategy; the auxiliary windows are fixed defaults.
type Params struct {
	ShortPeriod  int
	LongPeriod   int
	RSIPeriod    int
	BBPeriod     int
	BBStdDev     float64
	MACDFast     int
	MACDSlow     int
	MACDSign     int
	VolumePeriod int
}

// DefaultParams returns the standard parameter set for the given
// moving-average periods: RSI 14, Bollinger 20/2, MACD 12/26/9, volume MA 20.
func DefaultParams(shortPeriod, longPeriod int) Params {
	return Params{
		ShortPeriod:  shortPeriod,
		LongPeriod:   longPeriod,
		RSIPeriod:    14,
		BBPeriod:     20,
		BBStdDev:     2,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSign:     9,
		VolumePeriod: 20,
	}
}

// Compute runs the full indicator pipeline over a candle sequence and
// returns one Set per candle, aligned 1:1 with the input. Each indicator
// is computed independently over its own trailing window; no state is
// carried across calls.
func Compute(candles []candle.Candle, p Params) []Set {
	n := len(candles)
	sets := make([]Set, n)
	if n == 0 {
		return sets
	}

	closes := candle.Closes(candles)
	volumes := candle.Volumes(candles)

	maShort := CalculateSMA(closes, p.ShortPeriod)
	maLong := CalculateSMA(closes, p.LongPeriod)
	rsi := CalculateRSI(closes, p.RSIPeriod)
	bb := CalculateBollingerBands(closes, p.BBPeriod, p.BBStdDev)
	macd := CalculateMACD(closes, p.MACDFast, p.MACDSlow, p.MACDSign)
	volumeMA := CalculateSMA(volumes, p.VolumePeriod)

	var bbUpper, bbMiddle, bbLower []float64
	if bb != nil {
		bbUpper, bbMiddle, bbLower = bb.Upper, bb.Middle, bb.Lower
	}
	var macdLine, macdSignal, macdHist []float64
	if macd != nil {
		macdLine, macdSignal, macdHist = macd.MACD, macd.Signal, macd.Histogram
	}

	at := func(series []float64, i int) float64 {
		if i >= len(series) {
			return math.NaN()
		}
		return series[i]
	}

	for i := 0; i < n; i++ {
		sets[i] = Set{
			MAShort:    at(maShort, i),
			MALong:     at(maLong, i),
			RSI:        at(rsi, i),
			BBUpper:    at(bbUpper, i),
			BBMiddle:   at(bbMiddle, i),
			BBLower:    at(bbLower, i),
			MACD:       at(macdLine, i),
			MACDSignal: at(macdSignal, i),
			MACDHist:   at(macdHist, i),
			VolumeMA:   at(volumeMA, i),
		}
	}

	return sets
}
