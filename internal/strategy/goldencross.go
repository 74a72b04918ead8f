package strategy

import (
	"goldentrader/internal/candle"
	"goldentrader/internal/indicator"
)

// GoldenCross trades short/long moving-average crossovers filtered by
// RSI, Bollinger bands, MACD crossovers and volume.
type GoldenCross struct {
	shortPeriod int
	longPeriod  int

	// Filter thresholds
	overbought   float64
	oversold     float64
	forceRSI     float64
	forceBBRatio float64
}

// NewGoldenCross creates the strategy with the given moving-average
// periods. Thresholds are fixed: RSI 70/30 filters, forced exit above
// RSI 80 or 2% beyond the upper Bollinger band.
func NewGoldenCross(shortPeriod, longPeriod int) *GoldenCross {
	return &GoldenCross{
		shortPeriod:  shortPeriod,
		longPeriod:   longPeriod,
		overbought:   70.0,
		oversold:     30.0,
		forceRSI:     80.0,
		forceBBRatio: 1.02,
	}
}

// Name returns the name of the strategy
func (s *GoldenCross) Name() string { return "Golden Cross" }

// ShortPeriod returns the short moving-average period
func (s *GoldenCross) ShortPeriod() int { return s.shortPeriod }

// LongPeriod returns the long moving-average period
func (s *GoldenCross) LongPeriod() int { return s.longPeriod }

// WarmupPeriod returns the number of candles needed before the first
// signal can be evaluated.
func (s *GoldenCross) WarmupPeriod() int { return s.longPeriod }

// Evaluate derives the signal for one candle from its indicator set and
// the previous candle's set. Any filter whose indicator window has not
// filled yet keeps its signal false.
func (s *GoldenCross) Evaluate(c candle.Candle, cur, prev indicator.Set) Signal {
	sig := Signal{Time: c.Timestamp}

	maDefined := indicator.Defined(cur.MAShort) && indicator.Defined(cur.MALong) &&
		indicator.Defined(prev.MAShort) && indicator.Defined(prev.MALong)
	if maDefined {
		sig.GoldenCross = cur.MAShort > cur.MALong && prev.MAShort <= prev.MALong
		sig.DeadCross = cur.MAShort < cur.MALong && prev.MAShort >= prev.MALong
	}

	macdDefined := indicator.Defined(cur.MACD) && indicator.Defined(cur.MACDSignal) &&
		indicator.Defined(prev.MACD) && indicator.Defined(prev.MACDSignal)
	macdBullish := macdDefined && cur.MACD > cur.MACDSignal && prev.MACD <= prev.MACDSignal
	macdBearish := macdDefined && cur.MACD < cur.MACDSignal && prev.MACD >= prev.MACDSignal

	volumeOK := indicator.Defined(cur.VolumeMA) && c.Volume > cur.VolumeMA

	rsiDefined := indicator.Defined(cur.RSI)
	bbDefined := indicator.Defined(cur.BBUpper) && indicator.Defined(cur.BBLower)

	sig.BuySignal = sig.GoldenCross &&
		rsiDefined && cur.RSI <= s.overbought &&
		bbDefined && c.Close <= cur.BBUpper &&
		macdBullish &&
		volumeOK

	sig.SellSignal = sig.DeadCross &&
		rsiDefined && cur.RSI >= s.oversold &&
		bbDefined && c.Close >= cur.BBLower &&
		macdBearish &&
		volumeOK

	// Forced exit bypasses the sell filters: extreme overbought RSI or a
	// close well beyond the upper Bollinger band.
	sig.ForceSell = (rsiDefined && cur.RSI > s.forceRSI) ||
		(indicator.Defined(cur.BBUpper) && c.Close > cur.BBUpper*s.forceBBRatio)

	return sig
}

// EvaluateAll evaluates signals for a full candle sequence. sets must be
// aligned 1:1 with candles. Index 0 has no lookback and is all false.
func (s *GoldenCross) EvaluateAll(candles []candle.Candle, sets []indicator.Set) []Signal {
	signals := make([]Signal, len(candles))
	for i := range candles {
		if i == 0 {
			signals[i] = Signal{Time: candles[i].Timestamp}
			continue
		}
		signals[i] = s.Evaluate(candles[i], sets[i], sets[i-1])
	}
	return signals
}
