package ledger

import "math"

// annualizationFactor assumes ~252 trading periods per year.
const annualizationFactor = 252

// PerformanceStats is the derived snapshot exposed to monitoring and
// reporting. Zero-division cases report 0 instead of erroring: a win
// rate with no trades, a Sharpe ratio with zero variance and a profit
// factor with no losing trades are all 0 by policy.
type PerformanceStats struct {
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	TotalReturnPct float64 `json:"total_return_pct"`
	WinRatePct     float64 `json:"win_rate_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	ProfitFactor   float64 `json:"profit_factor"`
}

// Stats recomputes the performance statistics from the trade log and
// equity curve. It is a pure read and safe to call from a monitoring
// goroutine.
func (l *Ledger) Stats() PerformanceStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := PerformanceStats{
		TotalTrades:   l.closedTrades,
		WinningTrades: l.wins,
		LosingTrades:  l.losses,
	}

	if l.initialBalance > 0 {
		stats.TotalReturnPct = (l.balance - l.initialBalance) / l.initialBalance * 100
	}
	if l.closedTrades > 0 {
		stats.WinRatePct = float64(l.wins) / float64(l.closedTrades) * 100
	}

	stats.MaxDrawdownPct = maxDrawdownPct(l.equityCurve)
	stats.SharpeRatio = sharpeRatio(l.equityCurve)
	stats.ProfitFactor = profitFactor(l.trades)

	return stats
}

// maxDrawdownPct computes the largest peak-relative equity decline in
// percent, 0 for an empty series.
func maxDrawdownPct(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Equity
	maxDD := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - p.Equity) / peak * 100
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// sharpeRatio computes mean/stddev of per-step equity returns annualized
// by sqrt(252), 0 when the variance is undefined or zero.
func sharpeRatio(curve []EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	std := math.Sqrt(variance / float64(len(returns)))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(annualizationFactor)
}

// profitFactor computes gross wins over gross losses across closed
// trades, 0 when there are no losing trades.
func profitFactor(trades []Trade) float64 {
	var totalWins, totalLosses float64
	for _, t := range trades {
		if t.Side != Sell {
			continue
		}
		if t.RealizedProfit > 0 {
			totalWins += t.RealizedProfit
		} else {
			totalLosses += -t.RealizedProfit
		}
	}
	if totalLosses == 0 {
		return 0
	}
	return totalWins / totalLosses
}
