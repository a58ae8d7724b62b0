package backtest

// computeMetrics derives the summary statistics. Profit factor is gross
// profit over gross loss and falls back to gross profit when nothing lost.
func computeMetrics(trades []Trade, equity []float64, initial, final float64) Metrics {
	var m Metrics
	m.TotalTrades = len(trades)
	for _, t := range trades {
		switch {
		case t.Profit > 0:
			m.WinningTrades++
			m.GrossProfit += t.Profit
		case t.Profit < 0:
			m.LosingTrades++
			m.GrossLoss -= t.Profit
		}
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}
	if m.GrossLoss > 0 {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	} else {
		m.ProfitFactor = m.GrossProfit
	}
	m.MaxDrawdown = maxDrawdown(equity)
	if initial > 0 {
		m.TotalReturn = (final/initial - 1) * 100
	}
	return m
}

// maxDrawdown is the largest fall from a running peak, in percent.
func maxDrawdown(equity []float64) float64 {
	var peak, dd float64
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd = max(dd, (peak-v)/peak*100)
		}
	}
	return dd
}
