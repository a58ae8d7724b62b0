package indicators

// RSI returns the relative strength index of the last period changes.
//
// Gains and losses are plain means over the window. The result is 50 when
// there are fewer than period+1 values, 100 when the mean loss is zero, and
// 0 when the mean gain is zero while losses exist.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// RSISeries returns the RSI at every index of closes, using only the data
// available up to that index.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range closes {
		out[i] = RSI(closes[:i+1], period)
	}
	return out
}
