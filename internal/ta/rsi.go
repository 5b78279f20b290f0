// Package ta computes technical indicators over price series.
package ta

// MinPoints is the smallest series the default 14-period RSI accepts.
const MinPoints = 15

// RSI returns the n-period Relative Strength Index of the latest point,
// using Wilder's smoothing. It needs at least n+1 prices; shorter series
// (or a non-positive period) return false.
func RSI(prices []float64, n int) (float64, bool) {
	if n <= 0 || len(prices) < n+1 {
		return 0, false
	}

	var gain, loss float64
	for i := 1; i <= n; i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(n)
	avgLoss := loss / float64(n)

	for i := n + 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		var g, l float64
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(n-1) + g) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + l) / float64(n)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}
