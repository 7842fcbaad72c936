package ta

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SMA returns the mean of the last n values.
func SMA(values []float64, n int) (float64, bool) {
	if n <= 0 || len(values) < n {
		return 0, false
	}
	return stat.Mean(values[len(values)-n:], nil), true
}

// Volatility returns the sample standard deviation of the last n values.
func Volatility(values []float64, n int) (float64, bool) {
	if n < 2 || len(values) < n {
		return 0, false
	}
	return stat.StdDev(values[len(values)-n:], nil), true
}

// RSI uses plain averages of gains and losses over the last period deltas,
// so it needs period+1 values.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	window := closes[len(closes)-period-1:]
	var gainSum, lossSum float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	return rsiFromAvg(gainSum/float64(period), lossSum/float64(period)), true
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// EMASeries seeds with the SMA of the first period values. Entries before
// the seed are NaN.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) < period {
		return out
	}
	out[period-1] = stat.Mean(values[:period], nil)
	alpha := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the latest MACD line (EMA fast minus EMA slow) and its signal
// EMA. The line needs slow values; the signal needs slow+signal-1.
func MACD(values []float64, fast, slow, signal int) (macd float64, macdOK bool, sig float64, sigOK bool) {
	if len(values) < slow || fast >= slow {
		return 0, false, 0, false
	}
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)

	line := make([]float64, 0, len(values)-slow+1)
	for i := slow - 1; i < len(values); i++ {
		line = append(line, fastEMA[i]-slowEMA[i])
	}
	macd = line[len(line)-1]

	sigSeries := EMASeries(line, signal)
	if len(sigSeries) == 0 || math.IsNaN(sigSeries[len(sigSeries)-1]) {
		return macd, true, 0, false
	}
	return macd, true, sigSeries[len(sigSeries)-1], true
}

// PercentChange is the change over the last k steps in percent. It is absent
// when fewer than k+1 values exist or the base is zero.
func PercentChange(values []float64, k int) (float64, bool) {
	if k <= 0 || len(values) < k+1 {
		return 0, false
	}
	base := values[len(values)-1-k]
	if base == 0 {
		return 0, false
	}
	return (values[len(values)-1] - base) / base * 100, true
}
