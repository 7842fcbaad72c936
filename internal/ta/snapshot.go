package ta

import (
	"time"

	"investor-livedata/internal/domain"
)

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	rsiPeriod  = 14
)

// Snapshot computes every indicator the series is long enough for.
func Snapshot(series *domain.HistorySeries, now time.Time) domain.TechnicalSnapshot {
	snap := domain.TechnicalSnapshot{ComputedAt: now.UTC()}
	if series == nil {
		return snap
	}
	snap.Symbol = series.Symbol
	snap.Period = series.Period
	snap.Bars = series.Len()

	closes := series.Closes()
	if len(closes) == 0 {
		return snap
	}
	snap.LastClose = closes[len(closes)-1]

	snap.SMA20 = opt(SMA(closes, 20))
	snap.SMA50 = opt(SMA(closes, 50))
	snap.Volatility20 = opt(Volatility(closes, 20))
	snap.RSI14 = opt(RSI(closes, rsiPeriod))

	macd, macdOK, sig, sigOK := MACD(closes, macdFast, macdSlow, macdSignal)
	snap.MACD = opt(macd, macdOK)
	snap.MACDSignal = opt(sig, sigOK)

	snap.Change1D = opt(PercentChange(closes, 1))
	snap.Change5D = opt(PercentChange(closes, 5))
	snap.Change20D = opt(PercentChange(closes, 20))
	return snap
}

func opt(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return domain.Float(v)
}
