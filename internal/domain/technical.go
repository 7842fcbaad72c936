package domain

import "time"

// TechnicalSnapshot holds the indicators derived from one history series.
// An indicator is nil when the series is too short to compute it.
type TechnicalSnapshot struct {
	Symbol       string    `json:"symbol"`
	Period       string    `json:"period"`
	Bars         int       `json:"bars"`
	LastClose    float64   `json:"last_close"`
	SMA20        *float64  `json:"sma_20"`
	SMA50        *float64  `json:"sma_50"`
	Volatility20 *float64  `json:"volatility_20"`
	RSI14        *float64  `json:"rsi_14"`
	MACD         *float64  `json:"macd"`
	MACDSignal   *float64  `json:"macd_signal"`
	Change1D     *float64  `json:"change_1d_pct"`
	Change5D     *float64  `json:"change_5d_pct"`
	Change20D    *float64  `json:"change_20d_pct"`
	ComputedAt   time.Time `json:"computed_at"`
}

func (s TechnicalSnapshot) Clone() TechnicalSnapshot {
	out := s
	for _, f := range []**float64{
		&out.SMA20, &out.SMA50, &out.Volatility20, &out.RSI14,
		&out.MACD, &out.MACDSignal, &out.Change1D, &out.Change5D, &out.Change20D,
	} {
		*f = cloneFloat(*f)
	}
	return out
}
