package domain

import "time"

// Bar is a single daily OHLCV bar. Close is always present; the other
// fields are nil when the provider left them null for the session.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   *float64  `json:"open"`
	High   *float64  `json:"high"`
	Low    *float64  `json:"low"`
	Close  float64   `json:"close"`
	Volume *int64    `json:"volume"`
}

// HistorySeries is an ordered (oldest first) run of bars for one symbol.
type HistorySeries struct {
	Symbol string `json:"symbol"`
	Period string `json:"period"`
	Bars   []Bar  `json:"bars"`
}

func (h *HistorySeries) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Bars)
}

// Latest returns the most recent bar.
func (h *HistorySeries) Latest() (Bar, bool) {
	if h.Len() == 0 {
		return Bar{}, false
	}
	return h.Bars[len(h.Bars)-1], true
}

// Closes returns the close prices in chronological order.
func (h *HistorySeries) Closes() []float64 {
	if h.Len() == 0 {
		return nil
	}
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Close
	}
	return out
}
