package domain

import (
	"strings"
	"time"
)

// MarketState mirrors the exchange session reported by the primary provider.
type MarketState string

const (
	MarketRegular  MarketState = "REGULAR"
	MarketClosed   MarketState = "CLOSED"
	MarketPre      MarketState = "PRE"
	MarketPrePre   MarketState = "PREPRE"
	MarketPost     MarketState = "POST"
	MarketPostPost MarketState = "POSTPOST"
	MarketUnknown  MarketState = "UNKNOWN"
)

// ParseMarketState maps a provider string onto a known state, UNKNOWN otherwise.
func ParseMarketState(s string) MarketState {
	switch st := MarketState(strings.ToUpper(strings.TrimSpace(s))); st {
	case MarketRegular, MarketClosed, MarketPre, MarketPrePre, MarketPost, MarketPostPost:
		return st
	default:
		return MarketUnknown
	}
}

// Provenance records which tier of the provider chain produced a quote.
type Provenance string

const (
	ProvenancePrimary  Provenance = "primary"
	ProvenanceFallback Provenance = "fallback"
)

// Quote is the latest market snapshot for a symbol.
//
// Optional numbers are pointers: nil means the source could not resolve the
// field, which is distinct from a real zero.
type Quote struct {
	Symbol        string      `json:"symbol"`
	Name          string      `json:"name"`
	Price         float64     `json:"current_price"`
	PreviousClose *float64    `json:"previous_close"`
	Change        *float64    `json:"change"`
	ChangePercent *float64    `json:"change_percent"`
	Volume        *int64      `json:"volume"`
	DayHigh       *float64    `json:"high"`
	DayLow        *float64    `json:"low"`
	DayOpen       *float64    `json:"open"`
	MarketCap     *float64    `json:"market_cap"`
	PERatio       *float64    `json:"pe_ratio"`
	DividendYield *float64    `json:"dividend_yield"`
	MarketState   MarketState `json:"market_state"`
	IsMarketOpen  bool        `json:"is_market_open"`
	Currency      string      `json:"currency,omitempty"`
	Source        string      `json:"source"`
	Provenance    Provenance  `json:"provenance"`
	FetchedAt     time.Time   `json:"last_updated"`
}

// IsFallback reports whether the quote came from the price-only tier.
func (q *Quote) IsFallback() bool {
	return q.Provenance == ProvenanceFallback
}

// Clone returns a deep copy so callers never share optional fields.
func (q Quote) Clone() Quote {
	out := q
	out.PreviousClose = cloneFloat(q.PreviousClose)
	out.Change = cloneFloat(q.Change)
	out.ChangePercent = cloneFloat(q.ChangePercent)
	out.DayHigh = cloneFloat(q.DayHigh)
	out.DayLow = cloneFloat(q.DayLow)
	out.DayOpen = cloneFloat(q.DayOpen)
	out.MarketCap = cloneFloat(q.MarketCap)
	out.PERatio = cloneFloat(q.PERatio)
	out.DividendYield = cloneFloat(q.DividendYield)
	if q.Volume != nil {
		out.Volume = Int(*q.Volume)
	}
	return out
}

// QuoteMeta is descriptive data the primary provider returns next to bars.
type QuoteMeta struct {
	Name          string
	Currency      string
	MarketState   MarketState
	PreviousClose *float64
	MarketCap     *float64
	PERatio       *float64
	DividendYield *float64
}

// ApplyMeta copies descriptive metadata onto q and derives the change fields
// from PreviousClose when both sides are known.
func (q *Quote) ApplyMeta(meta *QuoteMeta) {
	q.MarketState = MarketUnknown
	if meta == nil {
		q.deriveChange()
		return
	}
	if meta.Name != "" {
		q.Name = meta.Name
	}
	q.Currency = meta.Currency
	if meta.MarketState != "" {
		q.MarketState = meta.MarketState
	}
	q.IsMarketOpen = q.MarketState == MarketRegular
	q.MarketCap = meta.MarketCap
	q.PERatio = meta.PERatio
	q.DividendYield = meta.DividendYield
	if meta.PreviousClose != nil {
		q.PreviousClose = Float(*meta.PreviousClose)
	}
	q.deriveChange()
}

func (q *Quote) deriveChange() {
	q.Change, q.ChangePercent = nil, nil
	if q.PreviousClose == nil {
		return
	}
	prev := *q.PreviousClose
	q.Change = Float(q.Price - prev)
	if prev > 0 {
		q.ChangePercent = Float((q.Price - prev) / prev * 100)
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
