package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"investor-livedata/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider is the primary tier: daily bars from the chart API plus
// descriptive fields from the quote API.
type YahooProvider struct {
	client       *http.Client
	baseURL      string
	tracer       trace.Tracer
	clock        clockwork.Clock
	fundamentals bool
}

// NewYahooProvider builds the primary source. Per-request deadlines come
// from the caller's context, so the client carries only a safety timeout.
func NewYahooProvider(baseURL string, tracer trace.Tracer) *YahooProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	return &YahooProvider{
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
		tracer:       tracer,
		clock:        clockwork.NewRealClock(),
		fundamentals: true,
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// FetchQuote returns the latest bar as a quote. A response without bars is
// reported as *domain.EmptyHistoryError carrying the metadata it did have.
func (p *YahooProvider) FetchQuote(ctx context.Context, req Request) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-quote", trace.WithAttributes(attribute.String("symbol", req.Symbol)))
	defer span.End()

	period := req.Period
	if period == "" {
		period = domain.DefaultQuotePeriod
	}

	meta, bars, err := p.fetchChart(ctx, req.Symbol, period)
	if err != nil {
		return nil, err
	}

	if p.fundamentals {
		if err := p.mergeFundamentals(ctx, req.Symbol, meta); err != nil {
			if errors.Is(err, domain.ErrRateLimited) {
				return nil, err
			}
			log.Debug("yahoo fundamentals unavailable", "symbol", req.Symbol, "err", err)
		}
	}

	if len(bars) == 0 {
		return nil, &domain.EmptyHistoryError{Symbol: req.Symbol, Meta: meta}
	}

	last := bars[len(bars)-1]
	if meta.PreviousClose == nil && len(bars) >= 2 {
		meta.PreviousClose = domain.Float(bars[len(bars)-2].Close)
	}

	q := &domain.Quote{
		Symbol:     req.Symbol,
		Name:       req.Symbol,
		Price:      last.Close,
		Volume:     last.Volume,
		DayHigh:    last.High,
		DayLow:     last.Low,
		DayOpen:    last.Open,
		Source:     p.Name(),
		Provenance: domain.ProvenancePrimary,
		FetchedAt:  p.clock.Now().UTC(),
	}
	q.ApplyMeta(meta)
	return q, nil
}

// FetchHistory returns daily bars for period. An empty series is not an
// error here; callers decide what too little data means.
func (p *YahooProvider) FetchHistory(ctx context.Context, symbol, period string) (*domain.HistorySeries, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-history", trace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("period", period),
	))
	defer span.End()

	_, bars, err := p.fetchChart(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	return &domain.HistorySeries{Symbol: symbol, Period: period, Bars: bars}, nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, period string) (*domain.QuoteMeta, []domain.Bar, error) {
	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", "1d")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), q.Encode())

	body, err := doGet(ctx, p.client, "yahoo", endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	return parseChart(symbol, body)
}

// parseChart reads a /v8/finance/chart payload. Bars whose close is null
// (halted sessions, partial days) are skipped.
func parseChart(symbol string, body []byte) (*domain.QuoteMeta, []domain.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, fmt.Errorf("parse chart for %s: invalid json: %w", symbol, domain.ErrProviderUnavailable)
	}

	if chartErr := gjson.GetBytes(body, "chart.error"); chartErr.Exists() && chartErr.Type != gjson.Null {
		code := chartErr.Get("code").String()
		desc := chartErr.Get("description").String()
		if strings.EqualFold(code, "Not Found") {
			return nil, nil, fmt.Errorf("chart %s: %s: %w", symbol, desc, domain.ErrSymbolNotFound)
		}
		return nil, nil, fmt.Errorf("chart %s: %s %s: %w", symbol, code, desc, domain.ErrProviderUnavailable)
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, nil, fmt.Errorf("chart %s: no result: %w", symbol, domain.ErrSymbolNotFound)
	}

	m := result.Get("meta")
	meta := &domain.QuoteMeta{
		Name:          firstNonEmpty(m.Get("longName").String(), m.Get("shortName").String()),
		Currency:      m.Get("currency").String(),
		PreviousClose: optionalFloat(m.Get("previousClose")),
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]domain.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		c := closes[i].Float()
		bars = append(bars, domain.Bar{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Open:   floatAt(opens, i),
			High:   floatAt(highs, i),
			Low:    floatAt(lows, i),
			Close:  c,
			Volume: intAt(volumes, i),
		})
	}
	return meta, bars, nil
}

// mergeFundamentals fills meta from /v7/finance/quote. Values already
// resolved from the chart are only replaced by non-empty ones.
func (p *YahooProvider) mergeFundamentals(ctx context.Context, symbol string, meta *domain.QuoteMeta) error {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", p.baseURL, url.QueryEscape(symbol))
	body, err := doGet(ctx, p.client, "yahoo", endpoint)
	if err != nil {
		return fmt.Errorf("fetch fundamentals for %s: %w", symbol, err)
	}

	r := gjson.GetBytes(body, "quoteResponse.result.0")
	if !r.Exists() {
		return fmt.Errorf("fundamentals %s: empty result", symbol)
	}

	if name := firstNonEmpty(r.Get("longName").String(), r.Get("shortName").String()); name != "" {
		meta.Name = name
	}
	if cur := r.Get("currency").String(); cur != "" {
		meta.Currency = cur
	}
	if st := r.Get("marketState"); st.Exists() {
		meta.MarketState = domain.ParseMarketState(st.String())
	}
	if pc := optionalFloat(r.Get("regularMarketPreviousClose")); pc != nil {
		meta.PreviousClose = pc
	}
	meta.MarketCap = optionalFloat(r.Get("marketCap"))
	meta.PERatio = optionalFloat(r.Get("trailingPE"))
	meta.DividendYield = optionalFloat(r.Get("dividendYield"))
	return nil
}

func optionalFloat(r gjson.Result) *float64 {
	if !r.Exists() || r.Type != gjson.Number {
		return nil
	}
	return domain.Float(r.Float())
}

// floatAt and intAt return nil for missing or null entries so a gap in the
// upstream arrays never turns into a made-up price or a zero volume.
func floatAt(values []gjson.Result, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return optionalFloat(values[i])
}

func intAt(values []gjson.Result, i int) *int64 {
	if i >= len(values) || values[i].Type != gjson.Number {
		return nil
	}
	return domain.Int(values[i].Int())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
