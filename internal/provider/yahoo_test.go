package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"investor-livedata/internal/domain"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

const chartAAPL = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"AAPL","longName":"Apple Inc.","previousClose":100.0},
"timestamp":[1700000000,1700086400,1700172800],
"indicators":{"quote":[{"open":[98,99,null],"high":[101,102,null],"low":[97,98,null],"close":[99.5,103,null],"volume":[1000,2500000,null]}]}}],"error":null}}`

const quoteAAPL = `{"quoteResponse":{"result":[{"symbol":"AAPL","longName":"Apple Inc.","marketState":"REGULAR","currency":"USD",
"regularMarketPreviousClose":100.0,"marketCap":3000000000000,"trailingPE":31.2,"dividendYield":0.44}],"error":null}}`

func newTestYahoo(t *testing.T, fn roundTripFunc) *YahooProvider {
	t.Helper()
	p := NewYahooProvider("http://example", trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: fn}
	p.clock = clockwork.NewFakeClockAt(time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC))
	return p
}

func TestYahooFetchQuote(t *testing.T) {
	t.Parallel()

	p := newTestYahoo(t, func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasPrefix(req.URL.Path, "/v8/finance/chart/AAPL"):
			if req.URL.Query().Get("range") != "1d" || req.URL.Query().Get("interval") != "1d" {
				t.Fatalf("unexpected query: %s", req.URL.RawQuery)
			}
			return jsonResponse(http.StatusOK, chartAAPL), nil
		case req.URL.Path == "/v7/finance/quote":
			return jsonResponse(http.StatusOK, quoteAAPL), nil
		}
		t.Fatalf("unexpected path: %s", req.URL.Path)
		return nil, nil
	})

	q, err := p.FetchQuote(context.Background(), Request{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 103 || q.Name != "Apple Inc." || q.Provenance != domain.ProvenancePrimary || q.Source != "yahoo" {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if q.Volume == nil || *q.Volume != 2500000 {
		t.Fatalf("expected volume 2500000, got %v", q.Volume)
	}
	if q.ChangePercent == nil || *q.ChangePercent != 3 {
		t.Fatalf("expected change percent 3, got %v", q.ChangePercent)
	}
	if q.Change == nil || *q.Change != 3 {
		t.Fatalf("expected change 3, got %v", q.Change)
	}
	if !q.IsMarketOpen || q.MarketState != domain.MarketRegular {
		t.Fatalf("expected open regular market, got %s", q.MarketState)
	}
	if q.PERatio == nil || *q.PERatio != 31.2 {
		t.Fatalf("expected pe ratio, got %v", q.PERatio)
	}
	if q.DayHigh == nil || *q.DayHigh != 102 {
		t.Fatalf("expected day high from last bar, got %v", q.DayHigh)
	}
}

func TestYahooFetchQuoteFundamentalsOptional(t *testing.T) {
	t.Parallel()

	p := newTestYahoo(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/v7/finance/quote" {
			return jsonResponse(http.StatusUnauthorized, `{"finance":{"error":{"code":"Unauthorized"}}}`), nil
		}
		return jsonResponse(http.StatusOK, chartAAPL), nil
	})

	q, err := p.FetchQuote(context.Background(), Request{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.MarketState != domain.MarketUnknown || q.IsMarketOpen {
		t.Fatalf("expected unknown market state, got %s", q.MarketState)
	}
	if q.ChangePercent == nil || *q.ChangePercent != 3 {
		t.Fatalf("expected change from chart previous close, got %v", q.ChangePercent)
	}
}

func TestYahooFetchQuoteEmptyHistory(t *testing.T) {
	t.Parallel()

	p := newTestYahoo(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/v7/finance/quote" {
			return jsonResponse(http.StatusOK, quoteAAPL), nil
		}
		return jsonResponse(http.StatusOK, `{"chart":{"result":[{"meta":{"currency":"USD"},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`), nil
	})

	_, err := p.FetchQuote(context.Background(), Request{Symbol: "AAPL"})
	var empty *domain.EmptyHistoryError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyHistoryError, got %v", err)
	}
	if empty.Meta == nil || empty.Meta.Name != "Apple Inc." || empty.Meta.PreviousClose == nil {
		t.Fatalf("expected metadata on empty history, got %+v", empty.Meta)
	}
}

func TestYahooStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, `Too Many Requests`, domain.ErrRateLimited},
		{"not found", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, domain.ErrSymbolNotFound},
		{"server error", http.StatusBadGateway, `bad gateway`, domain.ErrProviderUnavailable},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := newTestYahoo(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})
			_, err := p.FetchQuote(context.Background(), Request{Symbol: "ZZZZ"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseChartNotFoundWith200(t *testing.T) {
	t.Parallel()

	_, _, err := parseChart("ZZZZ", []byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`))
	if !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseChartSkipsNullCloses(t *testing.T) {
	t.Parallel()

	meta, bars, err := parseChart("AAPL", []byte(chartAAPL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Time.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("unexpected bar time: %v", bars[0].Time)
	}
	if meta.PreviousClose == nil || *meta.PreviousClose != 100 {
		t.Fatalf("expected previous close 100, got %v", meta.PreviousClose)
	}
}

const chartPartialBar = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"AAPL","previousClose":48.0},
"timestamp":[1700000000],
"indicators":{"quote":[{"open":[null],"high":[null],"low":[null],"close":[50],"volume":[null]}]}}],"error":null}}`

func TestParseChartKeepsMissingFieldsNil(t *testing.T) {
	t.Parallel()

	_, bars, err := parseChart("AAPL", []byte(chartPartialBar))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 50 {
		t.Fatalf("unexpected bars: %+v", bars)
	}
	b := bars[0]
	if b.Open != nil || b.High != nil || b.Low != nil || b.Volume != nil {
		t.Fatalf("null fields must stay nil, got open=%v high=%v low=%v volume=%v", b.Open, b.High, b.Low, b.Volume)
	}
}

func TestYahooFetchQuotePartialBarLeavesFieldsNil(t *testing.T) {
	t.Parallel()

	p := newTestYahoo(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/v7/finance/quote" {
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
		return jsonResponse(http.StatusOK, chartPartialBar), nil
	})

	q, err := p.FetchQuote(context.Background(), Request{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 50 {
		t.Fatalf("expected price 50, got %v", q.Price)
	}
	if q.DayOpen != nil || q.DayHigh != nil || q.DayLow != nil || q.Volume != nil {
		t.Fatalf("expected unresolved OHLCV to be nil, got %+v", q)
	}
	if q.ChangePercent == nil {
		t.Fatal("change should still derive from previous close")
	}
}

func TestYahooFetchHistory(t *testing.T) {
	t.Parallel()

	p := newTestYahoo(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("range") != "3mo" {
			t.Fatalf("unexpected range: %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, chartAAPL), nil
	})

	series, err := p.FetchHistory(context.Background(), "AAPL", "3mo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Len() != 2 || series.Period != "3mo" {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestYahooEscapesIndexSymbols(t *testing.T) {
	t.Parallel()

	p := newTestYahoo(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/v7/finance/quote" {
			return jsonResponse(http.StatusOK, `{"quoteResponse":{"result":[]}}`), nil
		}
		if req.URL.Path != "/v8/finance/chart/^GSPC" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, chartAAPL), nil
	})

	if _, err := p.FetchQuote(context.Background(), Request{Symbol: "^GSPC"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
