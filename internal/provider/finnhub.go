package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"investor-livedata/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const finnhubBaseURL = "https://finnhub.io"

// FinnhubProvider is the price-only fallback tier.
type FinnhubProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	clock   clockwork.Clock
}

func NewFinnhubProvider(baseURL, apiKey string, tracer trace.Tracer) *FinnhubProvider {
	if baseURL == "" {
		baseURL = finnhubBaseURL
	}
	return &FinnhubProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tracer:  tracer,
		clock:   clockwork.NewRealClock(),
	}
}

func (p *FinnhubProvider) Name() string { return "finnhub" }

// FetchQuote resolves only the live price. OHLC and volume stay nil; name,
// previous close and the rest come from req.Hint when an earlier tier
// supplied one.
func (p *FinnhubProvider) FetchQuote(ctx context.Context, req Request) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "finnhub.fetch-quote", trace.WithAttributes(attribute.String("symbol", req.Symbol)))
	defer span.End()

	q := url.Values{}
	q.Set("symbol", req.Symbol)
	q.Set("token", p.apiKey)
	endpoint := fmt.Sprintf("%s/api/v1/quote?%s", p.baseURL, q.Encode())

	body, err := doGet(ctx, p.client, "finnhub", endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch live price for %s: %w", req.Symbol, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parse live price for %s: invalid json: %w", req.Symbol, domain.ErrProviderUnavailable)
	}

	price := gjson.GetBytes(body, "c").Float()
	prevClose := gjson.GetBytes(body, "pc").Float()
	// Unknown tickers come back as an all-zero payload rather than a 404.
	if price == 0 && prevClose == 0 {
		return nil, fmt.Errorf("live price for %s: %w", req.Symbol, domain.ErrSymbolNotFound)
	}

	quote := &domain.Quote{
		Symbol:     req.Symbol,
		Name:       req.Symbol,
		Price:      price,
		Source:     p.Name(),
		Provenance: domain.ProvenanceFallback,
		FetchedAt:  p.clock.Now().UTC(),
	}
	quote.ApplyMeta(req.Hint)
	return quote, nil
}
