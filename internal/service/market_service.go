package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investor-livedata/internal/cache"
	"investor-livedata/internal/domain"
	"investor-livedata/internal/provider"
	"investor-livedata/internal/ranking"
	"investor-livedata/internal/recommend"
	"investor-livedata/internal/ta"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// DefaultFlightTimeout bounds a fetch shared by collapsed callers. It outlives
// any single caller, so it covers a full retry sequence on both providers.
const DefaultFlightTimeout = 2 * time.Minute

// QuoteChain resolves quotes and history from upstream.
type QuoteChain interface {
	Quote(ctx context.Context, symbol, period string) (*domain.Quote, error)
	History(ctx context.Context, symbol, period string) (*domain.HistorySeries, error)
}

// QuoteResult is the per-symbol outcome of a batch request.
type QuoteResult struct {
	Quote *domain.Quote
	Err   error
}

// MarketService is the consumer-facing entry point. It owns the freshness
// caches and collapses concurrent misses for the same key.
type MarketService struct {
	tracer        trace.Tracer
	chain         QuoteChain
	quotes        *cache.Freshness[domain.Quote]
	technicals    *cache.Freshness[domain.TechnicalSnapshot]
	engine        *recommend.Engine
	clock         clockwork.Clock
	flights       singleflight.Group
	flightTimeout time.Duration

	workers int
	spacer  *provider.RateLimiter
	popular []string
	indices []string
}

type Option func(*MarketService)

func WithClock(c clockwork.Clock) Option {
	return func(s *MarketService) { s.clock = c }
}

// WithFlightTimeout bounds fetches shared between concurrent callers.
func WithFlightTimeout(d time.Duration) Option {
	return func(s *MarketService) {
		if d > 0 {
			s.flightTimeout = d
		}
	}
}

// WithBatch bounds batch concurrency and spaces dispatches across symbols.
// A nil spacer disables spacing.
func WithBatch(workers int, spacer *provider.RateLimiter) Option {
	return func(s *MarketService) {
		if workers > 0 {
			s.workers = workers
		}
		s.spacer = spacer
	}
}

// WithUniverse overrides the trending and overview symbol sets.
func WithUniverse(popular, indices []string) Option {
	return func(s *MarketService) {
		if len(popular) > 0 {
			s.popular = popular
		}
		if len(indices) > 0 {
			s.indices = indices
		}
	}
}

func NewMarketService(
	tracer trace.Tracer,
	chain QuoteChain,
	quotes *cache.Freshness[domain.Quote],
	technicals *cache.Freshness[domain.TechnicalSnapshot],
	opts ...Option,
) *MarketService {
	s := &MarketService{
		tracer:        tracer,
		chain:         chain,
		quotes:        quotes,
		technicals:    technicals,
		clock:         clockwork.NewRealClock(),
		flightTimeout: DefaultFlightTimeout,
		workers:       4,
		popular:       domain.PopularStocks,
		indices:       domain.MajorIndices,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = recommend.NewEngine(s.clock)
	return s
}

func (s *MarketService) PopularSymbols() []string { return append([]string(nil), s.popular...) }

func (s *MarketService) IndexSymbols() []string { return append([]string(nil), s.indices...) }

// GetQuote returns a quote no older than the cache TTL, fetching it when the
// cache has nothing fresh.
func (s *MarketService) GetQuote(ctx context.Context, symbol, period string) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-quote")
	defer span.End()

	symbol, period, err := normalizeRequest(symbol, period, domain.DefaultQuotePeriod)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("symbol", symbol), attribute.String("period", period))

	key := cache.Key{Symbol: symbol, Period: period}
	if q, ok := s.quotes.Get(key); ok {
		return &q, nil
	}
	return s.loadQuote(ctx, key)
}

// loadQuote fetches key through the shared flight. The caller has already
// missed the cache, so the re-check inside the flight is not counted again.
func (s *MarketService) loadQuote(ctx context.Context, key cache.Key) (*domain.Quote, error) {
	v, shared, err := s.share(ctx, "quote", key, func(fctx context.Context) (any, error) {
		if q, ok := s.quotes.Peek(key); ok {
			return q, nil
		}
		q, err := s.chain.Quote(fctx, key.Symbol, key.Period)
		if err != nil {
			return nil, err
		}
		s.quotes.Put(key, *q)
		return *q, nil
	})
	if err != nil {
		return nil, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("shared", shared))

	q := v.(domain.Quote).Clone()
	return &q, nil
}

// share runs fetch once per key for every concurrent caller. The fetch is
// detached from the caller that started it and bounded by the flight timeout,
// so one caller giving up never fails the others. Each caller still returns
// as soon as its own context is done.
func (s *MarketService) share(ctx context.Context, op string, key cache.Key, fetch func(context.Context) (any, error)) (any, bool, error) {
	ch := s.flights.DoChan(op+":"+key.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flightTimeout)
		defer cancel()
		return fetch(fctx)
	})
	select {
	case <-ctx.Done():
		return nil, false, domain.NewFetchError(op, key.Symbol, domain.ErrProviderUnavailable, ctx.Err())
	case r := <-ch:
		return r.Val, r.Shared, r.Err
	}
}

// GetMany fetches several symbols at once. Each symbol carries its own
// outcome; a failure never hides the others.
func (s *MarketService) GetMany(ctx context.Context, symbols []string) map[string]QuoteResult {
	ctx, span := s.tracer.Start(ctx, "market-service.get-many")
	defer span.End()
	span.SetAttributes(attribute.Int("symbols", len(symbols)))

	return s.fetchMany(ctx, symbols, domain.DefaultQuotePeriod)
}

// GetMarketOverview returns quotes for the major indices.
func (s *MarketService) GetMarketOverview(ctx context.Context) map[string]QuoteResult {
	ctx, span := s.tracer.Start(ctx, "market-service.get-market-overview")
	defer span.End()

	return s.fetchMany(ctx, s.indices, domain.DefaultQuotePeriod)
}

// GetTrending ranks the popular universe by volume-weighted move. It fails
// only when no symbol could be fetched at all.
func (s *MarketService) GetTrending(ctx context.Context, limit int) ([]domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-trending")
	defer span.End()

	if limit <= 0 {
		return []domain.Quote{}, nil
	}

	results := s.fetchMany(ctx, s.popular, domain.DefaultQuotePeriod)
	quotes := make([]domain.Quote, 0, len(results))
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		quotes = append(quotes, *r.Quote)
	}
	if len(quotes) == 0 && len(errs) > 0 {
		return nil, domain.NewFetchError("trending", "", domain.ErrProviderUnavailable, errors.Join(errs...))
	}
	return ranking.Trending(quotes, limit), nil
}

// GetTechnical returns indicators over period, cached like quotes.
func (s *MarketService) GetTechnical(ctx context.Context, symbol, period string) (*domain.TechnicalSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-technical")
	defer span.End()

	symbol, period, err := normalizeRequest(symbol, period, domain.DefaultTechnicalPeriod)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("symbol", symbol), attribute.String("period", period))

	key := cache.Key{Symbol: symbol, Period: period}
	if snap, ok := s.technicals.Get(key); ok {
		return &snap, nil
	}

	v, _, err := s.share(ctx, "technical", key, func(fctx context.Context) (any, error) {
		if snap, ok := s.technicals.Peek(key); ok {
			return snap, nil
		}
		series, err := s.chain.History(fctx, symbol, period)
		if err != nil {
			return nil, err
		}
		snap := ta.Snapshot(series, s.clock.Now())
		s.technicals.Put(key, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	snap := v.(domain.TechnicalSnapshot).Clone()
	return &snap, nil
}

// GetRecommendation combines the latest quote with its technical snapshot.
func (s *MarketService) GetRecommendation(ctx context.Context, symbol string, risk domain.RiskLevel) (*domain.Recommendation, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-recommendation")
	defer span.End()

	if !risk.IsValid() {
		return nil, domain.ErrInvalidRiskLevel
	}

	q, err := s.GetQuote(ctx, symbol, domain.DefaultQuotePeriod)
	if err != nil {
		return nil, err
	}
	snap, err := s.GetTechnical(ctx, symbol, domain.DefaultTechnicalPeriod)
	if err != nil {
		return nil, err
	}

	rec, err := s.engine.Evaluate(q, snap, risk)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func normalizeRequest(symbol, period, defaultPeriod string) (string, string, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", "", fmt.Errorf("%w: symbol is required", domain.ErrInvalidInput)
	}
	if period == "" {
		period = defaultPeriod
	}
	if !domain.IsSupportedPeriod(period) {
		return "", "", fmt.Errorf("%w: unsupported period %q", domain.ErrInvalidInput, period)
	}
	return symbol, period, nil
}
