// Package app assembles the market data stack shared by every entry point.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investor-livedata/internal/advisor"
	"investor-livedata/internal/cache"
	"investor-livedata/internal/config"
	"investor-livedata/internal/domain"
	"investor-livedata/internal/metrics"
	"investor-livedata/internal/provider"
	"investor-livedata/internal/service"
	"investor-livedata/internal/throttle"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/trace"
)

// Explainer narrates recommendations. Nil when no LLM key is configured.
type Explainer interface {
	Explain(ctx context.Context, rec domain.Recommendation, snap *domain.TechnicalSnapshot) (string, error)
}

type App struct {
	Service  *service.MarketService
	Narrator Explainer
	Registry *prometheus.Registry

	closers []func() error
}

var (
	initRedis       = cache.InitRedis
	newOpenAIClient = advisor.NewOpenAIClient
)

// Build wires caches, throttle, provider chain and service from cfg.
func Build(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*App, error) {
	clock := clockwork.NewRealClock()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	a := &App{Registry: reg}

	quotes, err := cache.NewFreshness[domain.Quote](ctx, cache.Options{
		Name: "quotes", TTL: cfg.CacheTTL, MaxSizeMB: cfg.CacheMaxMB, Clock: clock, Metrics: m,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, quotes.Close)

	technicals, err := cache.NewFreshness[domain.TechnicalSnapshot](ctx, cache.Options{
		Name: "technicals", TTL: cfg.CacheTTL, MaxSizeMB: cfg.CacheMaxMB, Clock: clock, Metrics: m,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, technicals.Close)

	throttleOpts := []throttle.Option{throttle.WithClock(clock), throttle.WithMetrics(m)}
	rdb, err := initRedis(ctx, cfg.RedisURL)
	switch {
	case err != nil:
		log.Warn("redis unavailable, throttling per process only", "err", err)
	case rdb != nil:
		throttleOpts = append(throttleOpts, throttle.WithGate(throttle.NewRedisGate(rdb, "", clock)))
		a.closers = append(a.closers, rdb.Close)
	}
	thr := throttle.New(cfg.RequestGap, throttleOpts...)

	sources := []provider.QuoteSource{provider.NewYahooProvider(cfg.YahooBaseURL, tracer)}
	if cfg.FinnhubAPIKey != "" {
		sources = append(sources, provider.NewFinnhubProvider(cfg.FinnhubBaseURL, cfg.FinnhubAPIKey, tracer))
	}
	chain := provider.NewChain(tracer, thr, sources,
		provider.WithBackoff(provider.Backoff{Base: cfg.BackoffBase, MaxRetries: cfg.MaxRetries}),
		provider.WithRequestTimeout(cfg.RequestTimeout),
		provider.WithClock(clock),
		provider.WithChainMetrics(m),
	)

	var spacer *provider.RateLimiter
	if cfg.BatchMinGap > 0 {
		spacer = provider.NewRateLimiterWithClock(1, cfg.BatchMinGap, clock)
	}
	a.Service = service.NewMarketService(tracer, chain, quotes, technicals,
		service.WithClock(clock),
		service.WithBatch(cfg.BatchWorkers, spacer),
		service.WithUniverse(cfg.PopularSymbols, cfg.IndexSymbols),
	)

	if cfg.OpenAIAPIKey != "" {
		a.Narrator = advisor.NewNarrator(tracer, newOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	}

	log.Info("market data stack ready",
		"sources", len(sources),
		"cache_ttl", cfg.CacheTTL,
		"request_gap", cfg.RequestGap,
		"shared_throttle", rdb != nil,
	)
	return a, nil
}

// WarmSymbols is the universe the cache warmer keeps fresh.
func (a *App) WarmSymbols() []string {
	return append(a.Service.IndexSymbols(), a.Service.PopularSymbols()...)
}

// Close releases caches and connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}

// ShutdownTimeout bounds graceful shutdown in every binary.
const ShutdownTimeout = 5 * time.Second
