package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investor-livedata/internal/domain"
	"investor-livedata/internal/metrics"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRequestTimeout bounds a single upstream request.
const DefaultRequestTimeout = 10 * time.Second

// Throttler paces upstream requests per symbol.
type Throttler interface {
	Acquire(ctx context.Context, symbol string) error
}

// Chain tries its sources in order and applies throttling, per-request
// timeouts and rate-limit backoff to every attempt.
type Chain struct {
	sources  []QuoteSource
	history  HistorySource
	throttle Throttler
	backoff  Backoff
	timeout  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	tracer   trace.Tracer
	metrics  *metrics.Metrics
}

type ChainOption func(*Chain)

func WithBackoff(b Backoff) ChainOption {
	return func(c *Chain) { c.backoff = b }
}

func WithRequestTimeout(d time.Duration) ChainOption {
	return func(c *Chain) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ChainOption {
	return func(c *Chain) { c.sleep = fn }
}

// WithClock makes backoff waits use clock.
func WithClock(clock clockwork.Clock) ChainOption {
	return func(c *Chain) { c.sleep = clockSleep(clock) }
}

func WithHistorySource(h HistorySource) ChainOption {
	return func(c *Chain) { c.history = h }
}

func WithChainMetrics(m *metrics.Metrics) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

// NewChain wires sources primary first. The first source that can also serve
// history becomes the history source unless WithHistorySource overrides it.
func NewChain(tracer trace.Tracer, throttle Throttler, sources []QuoteSource, opts ...ChainOption) *Chain {
	c := &Chain{
		sources:  sources,
		throttle: throttle,
		backoff:  DefaultBackoff(),
		timeout:  DefaultRequestTimeout,
		sleep:    clockSleep(clockwork.NewRealClock()),
		tracer:   tracer,
	}
	for _, src := range sources {
		if h, ok := src.(HistorySource); ok {
			c.history = h
			break
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func clockSleep(clock clockwork.Clock) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(d):
			return nil
		}
	}
}

// Quote resolves symbol through the tiers. When a tier answers without bars
// its metadata is handed to the next tier as a hint.
func (c *Chain) Quote(ctx context.Context, symbol, period string) (*domain.Quote, error) {
	ctx, span := c.tracer.Start(ctx, "chain.quote", trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	var (
		hint        *domain.QuoteMeta
		causes      []error
		allNotFound = true
	)
	for i, src := range c.sources {
		req := Request{Symbol: symbol, Period: period, Hint: hint}
		q, err := withRetry(ctx, c, src.Name(), symbol, func(ctx context.Context) (*domain.Quote, error) {
			return src.FetchQuote(ctx, req)
		})
		if err == nil {
			if i > 0 {
				c.metrics.Fallback()
				log.Info("quote served by fallback tier", "symbol", symbol, "source", src.Name())
			}
			return q, nil
		}

		if ctx.Err() != nil {
			span.SetStatus(codes.Error, ctx.Err().Error())
			return nil, domain.NewFetchError("quote", symbol, domain.ErrProviderUnavailable, ctx.Err())
		}

		var empty *domain.EmptyHistoryError
		if errors.As(err, &empty) && empty.Meta != nil {
			hint = empty.Meta
		}
		if !errors.Is(err, domain.ErrSymbolNotFound) {
			allNotFound = false
		}
		log.Warn("quote source failed", "symbol", symbol, "source", src.Name(), "err", err)
		causes = append(causes, fmt.Errorf("%s: %w", src.Name(), err))
	}

	kind := domain.ErrProviderUnavailable
	if allNotFound && len(causes) > 0 {
		kind = domain.ErrSymbolNotFound
	}
	fe := domain.NewFetchError("quote", symbol, kind, errors.Join(causes...))
	span.SetStatus(codes.Error, fe.Error())
	return nil, fe
}

// History fetches daily bars through the history-capable source.
func (c *Chain) History(ctx context.Context, symbol, period string) (*domain.HistorySeries, error) {
	ctx, span := c.tracer.Start(ctx, "chain.history", trace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("period", period),
	))
	defer span.End()

	if c.history == nil {
		return nil, domain.NewFetchError("history", symbol, domain.ErrProviderUnavailable, errors.New("no history source configured"))
	}

	series, err := withRetry(ctx, c, c.history.Name(), symbol, func(ctx context.Context) (*domain.HistorySeries, error) {
		return c.history.FetchHistory(ctx, symbol, period)
	})
	if err != nil {
		kind := domain.ErrProviderUnavailable
		switch {
		case errors.Is(err, domain.ErrSymbolNotFound):
			kind = domain.ErrSymbolNotFound
		case errors.Is(err, domain.ErrEmptyHistory):
			kind = domain.ErrInsufficientData
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, domain.NewFetchError("history", symbol, kind, err)
	}
	if series.Len() == 0 {
		return nil, domain.NewFetchError("history", symbol, domain.ErrInsufficientData, domain.ErrEmptyHistory)
	}
	return series, nil
}

// withRetry runs call under the throttle and a per-request timeout, retrying
// rate-limited attempts per the chain's backoff. Every attempt, retries
// included, acquires the per-symbol slot again after its backoff sleep, so a
// retry starts no sooner than max(backoff delay, throttle gap) after the
// previous attempt. With the default 2s gap the first retry waits 2s, not 1s.
func withRetry[T any](ctx context.Context, c *Chain, source, symbol string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := c.throttle.Acquire(ctx, symbol); err != nil {
			return zero, err
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		v, err := call(reqCtx)
		timedOut := errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
		cancel()

		switch {
		case err == nil:
			c.metrics.ProviderRequest(source, "ok")
			return v, nil
		case timedOut:
			c.metrics.ProviderRequest(source, "timeout")
			return zero, fmt.Errorf("%w after %s: %w", domain.ErrTimeout, c.timeout, err)
		case errors.Is(err, domain.ErrRateLimited):
			c.metrics.ProviderRequest(source, "rate_limited")
		case errors.Is(err, domain.ErrSymbolNotFound):
			c.metrics.ProviderRequest(source, "not_found")
			return zero, err
		default:
			c.metrics.ProviderRequest(source, "error")
			return zero, err
		}

		if attempt >= c.backoff.MaxRetries {
			return zero, fmt.Errorf("%w: still rate limited after %d attempts: %w", domain.ErrProviderUnavailable, attempt+1, err)
		}
		delay := c.backoff.Delay(attempt)
		c.metrics.RateLimitRetry(source)
		log.Warn("rate limited, backing off", "symbol", symbol, "source", source, "attempt", attempt+1, "wait", delay)
		if err := c.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}
