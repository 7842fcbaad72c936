package job

import (
	"context"
	"time"

	"investor-livedata/internal/domain"
	"investor-livedata/internal/service"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Warmable is the part of the market service the warmer drives.
type Warmable interface {
	GetMany(ctx context.Context, symbols []string) map[string]service.QuoteResult
	GetTechnical(ctx context.Context, symbol, period string) (*domain.TechnicalSnapshot, error)
}

// Warmer keeps the quote cache fresh for the overview and trending universes
// so interactive calls rarely wait on the upstream. The interval should stay
// below the cache TTL.
type Warmer struct {
	tracer   trace.Tracer
	svc      Warmable
	interval time.Duration
	clock    clockwork.Clock
	symbols  []string
	next     int
}

func NewWarmer(tracer trace.Tracer, svc Warmable, interval time.Duration, symbols []string) *Warmer {
	return &Warmer{
		tracer:   tracer,
		svc:      svc,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		symbols:  symbols,
	}
}

// Start runs a warm pass immediately and then on every tick. Blocks until
// ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) {
	log.Info("Cache warmer starting", "interval", w.interval, "symbols", len(w.symbols))

	w.runOnce(ctx)

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Cache warmer stopped")
			return
		case <-ticker.Chan():
			w.runOnce(ctx)
		}
	}
}

// runOnce refreshes every quote and one technical snapshot, round-robin, to
// keep history requests off the hot path without bursting.
func (w *Warmer) runOnce(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "warmer.run")
	defer span.End()

	if len(w.symbols) == 0 {
		return
	}

	results := w.svc.GetMany(ctx, w.symbols)
	failed := 0
	for symbol, r := range results {
		if r.Err != nil {
			failed++
			log.Debug("warm quote failed", "symbol", symbol, "err", r.Err)
		}
	}
	span.SetAttributes(attribute.Int("warm.quotes", len(results)), attribute.Int("warm.failed", failed))
	if failed > 0 {
		log.Warn("cache warm pass incomplete", "failed", failed, "total", len(results))
	}

	symbol := w.symbols[w.next%len(w.symbols)]
	w.next++
	if symbol == "" || symbol[0] == '^' {
		return
	}
	if _, err := w.svc.GetTechnical(ctx, symbol, domain.DefaultTechnicalPeriod); err != nil {
		log.Warn("technical warm failed", "symbol", symbol, "err", err)
	}
}
