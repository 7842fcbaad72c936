package service

import (
	"context"
	"sync"

	"investor-livedata/internal/cache"
	"investor-livedata/internal/domain"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// fetchMany serves cache hits directly and fans the misses out over a
// bounded worker pool. Each symbol is looked up once; misses go straight to
// the shared fetch. Per-symbol spacing still happens inside the chain.
func (s *MarketService) fetchMany(ctx context.Context, symbols []string, period string) map[string]QuoteResult {
	unique := dedupeSymbols(symbols)
	results := make(map[string]QuoteResult, len(unique))

	var misses []string
	for _, symbol := range unique {
		if q, ok := s.quotes.Get(cache.Key{Symbol: symbol, Period: period}); ok {
			results[symbol] = QuoteResult{Quote: &q}
			continue
		}
		misses = append(misses, symbol)
	}
	if len(misses) == 0 {
		return results
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.workers)

	record := func(symbol string, q *domain.Quote, err error) {
		mu.Lock()
		results[symbol] = QuoteResult{Quote: q, Err: err}
		mu.Unlock()
	}

	for _, symbol := range misses {
		if err := s.spacer.Wait(ctx); err != nil {
			record(symbol, nil, domain.NewFetchError("quote", symbol, domain.ErrProviderUnavailable, err))
			continue
		}
		g.Go(func() error {
			q, err := s.loadQuote(ctx, cache.Key{Symbol: symbol, Period: period})
			if err != nil {
				log.Warn("batch fetch failed", "symbol", symbol, "err", err)
			}
			record(symbol, q, err)
			return nil
		})
	}
	_ = g.Wait()

	log.Debug("batch fetch complete", "requested", len(unique), "fetched", len(misses))
	return results
}

func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		symbol := domain.NormalizeSymbol(raw)
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	return out
}
