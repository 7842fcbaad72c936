package provider

import (
	"context"

	"investor-livedata/internal/domain"
)

//go:generate mockgen -package=provider -destination=mock_source_test.go -source=source.go

// Request describes one quote lookup. Hint carries metadata an earlier tier
// already resolved, so a price-only source can still fill in descriptive
// fields and derive the change.
type Request struct {
	Symbol string
	Period string
	Hint   *domain.QuoteMeta
}

// QuoteSource is one tier of the provider chain.
type QuoteSource interface {
	Name() string
	FetchQuote(ctx context.Context, req Request) (*domain.Quote, error)
}

// HistorySource returns daily bars for a symbol over a period.
type HistorySource interface {
	Name() string
	FetchHistory(ctx context.Context, symbol, period string) (*domain.HistorySeries, error)
}
