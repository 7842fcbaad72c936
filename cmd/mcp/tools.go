package main

import (
	"context"
	"fmt"
	"sort"

	"investor-livedata/internal/domain"
	"investor-livedata/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type market interface {
	GetQuote(ctx context.Context, symbol, period string) (*domain.Quote, error)
	GetMany(ctx context.Context, symbols []string) map[string]service.QuoteResult
	GetMarketOverview(ctx context.Context) map[string]service.QuoteResult
	GetTrending(ctx context.Context, limit int) ([]domain.Quote, error)
	GetTechnical(ctx context.Context, symbol, period string) (*domain.TechnicalSnapshot, error)
	GetRecommendation(ctx context.Context, symbol string, risk domain.RiskLevel) (*domain.Recommendation, error)
}

type quoteInput struct {
	Symbol string `json:"symbol" jsonschema:"ticker such as AAPL or ^GSPC"`
	Period string `json:"period,omitempty" jsonschema:"history range, defaults to 1d"`
}

type manyInput struct {
	Symbols []string `json:"symbols" jsonschema:"tickers to fetch; each succeeds or fails on its own"`
}

type trendingInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of movers, defaults to 10"`
}

type technicalInput struct {
	Symbol string `json:"symbol" jsonschema:"ticker such as AAPL"`
	Period string `json:"period,omitempty" jsonschema:"history range, defaults to 3mo"`
}

type recommendationInput struct {
	Symbol string `json:"symbol" jsonschema:"ticker such as AAPL"`
	Risk   int    `json:"risk,omitempty" jsonschema:"risk level 1 (conservative) to 5 (aggressive), defaults to 3"`
}

type batchEntry struct {
	Symbol string        `json:"symbol"`
	Quote  *domain.Quote `json:"quote,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type tools struct {
	svc market
}

func newServer(svc market, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "investor-livedata", Version: version}, nil)
	t := &tools{svc: svc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_quote",
		Description: "Latest quote for one symbol. Served from cache when younger than five minutes.",
	}, t.getQuote)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_many",
		Description: "Quotes for several symbols with per-symbol errors.",
	}, t.getMany)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_overview",
		Description: "Quotes for the major indices.",
	}, t.marketOverview)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "trending",
		Description: "High-volume movers ranked by absolute percent change times volume.",
	}, t.trending)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "technical",
		Description: "SMA, volatility, RSI, MACD and recent percent changes for a symbol.",
	}, t.technical)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommendation",
		Description: "Rule-based BUY/HOLD/SELL/AVOID verdict for a symbol at a risk level.",
	}, t.recommendation)

	return server
}

func (t *tools) getQuote(ctx context.Context, _ *mcp.CallToolRequest, in quoteInput) (*mcp.CallToolResult, any, error) {
	if in.Period == "" {
		in.Period = domain.DefaultQuotePeriod
	}
	q, err := t.svc.GetQuote(ctx, in.Symbol, in.Period)
	if err != nil {
		return nil, nil, err
	}
	return nil, q, nil
}

func (t *tools) getMany(ctx context.Context, _ *mcp.CallToolRequest, in manyInput) (*mcp.CallToolResult, any, error) {
	if len(in.Symbols) == 0 {
		return nil, nil, fmt.Errorf("symbols: %w", domain.ErrInvalidInput)
	}
	return nil, map[string]any{"quotes": entries(t.svc.GetMany(ctx, in.Symbols))}, nil
}

func (t *tools) marketOverview(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return nil, map[string]any{"indices": entries(t.svc.GetMarketOverview(ctx))}, nil
}

func (t *tools) trending(ctx context.Context, _ *mcp.CallToolRequest, in trendingInput) (*mcp.CallToolResult, any, error) {
	if in.Limit == 0 {
		in.Limit = 10
	}
	movers, err := t.svc.GetTrending(ctx, in.Limit)
	if err != nil {
		return nil, nil, err
	}
	return nil, map[string]any{"trending": movers}, nil
}

func (t *tools) technical(ctx context.Context, _ *mcp.CallToolRequest, in technicalInput) (*mcp.CallToolResult, any, error) {
	if in.Period == "" {
		in.Period = domain.DefaultTechnicalPeriod
	}
	snap, err := t.svc.GetTechnical(ctx, in.Symbol, in.Period)
	if err != nil {
		return nil, nil, err
	}
	return nil, snap, nil
}

func (t *tools) recommendation(ctx context.Context, _ *mcp.CallToolRequest, in recommendationInput) (*mcp.CallToolResult, any, error) {
	risk := domain.RiskLevel3
	if in.Risk != 0 {
		risk = domain.RiskLevel(in.Risk)
	}
	rec, err := t.svc.GetRecommendation(ctx, in.Symbol, risk)
	if err != nil {
		return nil, nil, err
	}
	return nil, rec, nil
}

func entries(results map[string]service.QuoteResult) []batchEntry {
	out := make([]batchEntry, 0, len(results))
	for sym, r := range results {
		e := batchEntry{Symbol: sym, Quote: r.Quote}
		if r.Err != nil {
			e.Quote = nil
			e.Error = r.Err.Error()
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
