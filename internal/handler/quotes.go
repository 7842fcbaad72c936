package handler

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"investor-livedata/internal/domain"
	"investor-livedata/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultTrendingLimit = 10
	maxTrendingLimit     = 50
	maxBatchSymbols      = 50
)

// QuoteEntry is one symbol's outcome in a batch response. Exactly one of
// Quote and Error is set.
type QuoteEntry struct {
	Symbol string        `json:"symbol"`
	Quote  *domain.Quote `json:"quote,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// GetQuote godoc
// @Summary      Get the latest quote for a symbol
// @Description  Served from the freshness cache when younger than the TTL, otherwise fetched through the provider chain
// @Tags         quotes
// @Produce      json
// @Param        symbol  path   string  true   "Ticker (e.g., AAPL, ^GSPC)"
// @Param        period  query  string  false  "History range used for the quote"  default(1d)
// @Success      200  {object}  domain.Quote
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/quotes/{symbol} [get]
func (h *Handler) GetQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	q, err := h.market.GetQuote(ctx, symbol, c.DefaultQuery("period", domain.DefaultQuotePeriod))
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// GetQuotes godoc
// @Summary      Get quotes for several symbols
// @Description  Each symbol succeeds or fails on its own; duplicates are collapsed
// @Tags         quotes
// @Produce      json
// @Param        symbols  query  string  true  "Comma-separated tickers (max 50)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/quotes [get]
func (h *Handler) GetQuotes(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quotes")
	defer span.End()

	var symbols []string
	for _, s := range strings.Split(c.Query("symbols"), ",") {
		if s = domain.NormalizeSymbol(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols query parameter is required"})
		return
	}
	if len(symbols) > maxBatchSymbols {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many symbols, max " + strconv.Itoa(maxBatchSymbols)})
		return
	}
	span.SetAttributes(attribute.Int("symbols", len(symbols)))

	c.JSON(http.StatusOK, gin.H{"quotes": toEntries(h.market.GetMany(ctx, symbols))})
}

// GetMarketOverview godoc
// @Summary      Get the major index quotes
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/market/overview [get]
func (h *Handler) GetMarketOverview(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-overview")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"indices": toEntries(h.market.GetMarketOverview(ctx))})
}

// GetTrending godoc
// @Summary      Get high-volume movers
// @Description  Ranks the popular universe by absolute percent change times volume; symbols under 1M volume are excluded
// @Tags         market
// @Produce      json
// @Param        limit  query  int  false  "Number of movers (max 50)"  default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/trending [get]
func (h *Handler) GetTrending(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trending")
	defer span.End()

	limit := defaultTrendingLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = min(n, maxTrendingLimit)
	}
	span.SetAttributes(attribute.Int("limit", limit))

	movers, err := h.market.GetTrending(ctx, limit)
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trending": movers})
}

func toEntries(results map[string]service.QuoteResult) []QuoteEntry {
	out := make([]QuoteEntry, 0, len(results))
	for sym, r := range results {
		entry := QuoteEntry{Symbol: sym, Quote: r.Quote}
		if r.Err != nil {
			entry.Quote = nil
			entry.Error = r.Err.Error()
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
