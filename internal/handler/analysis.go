package handler

import (
	"net/http"
	"strconv"

	"investor-livedata/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetTechnical godoc
// @Summary      Get technical indicators for a symbol
// @Description  SMA, volatility, RSI, MACD and recent percent changes; indicators are null when history is too short
// @Tags         analysis
// @Produce      json
// @Param        symbol  path   string  true   "Ticker (e.g., AAPL)"
// @Param        period  query  string  false  "History range"  default(3mo)
// @Success      200  {object}  domain.TechnicalSnapshot
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/technical/{symbol} [get]
func (h *Handler) GetTechnical(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-technical")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	snap, err := h.market.GetTechnical(ctx, symbol, c.DefaultQuery("period", domain.DefaultTechnicalPeriod))
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetRecommendation godoc
// @Summary      Get a rule-based recommendation
// @Description  Scores momentum and trend, then maps the score to a verdict for the risk level
// @Tags         analysis
// @Produce      json
// @Param        symbol   path   string  true   "Ticker (e.g., AAPL)"
// @Param        risk     query  int     false  "Risk level 1-5"  default(3)
// @Param        explain  query  bool    false  "Add an LLM-written explanation when configured"
// @Success      200  {object}  domain.Recommendation
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/recommendations/{symbol} [get]
func (h *Handler) GetRecommendation(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-recommendation")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	risk := domain.RiskLevel3
	if r := c.Query("risk"); r != "" {
		n, err := strconv.Atoi(r)
		if err != nil {
			abortWithError(c, domain.ErrInvalidRiskLevel)
			return
		}
		risk = domain.RiskLevel(n)
	}

	rec, err := h.market.GetRecommendation(ctx, symbol, risk)
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}

	if explain, _ := strconv.ParseBool(c.Query("explain")); explain && h.narrator != nil {
		snap, _ := h.market.GetTechnical(ctx, symbol, domain.DefaultTechnicalPeriod)
		text, err := h.narrator.Explain(ctx, *rec, snap)
		if err != nil {
			log.Warn("recommendation narration failed", "symbol", symbol, "err", err)
		} else {
			rec.Explanation = text
		}
	}
	c.JSON(http.StatusOK, rec)
}
