package handler

import (
	"context"

	"investor-livedata/internal/domain"
	"investor-livedata/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Market is the consumer interface served over HTTP.
type Market interface {
	GetQuote(ctx context.Context, symbol, period string) (*domain.Quote, error)
	GetMany(ctx context.Context, symbols []string) map[string]service.QuoteResult
	GetMarketOverview(ctx context.Context) map[string]service.QuoteResult
	GetTrending(ctx context.Context, limit int) ([]domain.Quote, error)
	GetTechnical(ctx context.Context, symbol, period string) (*domain.TechnicalSnapshot, error)
	GetRecommendation(ctx context.Context, symbol string, risk domain.RiskLevel) (*domain.Recommendation, error)
}

// Explainer narrates a recommendation in prose.
type Explainer interface {
	Explain(ctx context.Context, rec domain.Recommendation, snap *domain.TechnicalSnapshot) (string, error)
}

type Handler struct {
	tracer   trace.Tracer
	market   Market
	narrator Explainer
}

// New builds the HTTP handlers. narrator may be nil.
func New(tracer trace.Tracer, market Market, narrator Explainer) *Handler {
	return &Handler{
		tracer:   tracer,
		market:   market,
		narrator: narrator,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/quotes", h.GetQuotes)
	api.GET("/quotes/:symbol", h.GetQuote)
	api.GET("/market/overview", h.GetMarketOverview)
	api.GET("/trending", h.GetTrending)
	api.GET("/technical/:symbol", h.GetTechnical)
	api.GET("/recommendations/:symbol", h.GetRecommendation)
}
