package handler

import (
	"errors"
	"net/http"

	"investor-livedata/internal/domain"

	"github.com/gin-gonic/gin"
)

// statusFor maps a market data failure onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRiskLevel):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
