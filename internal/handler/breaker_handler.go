package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bancore/transaction-service/internal/resilience"
)

// BreakerHandler exposes read-only circuit breaker snapshots as a diagnostic
// surface. It is not part of the orchestration contract.
type BreakerHandler struct {
	registry *resilience.Registry
}

func NewBreakerHandler(registry *resilience.Registry) *BreakerHandler {
	return &BreakerHandler{registry: registry}
}

func (h *BreakerHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api/circuit-breaker")
	{
		api.GET("/status", h.Status)
		api.GET("/status/:name", h.StatusOf)
	}
}

func (h *BreakerHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"circuitBreakers": h.registry.Status()})
}

func (h *BreakerHandler) StatusOf(c *gin.Context) {
	name := c.Param("name")
	status, ok := h.registry.StatusOf(name)
	if !ok {
		respondError(c, http.StatusNotFound, "Circuit breaker not found: "+name)
		return
	}
	c.JSON(http.StatusOK, status)
}
