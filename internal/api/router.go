package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"virtuoso-gem-finder/internal/observability"
)

// NewRouter wires the analysis routes plus /health and /metrics.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestMetrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/tokens/:address/trend", h.GetTrend)
		v1.GET("/tokens/:address/confirmation", h.GetConfirmation)
		v1.GET("/tokens/:address/movements", h.GetMovements)
		v1.GET("/tokens/:address/momentum", h.GetMomentum)
		v1.POST("/trend/batch", h.PostTrendBatch)
	}
	return r
}

// requestMetrics counts requests by route template and status.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(c.Writer.Status()))
	}
}
