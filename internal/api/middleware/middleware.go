package middleware

import (
	"github.com/Domenick1991/hotelbooking/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Setup installs the common middleware chain on router. Recovery sits last so
// a panicking handler is still logged and counted as a 500.
func Setup(router *gin.Engine, m *metrics.Metrics) {
	router.Use(RequestID())
	router.Use(RequestLogger())
	if m != nil {
		router.Use(Prometheus(m))
	}
	router.Use(gin.Recovery())
}
