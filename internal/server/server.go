// Package server exposes the web entry points: a manual URL submission
// form, a CSV upload, and a fixture replay endpoint.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"igtracker/pkg/logger"
)

// NewRouter creates the HTTP router with all routes configured
func NewRouter(handler *Handler, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(requestLogger(handler.logger))
	r.Use(gin.Recovery())

	r.GET("/", handler.Index)
	r.GET("/health", handler.HealthCheck)
	r.POST("/process", handler.ProcessForm)
	r.POST("/upload", handler.ProcessCSV)
	r.POST("/replay", handler.Replay)

	return r
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.InfoWithFields("request", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		})
	}
}
