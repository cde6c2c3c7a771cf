// Package api assembles the HTTP surface of the service.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/studytime/api/middleware"
	"github.com/kilianp07/studytime/api/predict"
	"github.com/kilianp07/studytime/core/prediction"
	"github.com/kilianp07/studytime/infra/logger"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "studytime"

// NewRouter returns the gin engine serving /predict and /health. events may be
// nil when no sink consumes prediction events.
func NewRouter(engine prediction.Engine, events predict.Publisher, log logger.Logger) (*gin.Engine, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	h, err := predict.NewHandler(engine, events, log)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID(), middleware.AccessLog(log), middleware.Recovery(log))

	r.POST("/predict", h.Predict)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method Not Allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	return r, nil
}
