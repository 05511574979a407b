package handlers

import (
	"net/http"

	"attribution-pipeline/service"

	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	pipeline *service.Pipeline
}

// NewHandlers creates a new handlers instance
func NewHandlers(pipeline *service.Pipeline) *Handlers {
	return &Handlers{
		pipeline: pipeline,
	}
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "attribution-pipeline",
	})
}

// GetStatus returns the current status of the pipeline service
func (h *Handlers) GetStatus(c *gin.Context) {
	stats := h.pipeline.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"data":   stats,
	})
}

// RunPipeline triggers one synchronous pipeline run. The scheduler calls
// this once per period.
func (h *Handlers) RunPipeline(c *gin.Context) {
	if err := h.pipeline.RunOnce(); err != nil {
		if err == service.ErrRunInProgress {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
