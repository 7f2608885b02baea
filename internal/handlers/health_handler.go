package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthcheckTimeout = 2 * time.Second

type HealthHandler struct {
	categoriesReady func() bool
	pingDatabase    func(ctx context.Context) error
}

// NewHealthHandler creates a HealthHandler. pingDatabase may be nil.
func NewHealthHandler(categoriesReady func() bool, pingDatabase func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		categoriesReady: categoriesReady,
		pingDatabase:    pingDatabase,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if h.pingDatabase != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthcheckTimeout)
		defer cancel()

		if err := h.pingDatabase(ctx); err != nil {
			attachError(c, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database not reachable",
			})
			return
		}
	}

	if !h.categoriesReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "category cache not initialized",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
