package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/meddoc-assistant-api/internal/config"
	pkgconfig "github.com/meddoc-assistant-api/pkg/schema/config"
	pkgservices "github.com/meddoc-assistant-api/pkg/schema/services"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse is the response for basic health check
type HealthResponse struct {
	Status string `json:"status"`
}

// EmbeddingsHealthResponse is the response for embeddings health check
type EmbeddingsHealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// EmbeddingsHealth handles GET /health/embeddings. Calling it on an enabled
// deployment triggers the one-time model initialization.
func (h *HealthHandler) EmbeddingsHealth(c echo.Context) error {
	if !config.GetConfig().EnableEmbeddings {
		return c.JSON(http.StatusOK, EmbeddingsHealthResponse{
			Status: "disabled",
		})
	}

	pkgservices.GetEmbeddingsService()
	if err := pkgservices.GetInitError(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, EmbeddingsHealthResponse{
		Status:   "ready",
		Provider: pkgconfig.GetConfig().EmbeddingProvider,
	})
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/embeddings", h.EmbeddingsHealth)
}
