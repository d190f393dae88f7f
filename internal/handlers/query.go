package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/meddoc-assistant-api/internal/models"
	"github.com/meddoc-assistant-api/internal/services"
)

const (
	defaultTopK = 5
	maxTopK     = 50
)

// QueryHandler handles the literature query endpoint
type QueryHandler struct {
	pipeline *services.QueryPipeline
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(pipeline *services.QueryPipeline) *QueryHandler {
	return &QueryHandler{
		pipeline: pipeline,
	}
}

// Query handles POST /query - symptom description to literature matches
func (h *QueryHandler) Query(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Invalid request body"})
	}

	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "No symptoms provided"})
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	resp, err := h.pipeline.Run(ctx, symptoms, topK)
	if err != nil {
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{Detail: err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers query routes
func (h *QueryHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/query", h.Query)
}
