package handlers

import (
	"net/http"

	"ai-config-console/internal/service/playground"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlaygroundHandler handles ad-hoc generation endpoints.
type PlaygroundHandler struct {
	orchestrator *playground.Orchestrator
	logger       *zap.Logger
}

// NewPlaygroundHandler creates a new playground handler.
func NewPlaygroundHandler(orchestrator *playground.Orchestrator, logger *zap.Logger) *PlaygroundHandler {
	return &PlaygroundHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Execute runs one generation against a prompt/model pair. The request body
// is the run config itself and the response is the bare generation result.
func (h *PlaygroundHandler) Execute(c *gin.Context) {
	var cfg playground.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orchestrator.Run(c.Request.Context(), cfg, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result.ResultA)
}

// CompareRequest represents a two-leg playground run.
type CompareRequest struct {
	ConfigA playground.Config `json:"config_a" binding:"required"`
	ConfigB playground.Config `json:"config_b" binding:"required"`
}

// Compare runs two generations concurrently and returns both results.
func (h *PlaygroundHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orchestrator.Run(c.Request.Context(), req.ConfigA, &req.ConfigB)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
