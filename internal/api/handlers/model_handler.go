package handlers

import (
	"net/http"

	"ai-config-console/internal/models"
	"ai-config-console/internal/repository"
	"ai-config-console/internal/service/ranker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModelHandler handles model administration and ranking endpoints.
type ModelHandler struct {
	ranker    *ranker.Service
	modelRepo *repository.ModelRepository
	logger    *zap.Logger
}

// NewModelHandler creates a new model handler.
func NewModelHandler(rankerService *ranker.Service, modelRepo *repository.ModelRepository, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{
		ranker:    rankerService,
		modelRepo: modelRepo,
		logger:    logger,
	}
}

// List returns all models in priority order.
func (h *ModelHandler) List(c *gin.Context) {
	list, err := h.ranker.ListOrdered(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// CreateModelRequest represents a model creation request.
type CreateModelRequest struct {
	ProviderID      uuid.UUID `json:"provider_id" binding:"required"`
	Name            string    `json:"name" binding:"required"`
	Slug            string    `json:"slug" binding:"required"`
	MaxTokens       int       `json:"max_tokens"`
	CostPer1KInput  *float64  `json:"cost_per_1k_input"`
	CostPer1KOutput *float64  `json:"cost_per_1k_output"`
	Priority        int       `json:"priority"`
	IsActive        *bool     `json:"is_active"`
}

// Create registers a new model.
func (h *ModelHandler) Create(c *gin.Context) {
	var req CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := &models.Model{
		ProviderID:      req.ProviderID,
		Name:            req.Name,
		Slug:            req.Slug,
		MaxTokens:       req.MaxTokens,
		CostPer1KInput:  req.CostPer1KInput,
		CostPer1KOutput: req.CostPer1KOutput,
		Priority:        req.Priority,
		IsActive:        true,
	}
	if model.Priority < 1 {
		model.Priority = 1
	}
	if model.MaxTokens <= 0 {
		model.MaxTokens = 4096
	}
	if req.IsActive != nil {
		model.IsActive = *req.IsActive
	}

	if err := h.modelRepo.Create(c.Request.Context(), model); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, model)
}

// SetPriorityRequest carries a direct priority write.
type SetPriorityRequest struct {
	Priority int `json:"priority" binding:"required"`
}

// SetPriority writes a model's priority value.
func (h *ModelHandler) SetPriority(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	var req SetPriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.ranker.SetPriority(c.Request.Context(), id, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model)
}

// MoveRequest carries a relative priority change, -1 for up, +1 for down.
type MoveRequest struct {
	Direction int `json:"direction" binding:"required"`
}

// Move shifts a single model's priority by the given delta.
func (h *ModelHandler) Move(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.ranker.Move(c.Request.Context(), id, req.Direction)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model)
}

// ReorderRequest represents a batch priority update.
type ReorderRequest struct {
	Models []ranker.ReorderEntry `json:"models" binding:"required"`
}

// Reorder applies a batch of per-row priority writes.
func (h *ModelHandler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.ranker.Reorder(c.Request.Context(), req.Models)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}
