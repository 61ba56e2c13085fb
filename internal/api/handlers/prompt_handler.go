package handlers

import (
	"net/http"

	"ai-config-console/internal/models"
	"ai-config-console/internal/service/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromptHandler handles prompt lifecycle endpoints.
type PromptHandler struct {
	lifecycle *lifecycle.Service
	logger    *zap.Logger
}

// NewPromptHandler creates a new prompt handler.
func NewPromptHandler(lifecycleService *lifecycle.Service, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{
		lifecycle: lifecycleService,
		logger:    logger,
	}
}

// List returns prompts, optionally filtered by type and status query params.
func (h *PromptHandler) List(c *gin.Context) {
	promptType := models.PromptType(c.Query("type"))
	status := models.PromptStatus(c.Query("status"))

	list, err := h.lifecycle.List(c.Request.Context(), promptType, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Get returns a single prompt by id.
func (h *PromptHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	prompt, err := h.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// CreatePromptRequest represents a prompt creation request.
type CreatePromptRequest struct {
	Name                 string   `json:"name" binding:"required"`
	Type                 string   `json:"type" binding:"required"`
	Version              string   `json:"version" binding:"required"`
	SystemPromptTemplate string   `json:"system_prompt_template"`
	UserPromptTemplate   string   `json:"user_prompt_template" binding:"required"`
	Temperature          float64  `json:"temperature"`
	MaxTokens            int      `json:"max_tokens"`
	TopP                 float64  `json:"top_p"`
	FrequencyPenalty     float64  `json:"frequency_penalty"`
	PresencePenalty      float64  `json:"presence_penalty"`
	MotiveCodes          []string `json:"motive_codes"`
}

// Create inserts a new draft prompt.
func (h *PromptHandler) Create(c *gin.Context) {
	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt, err := h.lifecycle.Create(c.Request.Context(), lifecycle.CreateParams{
		Name:                 req.Name,
		Type:                 models.PromptType(req.Type),
		Version:              req.Version,
		SystemPromptTemplate: req.SystemPromptTemplate,
		UserPromptTemplate:   req.UserPromptTemplate,
		Temperature:          req.Temperature,
		MaxTokens:            req.MaxTokens,
		TopP:                 req.TopP,
		FrequencyPenalty:     req.FrequencyPenalty,
		PresencePenalty:      req.PresencePenalty,
		MotiveCodes:          req.MotiveCodes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, prompt)
}

// UpdatePromptRequest represents an in-place prompt edit; absent fields are
// left untouched.
type UpdatePromptRequest struct {
	Name                 *string  `json:"name"`
	SystemPromptTemplate *string  `json:"system_prompt_template"`
	UserPromptTemplate   *string  `json:"user_prompt_template"`
	Temperature          *float64 `json:"temperature"`
	MaxTokens            *int     `json:"max_tokens"`
	TopP                 *float64 `json:"top_p"`
	FrequencyPenalty     *float64 `json:"frequency_penalty"`
	PresencePenalty      *float64 `json:"presence_penalty"`
	MotiveCodes          []string `json:"motive_codes"`
}

// Update edits a draft or inactive prompt in place.
func (h *PromptHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	var req UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt, err := h.lifecycle.Update(c.Request.Context(), id, lifecycle.UpdateParams{
		Name:                 req.Name,
		SystemPromptTemplate: req.SystemPromptTemplate,
		UserPromptTemplate:   req.UserPromptTemplate,
		Temperature:          req.Temperature,
		MaxTokens:            req.MaxTokens,
		TopP:                 req.TopP,
		FrequencyPenalty:     req.FrequencyPenalty,
		PresencePenalty:      req.PresencePenalty,
		MotiveCodes:          req.MotiveCodes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// Activate makes the prompt the active one for its type.
func (h *PromptHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	result, err := h.lifecycle.Activate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Deactivate moves the prompt to inactive.
func (h *PromptHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	result, err := h.lifecycle.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Archive moves the prompt to the terminal archived status.
func (h *PromptHandler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	result, err := h.lifecycle.Archive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClonePromptRequest represents a clone request. Name is optional and
// defaults to the source prompt's name.
type ClonePromptRequest struct {
	NewVersion string `json:"new_version" binding:"required"`
	Name       string `json:"name"`
}

// Clone copies a prompt into a new draft with the given version.
func (h *PromptHandler) Clone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	var req ClonePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clone, err := h.lifecycle.Clone(c.Request.Context(), id, req.NewVersion, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clone)
}

// Diff returns the comparable fields of two prompts side by side.
func (h *PromptHandler) Diff(c *gin.Context) {
	idA, err := uuid.Parse(c.Query("prompt_a"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt_a id"})
		return
	}
	idB, err := uuid.Parse(c.Query("prompt_b"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt_b id"})
		return
	}

	result, err := h.lifecycle.Diff(c.Request.Context(), idA, idB)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Delete removes a prompt unless it is active or has generation history.
func (h *PromptHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}

	if err := h.lifecycle.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "prompt deleted"})
}
