package handlers

import (
	"net/http"

	"ai-config-console/internal/crypto"
	"ai-config-console/internal/models"
	"ai-config-console/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderHandler handles provider administration endpoints.
type ProviderHandler struct {
	providers *repository.ProviderRepository
	modelRepo *repository.ModelRepository
	encryptor *crypto.Encryptor
	logger    *zap.Logger
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(
	providers *repository.ProviderRepository,
	modelRepo *repository.ModelRepository,
	encryptor *crypto.Encryptor,
	logger *zap.Logger,
) *ProviderHandler {
	return &ProviderHandler{
		providers: providers,
		modelRepo: modelRepo,
		encryptor: encryptor,
		logger:    logger,
	}
}

// providerView is the JSON shape returned for a provider; the stored key is
// never exposed, only its presence.
type providerView struct {
	*models.Provider
	HasCredential bool `json:"has_credential"`
}

func viewProvider(p *models.Provider) providerView {
	return providerView{Provider: p, HasCredential: p.HasCredential()}
}

// List returns all providers.
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.providers.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]providerView, 0, len(providers))
	for i := range providers {
		views = append(views, viewProvider(&providers[i]))
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

// CreateProviderRequest represents a provider creation request.
type CreateProviderRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	BaseURL  string `json:"base_url" binding:"required"`
	Priority int    `json:"priority"`
	APIKey   string `json:"api_key"`
}

// Create registers a new provider.
func (h *ProviderHandler) Create(c *gin.Context) {
	var req CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider := &models.Provider{
		Name:     req.Name,
		Slug:     req.Slug,
		Status:   models.ProviderActive,
		Priority: req.Priority,
		BaseURL:  req.BaseURL,
	}
	if provider.Priority < 1 {
		provider.Priority = 1
	}

	if req.APIKey != "" {
		encrypted, err := h.encryptor.Encrypt(req.APIKey)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store credential"})
			return
		}
		provider.EncryptedAPIKey = encrypted
	}

	if err := h.providers.Create(c.Request.Context(), provider); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, viewProvider(provider))
}

// UpdateProviderRequest represents a provider update request.
type UpdateProviderRequest struct {
	Name     *string                `json:"name"`
	BaseURL  *string                `json:"base_url"`
	Status   *models.ProviderStatus `json:"status"`
	Priority *int                   `json:"priority"`
}

// Update edits a provider.
func (h *ProviderHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	var req UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider, err := h.providers.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		return
	}

	if req.Name != nil {
		provider.Name = *req.Name
	}
	if req.BaseURL != nil {
		provider.BaseURL = *req.BaseURL
	}
	if req.Status != nil {
		provider.Status = *req.Status
	}
	if req.Priority != nil && *req.Priority >= 1 {
		provider.Priority = *req.Priority
	}

	if err := h.providers.Update(c.Request.Context(), provider); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, viewProvider(provider))
}

// SetCredentialRequest carries a raw provider API key.
type SetCredentialRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// SetCredential stores an encrypted API key for a provider.
func (h *ProviderHandler) SetCredential(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	var req SetCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider, err := h.providers.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		return
	}

	encrypted, err := h.encryptor.Encrypt(req.APIKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store credential"})
		return
	}

	provider.EncryptedAPIKey = encrypted
	if err := h.providers.Update(c.Request.Context(), provider); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, viewProvider(provider))
}

// Delete removes a provider. Providers with models are protected.
func (h *ProviderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	count, err := h.modelRepo.CountByProvider(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "provider still has models"})
		return
	}

	if err := h.providers.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
