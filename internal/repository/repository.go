// Package repository provides database access layer.
package repository

import (
	"context"

	"ai-config-console/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProviderRepository handles provider data access.
type ProviderRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository.
func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// Create inserts a new provider.
func (r *ProviderRepository) Create(ctx context.Context, provider *models.Provider) error {
	return r.db.WithContext(ctx).Create(provider).Error
}

// GetByID retrieves a provider by ID.
func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetBySlug retrieves a provider by slug.
func (r *ProviderRepository) GetBySlug(ctx context.Context, slug string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetAll retrieves all providers.
func (r *ProviderRepository) GetAll(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	if err := r.db.WithContext(ctx).Order("priority ASC, id ASC").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

// Update updates a provider.
func (r *ProviderRepository) Update(ctx context.Context, provider *models.Provider) error {
	return r.db.WithContext(ctx).Save(provider).Error
}

// Delete removes a provider.
func (r *ProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Provider{}, "id = ?", id).Error
}

// ModelRepository handles model data access.
type ModelRepository struct {
	db *gorm.DB
}

// NewModelRepository creates a new model repository.
func NewModelRepository(db *gorm.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// Create inserts a new model.
func (r *ModelRepository) Create(ctx context.Context, model *models.Model) error {
	return r.db.WithContext(ctx).Create(model).Error
}

// GetByID retrieves a model by ID.
func (r *ModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Model, error) {
	var model models.Model
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// GetByProvider retrieves all models for a provider.
func (r *ModelRepository) GetByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Model, error) {
	var modelsList []models.Model
	if err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).Find(&modelsList).Error; err != nil {
		return nil, err
	}
	return modelsList, nil
}

// GetAll retrieves all models.
func (r *ModelRepository) GetAll(ctx context.Context) ([]models.Model, error) {
	var modelsList []models.Model
	if err := r.db.WithContext(ctx).Find(&modelsList).Error; err != nil {
		return nil, err
	}
	return modelsList, nil
}

// CountByProvider counts models referencing a provider.
func (r *ModelRepository) CountByProvider(ctx context.Context, providerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Model{}).
		Where("provider_id = ?", providerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates a model.
func (r *ModelRepository) Update(ctx context.Context, model *models.Model) error {
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdatePriority writes a single model's priority without touching any
// other row. Returns the number of rows updated.
func (r *ModelRepository) UpdatePriority(ctx context.Context, id uuid.UUID, priority int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Model{}).
		Where("id = ?", id).
		Update("priority", priority)
	return result.RowsAffected, result.Error
}

// Delete removes a model.
func (r *ModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Model{}, "id = ?", id).Error
}
