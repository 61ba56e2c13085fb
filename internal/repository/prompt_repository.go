package repository

import (
	"context"
	"errors"
	"time"

	"ai-config-console/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptRepository handles prompt data access.
type PromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new prompt repository.
func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// Create inserts a new prompt.
func (r *PromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	return r.db.WithContext(ctx).Create(prompt).Error
}

// GetByID retrieves a prompt by ID.
func (r *PromptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

// GetBySlug retrieves a prompt by slug.
func (r *PromptRepository) GetBySlug(ctx context.Context, slug string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &prompt, nil
}

// FindActiveByType returns the active prompt for a type, or nil when no
// prompt of that type is active.
func (r *PromptRepository) FindActiveByType(ctx context.Context, t models.PromptType) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.db.WithContext(ctx).
		First(&prompt, "type = ? AND status = ?", t, models.PromptActive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// ExistsByTypeAndVersion reports whether a prompt with the given type and
// version already exists.
func (r *PromptRepository) ExistsByTypeAndVersion(ctx context.Context, t models.PromptType, version string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Prompt{}).
		Where("type = ? AND version = ?", t, version).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves prompts filtered by type and status; zero values skip the
// corresponding filter.
func (r *PromptRepository) List(ctx context.Context, t models.PromptType, status models.PromptStatus) ([]models.Prompt, error) {
	query := r.db.WithContext(ctx).Order("type ASC, created_at DESC")
	if t != "" {
		query = query.Where("type = ?", t)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var prompts []models.Prompt
	if err := query.Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// Update updates a prompt.
func (r *PromptRepository) Update(ctx context.Context, prompt *models.Prompt) error {
	return r.db.WithContext(ctx).Save(prompt).Error
}

// Delete removes a prompt.
func (r *PromptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Prompt{}, "id = ?", id).Error
}

// GenerationLogRepository handles generation log data access.
type GenerationLogRepository struct {
	db *gorm.DB
}

// NewGenerationLogRepository creates a new generation log repository.
func NewGenerationLogRepository(db *gorm.DB) *GenerationLogRepository {
	return &GenerationLogRepository{db: db}
}

// Create inserts a new generation log.
func (r *GenerationLogRepository) Create(ctx context.Context, log *models.GenerationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CountByPrompt counts generation records referencing a prompt.
func (r *GenerationLogRepository) CountByPrompt(ctx context.Context, promptID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GenerationLog{}).
		Where("prompt_id = ?", promptID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByTimeRange retrieves generation logs in a time range.
func (r *GenerationLogRepository) GetByTimeRange(ctx context.Context, start, end time.Time) ([]models.GenerationLog, error) {
	var logs []models.GenerationLog
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
