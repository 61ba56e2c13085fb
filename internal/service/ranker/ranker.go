// Package ranker maintains the global priority ordering of models.
package ranker

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"ai-config-console/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the referenced model does not exist.
	ErrNotFound = errors.New("model not found")
	// ErrInvalidPriority is returned for priority values below 1.
	ErrInvalidPriority = errors.New("priority must be >= 1")
)

// ModelStore is the persistence contract the ranker needs.
type ModelStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Model, error)
	GetAll(ctx context.Context) ([]models.Model, error)
	UpdatePriority(ctx context.Context, id uuid.UUID, priority int) (int64, error)
}

// ReorderEntry is one row of a batch priority update.
type ReorderEntry struct {
	ID       uuid.UUID `json:"id"`
	Priority int       `json:"priority"`
}

// Service ranks models by priority. Priority writes touch a single row and
// never renumber neighbors, so duplicate values can exist; display ordering
// resolves ties deterministically by id.
type Service struct {
	store  ModelStore
	logger *zap.Logger
}

// NewService creates a new ranker service.
func NewService(store ModelStore, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// SetPriority writes a model's priority directly. Values below 1 are
// rejected; callers normally clamp before issuing the call.
func (s *Service) SetPriority(ctx context.Context, id uuid.UUID, priority int) (*models.Model, error) {
	if priority < 1 {
		return nil, ErrInvalidPriority
	}

	model, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := s.store.UpdatePriority(ctx, id, priority); err != nil {
		return nil, err
	}

	model.Priority = priority
	return model, nil
}

// Move applies a delta to a single model's own priority. When the target
// would drop below 1 no write is issued and the model is returned unchanged.
func (s *Service) Move(ctx context.Context, id uuid.UUID, delta int) (*models.Model, error) {
	model, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	target := model.Priority + delta
	if target < 1 {
		return model, nil
	}

	if _, err := s.store.UpdatePriority(ctx, id, target); err != nil {
		return nil, err
	}

	model.Priority = target
	return model, nil
}

// Reorder applies each entry as an independent single-row write and reports
// how many rows were updated. Entries are validated up front; the writes
// themselves are not transactional.
func (s *Service) Reorder(ctx context.Context, entries []ReorderEntry) (int64, error) {
	for _, e := range entries {
		if e.Priority < 1 {
			return 0, ErrInvalidPriority
		}
	}

	var updated int64
	for _, e := range entries {
		rows, err := s.store.UpdatePriority(ctx, e.ID, e.Priority)
		if err != nil {
			return updated, err
		}
		updated += rows
	}

	return updated, nil
}

// ListOrdered returns all models in display order.
func (s *Service) ListOrdered(ctx context.Context) ([]models.Model, error) {
	list, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	SortModels(list)
	return list, nil
}

// SortModels sorts models by priority ascending, ties broken by id. The
// sort is stable so equal (priority, id) pairs keep their input order.
func SortModels(list []models.Model) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority < list[j].Priority
		}
		return bytes.Compare(list[i].ID[:], list[j].ID[:]) < 0
	})
}
