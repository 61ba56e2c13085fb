// Package lifecycle manages prompt status transitions, cloning and diffing.
package lifecycle

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"ai-config-console/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the referenced prompt does not exist.
	ErrNotFound = errors.New("prompt not found")
	// ErrInvalidTransition is returned for a status change the state
	// machine does not allow, e.g. activating an archived prompt.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEditLocked is returned when mutating an active or archived prompt.
	ErrEditLocked = errors.New("prompt is not editable in its current status")
	// ErrDuplicateVersion is returned when a clone's (type, version) pair
	// already exists.
	ErrDuplicateVersion = errors.New("a prompt with this type and version already exists")
	// ErrConflict is returned when deleting an active prompt.
	ErrConflict = errors.New("active prompt cannot be deleted")
	// ErrHasActiveGenerations is returned when deleting a prompt that
	// generation history references.
	ErrHasActiveGenerations = errors.New("prompt has generation history")
	// ErrInvalidVersion is returned for versions not in MAJOR.MINOR.PATCH form.
	ErrInvalidVersion = errors.New("version must be MAJOR.MINOR.PATCH")
	// ErrInvalidType is returned for unknown prompt types.
	ErrInvalidType = errors.New("unknown prompt type")
)

var (
	versionRe   = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	cloneSlugRe = regexp.MustCompile(`-v\d+$`)
	slugCharsRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// PromptStore is the persistence contract the lifecycle manager needs.
type PromptStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error)
	FindActiveByType(ctx context.Context, t models.PromptType) (*models.Prompt, error)
	ExistsByTypeAndVersion(ctx context.Context, t models.PromptType, version string) (bool, error)
	List(ctx context.Context, t models.PromptType, status models.PromptStatus) ([]models.Prompt, error)
	Create(ctx context.Context, prompt *models.Prompt) error
	Update(ctx context.Context, prompt *models.Prompt) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GenerationCounter reports how many generation records reference a prompt.
type GenerationCounter interface {
	CountByPrompt(ctx context.Context, promptID uuid.UUID) (int64, error)
}

// Service enforces the prompt state machine and the single-active-per-type
// invariant. Activations are serialized per prompt type.
type Service struct {
	prompts  PromptStore
	gens     GenerationCounter
	logger   *zap.Logger
	mu       sync.Mutex
	typeLock map[models.PromptType]*sync.Mutex
}

// NewService creates a new lifecycle service.
func NewService(prompts PromptStore, gens GenerationCounter, logger *zap.Logger) *Service {
	return &Service{
		prompts:  prompts,
		gens:     gens,
		logger:   logger,
		typeLock: make(map[models.PromptType]*sync.Mutex),
	}
}

// lockForType returns the mutex serializing activations of one prompt type.
func (s *Service) lockForType(t models.PromptType) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.typeLock[t]
	if !ok {
		lock = &sync.Mutex{}
		s.typeLock[t] = lock
	}
	return lock
}

// CreateParams holds the fields of a new prompt.
type CreateParams struct {
	Name                 string
	Type                 models.PromptType
	Version              string
	SystemPromptTemplate string
	UserPromptTemplate   string
	Temperature          float64
	MaxTokens            int
	TopP                 float64
	FrequencyPenalty     float64
	PresencePenalty      float64
	MotiveCodes          []string
}

// Create inserts a new prompt in draft status.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Prompt, error) {
	if !models.ValidPromptType(params.Type) {
		return nil, ErrInvalidType
	}
	if !versionRe.MatchString(params.Version) {
		return nil, ErrInvalidVersion
	}

	exists, err := s.prompts.ExistsByTypeAndVersion(ctx, params.Type, params.Version)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateVersion
	}

	prompt := &models.Prompt{
		Name:                 params.Name,
		Slug:                 Slugify(params.Name) + "-v" + versionSuffix(params.Version),
		Type:                 params.Type,
		Version:              params.Version,
		Status:               models.PromptDraft,
		SystemPromptTemplate: params.SystemPromptTemplate,
		UserPromptTemplate:   params.UserPromptTemplate,
		Temperature:          params.Temperature,
		MaxTokens:            params.MaxTokens,
		TopP:                 params.TopP,
		FrequencyPenalty:     params.FrequencyPenalty,
		PresencePenalty:      params.PresencePenalty,
		MotiveCodes:          datatypes.NewJSONSlice(params.MotiveCodes),
	}

	if err := s.prompts.Create(ctx, prompt); err != nil {
		return nil, err
	}

	return prompt, nil
}

// Get retrieves a prompt by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Prompt, error) {
	prompt, err := s.prompts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return prompt, nil
}

// List retrieves prompts filtered by type and status; zero values skip the
// corresponding filter.
func (s *Service) List(ctx context.Context, t models.PromptType, status models.PromptStatus) ([]models.Prompt, error) {
	return s.prompts.List(ctx, t, status)
}

// UpdateParams holds optional in-place edits; nil fields are left untouched.
type UpdateParams struct {
	Name                 *string
	SystemPromptTemplate *string
	UserPromptTemplate   *string
	Temperature          *float64
	MaxTokens            *int
	TopP                 *float64
	FrequencyPenalty     *float64
	PresencePenalty      *float64
	MotiveCodes          []string
}

// Update edits a prompt in place. Only draft and inactive prompts are
// editable; active and archived prompts must be cloned instead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.Prompt, error) {
	prompt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if prompt.Status != models.PromptDraft && prompt.Status != models.PromptInactive {
		return nil, ErrEditLocked
	}

	if params.Name != nil {
		prompt.Name = *params.Name
	}
	if params.SystemPromptTemplate != nil {
		prompt.SystemPromptTemplate = *params.SystemPromptTemplate
	}
	if params.UserPromptTemplate != nil {
		prompt.UserPromptTemplate = *params.UserPromptTemplate
	}
	if params.Temperature != nil {
		prompt.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		prompt.MaxTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		prompt.TopP = *params.TopP
	}
	if params.FrequencyPenalty != nil {
		prompt.FrequencyPenalty = *params.FrequencyPenalty
	}
	if params.PresencePenalty != nil {
		prompt.PresencePenalty = *params.PresencePenalty
	}
	if params.MotiveCodes != nil {
		prompt.MotiveCodes = datatypes.NewJSONSlice(params.MotiveCodes)
	}

	if err := s.prompts.Update(ctx, prompt); err != nil {
		return nil, err
	}

	return prompt, nil
}

// ActivationResult reports the outcome of a status transition.
type ActivationResult struct {
	ID               uuid.UUID           `json:"id"`
	Status           models.PromptStatus `json:"status"`
	PreviousActiveID *uuid.UUID          `json:"previous_active_id"`
}

// Activate makes the prompt the single active one for its type, demoting
// any other active prompt of the same type to inactive. The find-and-demote
// and the activation write are serialized per type so two concurrent
// activations cannot both end up active.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*ActivationResult, error) {
	prompt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lock := s.lockForType(prompt.Type)
	lock.Lock()
	defer lock.Unlock()

	// Re-read inside the lock so the transition check and the demotion see
	// the state another activation may have just written.
	prompt, err = s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch prompt.Status {
	case models.PromptActive:
		// Already active: idempotent, nothing to demote.
		return &ActivationResult{ID: prompt.ID, Status: prompt.Status}, nil
	case models.PromptDraft, models.PromptInactive:
	default:
		return nil, ErrInvalidTransition
	}

	var previousActiveID *uuid.UUID
	current, err := s.prompts.FindActiveByType(ctx, prompt.Type)
	if err != nil {
		return nil, err
	}
	if current != nil && current.ID != prompt.ID {
		current.Status = models.PromptInactive
		if err := s.prompts.Update(ctx, current); err != nil {
			return nil, err
		}
		demotedID := current.ID
		previousActiveID = &demotedID
	}

	prompt.Status = models.PromptActive
	if err := s.prompts.Update(ctx, prompt); err != nil {
		return nil, err
	}

	s.logger.Info("prompt activated",
		zap.String("prompt_id", prompt.ID.String()),
		zap.String("type", string(prompt.Type)))

	return &ActivationResult{
		ID:               prompt.ID,
		Status:           prompt.Status,
		PreviousActiveID: previousActiveID,
	}, nil
}

// Deactivate moves a prompt to inactive. Deactivating an already inactive
// prompt is a no-op, not an error.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*ActivationResult, error) {
	prompt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch prompt.Status {
	case models.PromptInactive:
		return &ActivationResult{ID: prompt.ID, Status: prompt.Status}, nil
	case models.PromptDraft, models.PromptActive:
	default:
		return nil, ErrInvalidTransition
	}

	prompt.Status = models.PromptInactive
	if err := s.prompts.Update(ctx, prompt); err != nil {
		return nil, err
	}

	return &ActivationResult{ID: prompt.ID, Status: prompt.Status}, nil
}

// Archive moves a prompt to the terminal archived status. Archived prompts
// have no outgoing transitions.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*ActivationResult, error) {
	prompt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if prompt.Status == models.PromptArchived {
		return nil, ErrInvalidTransition
	}

	prompt.Status = models.PromptArchived
	if err := s.prompts.Update(ctx, prompt); err != nil {
		return nil, err
	}

	return &ActivationResult{ID: prompt.ID, Status: prompt.Status}, nil
}

// Clone copies a prompt into a new draft carrying the caller-supplied
// version. The clone keeps every template and parameter field of the source;
// its slug is derived from the source slug and the new version. Duplicate
// detection is by (type, version).
func (s *Service) Clone(ctx context.Context, sourceID uuid.UUID, newVersion, name string) (*models.Prompt, error) {
	if !versionRe.MatchString(newVersion) {
		return nil, ErrInvalidVersion
	}

	source, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	exists, err := s.prompts.ExistsByTypeAndVersion(ctx, source.Type, newVersion)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateVersion
	}

	if name == "" {
		name = source.Name
	}

	clone := &models.Prompt{
		Name:                 name,
		Slug:                 CloneSlug(source.Slug, newVersion),
		Type:                 source.Type,
		Version:              newVersion,
		Status:               models.PromptDraft,
		SystemPromptTemplate: source.SystemPromptTemplate,
		UserPromptTemplate:   source.UserPromptTemplate,
		Temperature:          source.Temperature,
		MaxTokens:            source.MaxTokens,
		TopP:                 source.TopP,
		FrequencyPenalty:     source.FrequencyPenalty,
		PresencePenalty:      source.PresencePenalty,
		MotiveCodes:          datatypes.NewJSONSlice([]string(source.MotiveCodes)),
	}

	if err := s.prompts.Create(ctx, clone); err != nil {
		return nil, err
	}

	s.logger.Info("prompt cloned",
		zap.String("source_id", source.ID.String()),
		zap.String("clone_id", clone.ID.String()),
		zap.String("version", newVersion))

	return clone, nil
}

// PromptComparison holds the comparable fields of one prompt version.
type PromptComparison struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Version              string    `json:"version"`
	SystemPromptTemplate string    `json:"system_prompt_template"`
	UserPromptTemplate   string    `json:"user_prompt_template"`
	Temperature          float64   `json:"temperature"`
	MaxTokens            int       `json:"max_tokens"`
	TopP                 float64   `json:"top_p"`
	FrequencyPenalty     float64   `json:"frequency_penalty"`
	PresencePenalty      float64   `json:"presence_penalty"`
}

// DiffResult holds two prompt versions side by side. Field-level
// highlighting is the caller's concern.
type DiffResult struct {
	PromptA PromptComparison `json:"prompt_a"`
	PromptB PromptComparison `json:"prompt_b"`
}

// Diff fetches the comparable fields of two prompts.
func (s *Service) Diff(ctx context.Context, idA, idB uuid.UUID) (*DiffResult, error) {
	a, err := s.Get(ctx, idA)
	if err != nil {
		return nil, err
	}
	b, err := s.Get(ctx, idB)
	if err != nil {
		return nil, err
	}

	return &DiffResult{
		PromptA: comparison(a),
		PromptB: comparison(b),
	}, nil
}

func comparison(p *models.Prompt) PromptComparison {
	return PromptComparison{
		ID:                   p.ID,
		Name:                 p.Name,
		Version:              p.Version,
		SystemPromptTemplate: p.SystemPromptTemplate,
		UserPromptTemplate:   p.UserPromptTemplate,
		Temperature:          p.Temperature,
		MaxTokens:            p.MaxTokens,
		TopP:                 p.TopP,
		FrequencyPenalty:     p.FrequencyPenalty,
		PresencePenalty:      p.PresencePenalty,
	}
}

// Delete removes a prompt. Active prompts and prompts with generation
// history are protected.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	prompt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if prompt.Status == models.PromptActive {
		return ErrConflict
	}

	count, err := s.gens.CountByPrompt(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasActiveGenerations
	}

	return s.prompts.Delete(ctx, id)
}

// Slugify lowercases a name and collapses non-alphanumeric runs to dashes.
func Slugify(name string) string {
	slug := slugCharsRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// CloneSlug derives a clone's slug from the source slug and the new
// version: any trailing -v<digits> marker is stripped before appending the
// new one, so repeated cloning does not stack suffixes.
func CloneSlug(sourceSlug, version string) string {
	base := cloneSlugRe.ReplaceAllString(sourceSlug, "")
	return base + "-v" + versionSuffix(version)
}

func versionSuffix(version string) string {
	return strings.ReplaceAll(version, ".", "")
}
