// Package generation executes a single prompt+model generation call.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-config-console/internal/models"
	"ai-config-console/internal/service/llm"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the prompt, model or provider is missing.
	ErrNotFound = errors.New("resource not found")
	// ErrInactiveResource is returned when the model is disabled or the
	// prompt is archived.
	ErrInactiveResource = errors.New("resource is not available for generation")
	// ErrProvider wraps an upstream generation failure. The call is
	// user-triggered and single-shot; no retry happens here.
	ErrProvider = errors.New("provider request failed")
)

// PromptStore resolves prompts by id.
type PromptStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prompt, error)
}

// ModelStore resolves models by id.
type ModelStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Model, error)
}

// ProviderStore resolves providers by id.
type ProviderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
}

// LogStore records generation history.
type LogStore interface {
	Create(ctx context.Context, log *models.GenerationLog) error
}

// Generator dispatches a rendered request to the provider's API.
type Generator interface {
	Generate(ctx context.Context, provider *models.Provider, req *llm.GenerateRequest) (*llm.GenerateResponse, error)
}

// Metrics carries usage, cost and timing data for one generation.
type Metrics struct {
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	DurationMs    int64   `json:"duration_ms"`
	EstimatedCost float64 `json:"estimated_cost"`
	ModelName     string  `json:"model_name"`
	ModelSlug     string  `json:"model_slug"`
	ProviderName  string  `json:"provider_name"`
	ProviderSlug  string  `json:"provider_slug"`
	PromptName    string  `json:"prompt_name"`
	PromptVersion string  `json:"prompt_version"`
}

// Result is the outcome of one generation call.
type Result struct {
	Content              string  `json:"content"`
	RenderedSystemPrompt string  `json:"rendered_system_prompt"`
	RenderedUserPrompt   string  `json:"rendered_user_prompt"`
	Metrics              Metrics `json:"metrics"`
}

// Executor resolves a (prompt, model) pair, renders the templates and runs
// the generation against the model's provider.
type Executor struct {
	prompts   PromptStore
	models    ModelStore
	providers ProviderStore
	logs      LogStore
	generator Generator
	logger    *zap.Logger
}

// NewExecutor creates a new generation executor.
func NewExecutor(
	prompts PromptStore,
	modelStore ModelStore,
	providers ProviderStore,
	logs LogStore,
	generator Generator,
	logger *zap.Logger,
) *Executor {
	return &Executor{
		prompts:   prompts,
		models:    modelStore,
		providers: providers,
		logs:      logs,
		generator: generator,
		logger:    logger,
	}
}

// Execute runs one generation. Drafts and inactive prompts are allowed so
// they can be tried in the playground before activation; archived prompts
// and disabled models are rejected.
func (e *Executor) Execute(ctx context.Context, promptID, modelID uuid.UUID, testData map[string]string) (*Result, error) {
	prompt, err := e.prompts.GetByID(ctx, promptID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if prompt.Status == models.PromptArchived {
		return nil, fmt.Errorf("%w: prompt is archived", ErrInactiveResource)
	}

	model, err := e.models.GetByID(ctx, modelID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !model.IsActive {
		return nil, fmt.Errorf("%w: model is disabled", ErrInactiveResource)
	}

	provider, err := e.providers.GetByID(ctx, model.ProviderID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	renderedSystem := RenderTemplate(prompt.SystemPromptTemplate, testData)
	renderedUser := RenderTemplate(prompt.UserPromptTemplate, testData)

	req := &llm.GenerateRequest{
		Model:            model.Slug,
		SystemPrompt:     renderedSystem,
		UserPrompt:       renderedUser,
		Temperature:      prompt.Temperature,
		MaxTokens:        prompt.MaxTokens,
		TopP:             prompt.TopP,
		FrequencyPenalty: prompt.FrequencyPenalty,
		PresencePenalty:  prompt.PresencePenalty,
	}

	start := time.Now()
	resp, err := e.generator.Generate(ctx, provider, req)
	duration := time.Since(start)

	if err != nil {
		e.record(ctx, prompt, model, &Metrics{DurationMs: duration.Milliseconds()}, err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	metrics := Metrics{
		InputTokens:   resp.InputTokens,
		OutputTokens:  resp.OutputTokens,
		TotalTokens:   resp.InputTokens + resp.OutputTokens,
		DurationMs:    duration.Milliseconds(),
		EstimatedCost: EstimatedCost(model, resp.InputTokens, resp.OutputTokens),
		ModelName:     model.Name,
		ModelSlug:     model.Slug,
		ProviderName:  provider.Name,
		ProviderSlug:  provider.Slug,
		PromptName:    prompt.Name,
		PromptVersion: prompt.Version,
	}

	e.record(ctx, prompt, model, &metrics, nil)

	return &Result{
		Content:              resp.Content,
		RenderedSystemPrompt: renderedSystem,
		RenderedUserPrompt:   renderedUser,
		Metrics:              metrics,
	}, nil
}

// EstimatedCost computes the price of one generation. A nil cost field on
// the model contributes zero.
func EstimatedCost(model *models.Model, inputTokens, outputTokens int) float64 {
	var cost float64
	if model.CostPer1KInput != nil {
		cost += float64(inputTokens) / 1000 * *model.CostPer1KInput
	}
	if model.CostPer1KOutput != nil {
		cost += float64(outputTokens) / 1000 * *model.CostPer1KOutput
	}
	return cost
}

// record persists a generation log entry; logging failures never fail the
// generation itself.
func (e *Executor) record(ctx context.Context, prompt *models.Prompt, model *models.Model, metrics *Metrics, genErr error) {
	entry := &models.GenerationLog{
		PromptID:     prompt.ID,
		ModelID:      model.ID,
		ProviderID:   model.ProviderID,
		InputTokens:  metrics.InputTokens,
		OutputTokens: metrics.OutputTokens,
		TotalTokens:  metrics.TotalTokens,
		Cost:         metrics.EstimatedCost,
		LatencyMs:    metrics.DurationMs,
		Success:      genErr == nil,
		Source:       "playground",
	}
	if genErr != nil {
		entry.ErrorMessage = genErr.Error()
	}

	if err := e.logs.Create(ctx, entry); err != nil {
		e.logger.Warn("failed to record generation log",
			zap.String("prompt_id", prompt.ID.String()),
			zap.Error(err))
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
