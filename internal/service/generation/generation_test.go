package generation

import (
	"context"
	"errors"
	"testing"

	"ai-config-console/internal/models"
	"ai-config-console/internal/service/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{
			name:     "single placeholder",
			template: "Hello {{name}}",
			data:     map[string]string{"name": "Maria"},
			expected: "Hello Maria",
		},
		{
			name:     "repeated placeholder",
			template: "{{numero_auto}} e novamente {{numero_auto}}",
			data:     map[string]string{"numero_auto": "AB123"},
			expected: "AB123 e novamente AB123",
		},
		{
			name:     "missing key left verbatim",
			template: "Hello {{name}}, ref {{missing}}",
			data:     map[string]string{"name": "Maria"},
			expected: "Hello Maria, ref {{missing}}",
		},
		{
			name:     "empty value substitutes empty string",
			template: "a{{x}}b",
			data:     map[string]string{"x": ""},
			expected: "ab",
		},
		{
			name:     "no placeholders",
			template: "plain text",
			data:     map[string]string{"name": "Maria"},
			expected: "plain text",
		},
		{
			name:     "nil data leaves everything verbatim",
			template: "Hello {{name}}",
			data:     nil,
			expected: "Hello {{name}}",
		},
		{
			name:     "keys with dots dashes underscores",
			template: "{{a.b}} {{c-d}} {{e_f}}",
			data:     map[string]string{"a.b": "1", "c-d": "2", "e_f": "3"},
			expected: "1 2 3",
		},
		{
			name:     "malformed braces untouched",
			template: "{{ spaced }} {single} {{unclosed",
			data:     map[string]string{"spaced": "x", "single": "y", "unclosed": "z"},
			expected: "{{ spaced }} {single} {{unclosed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderTemplate(tt.template, tt.data))
		})
	}
}

func TestEstimatedCost(t *testing.T) {
	costIn := 0.01
	costOut := 0.015

	tests := []struct {
		name         string
		model        *models.Model
		inputTokens  int
		outputTokens int
		expected     float64
	}{
		{
			name:         "both costs set",
			model:        &models.Model{CostPer1KInput: &costIn, CostPer1KOutput: &costOut},
			inputTokens:  1200,
			outputTokens: 1850,
			expected:     0.03975,
		},
		{
			name:         "nil input cost contributes zero",
			model:        &models.Model{CostPer1KOutput: &costOut},
			inputTokens:  1200,
			outputTokens: 1000,
			expected:     0.015,
		},
		{
			name:         "both costs nil",
			model:        &models.Model{},
			inputTokens:  5000,
			outputTokens: 5000,
			expected:     0,
		},
		{
			name:         "zero tokens",
			model:        &models.Model{CostPer1KInput: &costIn, CostPer1KOutput: &costOut},
			inputTokens:  0,
			outputTokens: 0,
			expected:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimatedCost(tt.model, tt.inputTokens, tt.outputTokens)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

type fakePromptStore struct {
	prompts map[uuid.UUID]*models.Prompt
}

func (f *fakePromptStore) GetByID(_ context.Context, id uuid.UUID) (*models.Prompt, error) {
	p, ok := f.prompts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

type fakeModelStore struct {
	models map[uuid.UUID]*models.Model
}

func (f *fakeModelStore) GetByID(_ context.Context, id uuid.UUID) (*models.Model, error) {
	m, ok := f.models[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

type fakeProviderStore struct {
	providers map[uuid.UUID]*models.Provider
}

func (f *fakeProviderStore) GetByID(_ context.Context, id uuid.UUID) (*models.Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

type fakeLogStore struct {
	entries []*models.GenerationLog
	err     error
}

func (f *fakeLogStore) Create(_ context.Context, log *models.GenerationLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, log)
	return nil
}

type fakeGenerator struct {
	response *llm.GenerateResponse
	err      error
	lastReq  *llm.GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, _ *models.Provider, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type executorFixture struct {
	executor *Executor
	prompt   *models.Prompt
	model    *models.Model
	provider *models.Provider
	logs     *fakeLogStore
	gen      *fakeGenerator
}

func newExecutorFixture(t *testing.T) *executorFixture {
	t.Helper()

	costIn := 0.0025
	costOut := 0.01

	provider := &models.Provider{Name: "OpenAI", Slug: "openai"}
	provider.ID = uuid.New()

	model := &models.Model{
		ProviderID:      provider.ID,
		Name:            "GPT-4o",
		Slug:            "gpt-4o",
		MaxTokens:       4096,
		CostPer1KInput:  &costIn,
		CostPer1KOutput: &costOut,
		Priority:        1,
		IsActive:        true,
	}
	model.ID = uuid.New()

	prompt := &models.Prompt{
		Name:                 "Defesa Previa",
		Type:                 models.PromptDefesaPrevia,
		Version:              "1.0.0",
		Status:               models.PromptActive,
		SystemPromptTemplate: "Voce redige defesas.",
		UserPromptTemplate:   "Auto {{numero_auto}}, condutor {{nome_condutor}}",
		Temperature:          0.7,
		MaxTokens:            2048,
		TopP:                 0.9,
	}
	prompt.ID = uuid.New()

	logs := &fakeLogStore{}
	gen := &fakeGenerator{response: &llm.GenerateResponse{
		Content:      "texto gerado",
		InputTokens:  1200,
		OutputTokens: 800,
	}}

	executor := NewExecutor(
		&fakePromptStore{prompts: map[uuid.UUID]*models.Prompt{prompt.ID: prompt}},
		&fakeModelStore{models: map[uuid.UUID]*models.Model{model.ID: model}},
		&fakeProviderStore{providers: map[uuid.UUID]*models.Provider{provider.ID: provider}},
		logs,
		gen,
		zap.NewNop(),
	)

	return &executorFixture{
		executor: executor,
		prompt:   prompt,
		model:    model,
		provider: provider,
		logs:     logs,
		gen:      gen,
	}
}

func TestExecutorExecute(t *testing.T) {
	t.Run("successful generation", func(t *testing.T) {
		f := newExecutorFixture(t)

		result, err := f.executor.Execute(context.Background(), f.prompt.ID, f.model.ID, map[string]string{
			"numero_auto":   "AB123",
			"nome_condutor": "Maria",
		})
		require.NoError(t, err)

		assert.Equal(t, "texto gerado", result.Content)
		assert.Equal(t, "Auto AB123, condutor Maria", result.RenderedUserPrompt)
		assert.Equal(t, "Voce redige defesas.", result.RenderedSystemPrompt)
		assert.Equal(t, 1200, result.Metrics.InputTokens)
		assert.Equal(t, 800, result.Metrics.OutputTokens)
		assert.Equal(t, 2000, result.Metrics.TotalTokens)
		assert.InDelta(t, 0.011, result.Metrics.EstimatedCost, 1e-9)
		assert.Equal(t, "gpt-4o", result.Metrics.ModelSlug)
		assert.Equal(t, "1.0.0", result.Metrics.PromptVersion)

		// prompt parameters travel on the wire request
		require.NotNil(t, f.gen.lastReq)
		assert.Equal(t, "gpt-4o", f.gen.lastReq.Model)
		assert.Equal(t, 0.7, f.gen.lastReq.Temperature)
		assert.Equal(t, 2048, f.gen.lastReq.MaxTokens)

		require.Len(t, f.logs.entries, 1)
		entry := f.logs.entries[0]
		assert.True(t, entry.Success)
		assert.Equal(t, f.prompt.ID, entry.PromptID)
		assert.Equal(t, 2000, entry.TotalTokens)
		assert.Equal(t, "playground", entry.Source)
	})

	t.Run("provider failure wraps ErrProvider and records", func(t *testing.T) {
		f := newExecutorFixture(t)
		f.gen.err = errors.New("upstream timeout")

		_, err := f.executor.Execute(context.Background(), f.prompt.ID, f.model.ID, map[string]string{"numero_auto": "X"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProvider)
		assert.Contains(t, err.Error(), "upstream timeout")

		require.Len(t, f.logs.entries, 1)
		assert.False(t, f.logs.entries[0].Success)
		assert.Equal(t, "upstream timeout", f.logs.entries[0].ErrorMessage)
	})

	t.Run("archived prompt rejected", func(t *testing.T) {
		f := newExecutorFixture(t)
		f.prompt.Status = models.PromptArchived

		_, err := f.executor.Execute(context.Background(), f.prompt.ID, f.model.ID, map[string]string{"numero_auto": "X"})
		assert.ErrorIs(t, err, ErrInactiveResource)
		assert.Empty(t, f.logs.entries)
	})

	t.Run("draft prompt allowed", func(t *testing.T) {
		f := newExecutorFixture(t)
		f.prompt.Status = models.PromptDraft

		_, err := f.executor.Execute(context.Background(), f.prompt.ID, f.model.ID, map[string]string{"numero_auto": "X"})
		assert.NoError(t, err)
	})

	t.Run("disabled model rejected", func(t *testing.T) {
		f := newExecutorFixture(t)
		f.model.IsActive = false

		_, err := f.executor.Execute(context.Background(), f.prompt.ID, f.model.ID, map[string]string{"numero_auto": "X"})
		assert.ErrorIs(t, err, ErrInactiveResource)
	})

	t.Run("unknown prompt", func(t *testing.T) {
		f := newExecutorFixture(t)

		_, err := f.executor.Execute(context.Background(), uuid.New(), f.model.ID, map[string]string{"numero_auto": "X"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown model", func(t *testing.T) {
		f := newExecutorFixture(t)

		_, err := f.executor.Execute(context.Background(), f.prompt.ID, uuid.New(), map[string]string{"numero_auto": "X"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("log failure does not fail generation", func(t *testing.T) {
		f := newExecutorFixture(t)
		f.logs.err = errors.New("db down")

		result, err := f.executor.Execute(context.Background(), f.prompt.ID, f.model.ID, map[string]string{"numero_auto": "X"})
		require.NoError(t, err)
		assert.Equal(t, "texto gerado", result.Content)
	})
}
