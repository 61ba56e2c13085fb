// Package models defines database models for the application.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BaseModel provides common fields for all models.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProviderStatus enumerates provider operational states.
type ProviderStatus string

const (
	ProviderActive      ProviderStatus = "active"
	ProviderInactive    ProviderStatus = "inactive"
	ProviderMaintenance ProviderStatus = "maintenance"
)

// Provider represents an upstream LLM vendor configuration.
type Provider struct {
	BaseModel
	Name            string         `gorm:"not null" json:"name"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Status          ProviderStatus `gorm:"default:active;index" json:"status"`
	Priority        int            `gorm:"default:1" json:"priority"`
	BaseURL         string         `gorm:"not null" json:"base_url"`
	EncryptedAPIKey string         `json:"-"`
	Models          []Model        `gorm:"foreignKey:ProviderID" json:"models,omitempty"`
}

// HasCredential reports whether an API key is stored for the provider.
func (p *Provider) HasCredential() bool {
	return p.EncryptedAPIKey != ""
}

// Model represents a generation model belonging to a provider.
// Priority ranks models globally across providers; duplicate values are
// tolerated and ordering ties break on id.
type Model struct {
	BaseModel
	ProviderID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_models_provider_slug" json:"provider_id"`
	Name            string    `gorm:"not null" json:"name"`
	Slug            string    `gorm:"not null;uniqueIndex:idx_models_provider_slug" json:"slug"`
	MaxTokens       int       `gorm:"default:4096" json:"max_tokens"`
	CostPer1KInput  *float64  `json:"cost_per_1k_input"`
	CostPer1KOutput *float64  `json:"cost_per_1k_output"`
	Priority        int       `gorm:"default:1;index" json:"priority"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	Provider        Provider  `gorm:"foreignKey:ProviderID" json:"-"`
}

// PromptType discriminates the generation scenario a prompt serves.
type PromptType string

const (
	PromptDefesaPrevia       PromptType = "defesa_previa"
	PromptRecurso1aInstancia PromptType = "recurso_1a_instancia"
	PromptRecurso2aInstancia PromptType = "recurso_2a_instancia"
)

// ValidPromptType reports whether t is a known prompt type.
func ValidPromptType(t PromptType) bool {
	switch t {
	case PromptDefesaPrevia, PromptRecurso1aInstancia, PromptRecurso2aInstancia:
		return true
	}
	return false
}

// PromptStatus enumerates prompt lifecycle states.
type PromptStatus string

const (
	PromptDraft    PromptStatus = "draft"
	PromptActive   PromptStatus = "active"
	PromptInactive PromptStatus = "inactive"
	PromptArchived PromptStatus = "archived"
)

// Prompt represents a versioned template pair with generation parameters.
// At most one prompt per type may be active at a time; active and archived
// prompts are edit-locked and can only be cloned.
type Prompt struct {
	BaseModel
	Name                 string                      `gorm:"not null" json:"name"`
	Slug                 string                      `gorm:"uniqueIndex;not null" json:"slug"`
	Type                 PromptType                  `gorm:"not null;index" json:"type"`
	Version              string                      `gorm:"not null" json:"version"`
	Status               PromptStatus                `gorm:"default:draft;index" json:"status"`
	SystemPromptTemplate string                      `gorm:"type:text" json:"system_prompt_template"`
	UserPromptTemplate   string                      `gorm:"type:text" json:"user_prompt_template"`
	Temperature          float64                     `gorm:"default:0.7" json:"temperature"`
	MaxTokens            int                         `gorm:"default:4096" json:"max_tokens"`
	TopP                 float64                     `gorm:"default:1.0" json:"top_p"`
	FrequencyPenalty     float64                     `gorm:"default:0" json:"frequency_penalty"`
	PresencePenalty      float64                     `gorm:"default:0" json:"presence_penalty"`
	MotiveCodes          datatypes.JSONSlice[string] `json:"motive_codes"`
}

// MatchesMotive reports whether the prompt covers the given motive code.
// A stored "*" entry matches any code.
func (p *Prompt) MatchesMotive(code string) bool {
	for _, m := range p.MotiveCodes {
		if m == "*" || m == code {
			return true
		}
	}
	return false
}

// GenerationLog records a single generation execution, successful or not.
type GenerationLog struct {
	BaseModel
	PromptID     uuid.UUID `gorm:"type:uuid;not null;index" json:"prompt_id"`
	ModelID      uuid.UUID `gorm:"type:uuid;not null;index" json:"model_id"`
	ProviderID   uuid.UUID `gorm:"type:uuid;index" json:"provider_id"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	Cost         float64   `json:"cost"`
	LatencyMs    int64     `json:"latency_ms"`
	Success      bool      `gorm:"index" json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Source       string    `gorm:"default:playground" json:"source"`
}
