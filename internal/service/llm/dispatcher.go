package llm

import (
	"context"
	"errors"

	"ai-config-console/internal/crypto"
	"ai-config-console/internal/models"

	"go.uber.org/zap"
)

// ErrNoCredential is returned when a provider has no stored API key.
var ErrNoCredential = errors.New("provider has no credential configured")

// Dispatcher resolves a provider record to a concrete client and forwards
// the generation call. API keys are stored encrypted on the provider row.
type Dispatcher struct {
	encryptor *crypto.Encryptor
	logger    *zap.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(encryptor *crypto.Encryptor, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		encryptor: encryptor,
		logger:    logger,
	}
}

// Generate dispatches a generation request to the provider's API.
func (d *Dispatcher) Generate(ctx context.Context, provider *models.Provider, req *GenerateRequest) (*GenerateResponse, error) {
	client, err := d.clientFor(provider)
	if err != nil {
		return nil, err
	}
	return client.Generate(ctx, req)
}

// clientFor builds a client for the provider, decrypting its stored key.
// Unknown provider slugs fall back to the OpenAI-compatible client.
func (d *Dispatcher) clientFor(provider *models.Provider) (Client, error) {
	if !provider.HasCredential() {
		return nil, ErrNoCredential
	}

	apiKey, err := d.encryptor.Decrypt(provider.EncryptedAPIKey)
	if err != nil {
		return nil, err
	}

	switch provider.Slug {
	case "anthropic":
		return NewAnthropicClient(apiKey, provider.BaseURL, d.logger), nil
	default:
		return NewOpenAIClient(apiKey, provider.BaseURL, d.logger), nil
	}
}
