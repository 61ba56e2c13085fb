// Package database provides database connection and management.
package database

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ai-config-console/internal/config"
	"ai-config-console/internal/crypto"
	"ai-config-console/internal/models"
)

// Database wraps the GORM database connection.
type Database struct {
	DB     *gorm.DB
	logger *zap.Logger
}

// New creates a new database connection.
func New(cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Database{
		DB:     db,
		logger: log,
	}, nil
}

// Migrate runs database migrations.
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&models.Provider{},
		&models.Model{},
		&models.Prompt{},
		&models.GenerationLog{},
	)
}

// Close closes the database connection.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// defaultProviders is the provider catalog seeded on first boot. Keys
// configured through the environment are stored encrypted so a fresh
// install can generate without a manual credential step.
func defaultProviders(cfg *config.ProvidersConfig, enc *crypto.Encryptor) ([]models.Provider, error) {
	providers := []models.Provider{
		{
			Name:     "OpenAI",
			Slug:     "openai",
			Status:   models.ProviderActive,
			Priority: 1,
			BaseURL:  cfg.OpenAI.BaseURL,
		},
		{
			Name:     "Anthropic",
			Slug:     "anthropic",
			Status:   models.ProviderActive,
			Priority: 2,
			BaseURL:  cfg.Anthropic.BaseURL,
		},
	}

	keys := []string{cfg.OpenAI.APIKey, cfg.Anthropic.APIKey}
	for i, key := range keys {
		if key == "" {
			continue
		}
		encrypted, err := enc.Encrypt(key)
		if err != nil {
			return nil, err
		}
		providers[i].EncryptedAPIKey = encrypted
	}

	return providers, nil
}

// SeedDefaultProviders creates default LLM providers.
func (d *Database) SeedDefaultProviders(cfg *config.ProvidersConfig, enc *crypto.Encryptor) error {
	providers, err := defaultProviders(cfg, enc)
	if err != nil {
		return err
	}

	for _, provider := range providers {
		var existing models.Provider
		result := d.DB.Where("slug = ?", provider.Slug).First(&existing)
		if result.Error != nil {
			if err := d.DB.Create(&provider).Error; err != nil {
				d.logger.Error("failed to seed provider", zap.String("slug", provider.Slug), zap.Error(err))
			}
		}
	}

	return nil
}

// defaultModels is the model catalog seeded on first boot.
func defaultModels(openaiID, anthropicID uuid.UUID) []models.Model {
	cost := func(v float64) *float64 { return &v }

	return []models.Model{
		{
			ProviderID:      openaiID,
			Name:            "GPT-4o",
			Slug:            "gpt-4o",
			MaxTokens:       128000,
			CostPer1KInput:  cost(0.0025),
			CostPer1KOutput: cost(0.01),
			Priority:        1,
			IsActive:        true,
		},
		{
			ProviderID:      openaiID,
			Name:            "GPT-4o mini",
			Slug:            "gpt-4o-mini",
			MaxTokens:       128000,
			CostPer1KInput:  cost(0.00015),
			CostPer1KOutput: cost(0.0006),
			Priority:        2,
			IsActive:        true,
		},
		{
			ProviderID:      anthropicID,
			Name:            "Claude Sonnet",
			Slug:            "claude-3-5-sonnet-20241022",
			MaxTokens:       200000,
			CostPer1KInput:  cost(0.003),
			CostPer1KOutput: cost(0.015),
			Priority:        3,
			IsActive:        true,
		},
	}
}

// SeedDefaultModels creates default generation models.
func (d *Database) SeedDefaultModels() error {
	var openai models.Provider
	if err := d.DB.Where("slug = ?", "openai").First(&openai).Error; err != nil {
		return nil
	}
	var anthropic models.Provider
	if err := d.DB.Where("slug = ?", "anthropic").First(&anthropic).Error; err != nil {
		return nil
	}

	for _, model := range defaultModels(openai.ID, anthropic.ID) {
		var existing models.Model
		result := d.DB.Where("slug = ? AND provider_id = ?", model.Slug, model.ProviderID).First(&existing)
		if result.Error != nil {
			if err := d.DB.Create(&model).Error; err != nil {
				d.logger.Error("failed to seed model", zap.String("slug", model.Slug), zap.Error(err))
			}
		}
	}

	return nil
}

// defaultPrompts is the prompt catalog seeded on first boot, one draft per
// generation scenario.
func defaultPrompts() []models.Prompt {
	return []models.Prompt{
		{
			Name:    "Defesa Prévia Padrão",
			Slug:    "defesa-previa-padrao-v100",
			Type:    models.PromptDefesaPrevia,
			Version: "1.0.0",
			Status:  models.PromptDraft,
			SystemPromptTemplate: "Você é um advogado especializado em direito de trânsito. " +
				"Redija peças formais, objetivas e fundamentadas na legislação vigente.",
			UserPromptTemplate: "Redija uma defesa prévia para o auto de infração {{numero_auto}}, " +
				"lavrado pelo órgão {{orgao_autuador}} contra o condutor {{nome_condutor}}. " +
				"Motivo da defesa: {{motivo}}.",
			Temperature: 0.4,
			MaxTokens:   4096,
			TopP:        1.0,
			MotiveCodes: datatypes.NewJSONSlice([]string{"*"}),
		},
		{
			Name:    "Recurso 1ª Instância Padrão",
			Slug:    "recurso-1a-instancia-padrao-v100",
			Type:    models.PromptRecurso1aInstancia,
			Version: "1.0.0",
			Status:  models.PromptDraft,
			SystemPromptTemplate: "Você é um advogado especializado em recursos de multas de trânsito " +
				"junto à JARI. Redija recursos formais e tecnicamente fundamentados.",
			UserPromptTemplate: "Redija um recurso de primeira instância contra a penalidade aplicada " +
				"no auto {{numero_auto}} ao condutor {{nome_condutor}}. " +
				"Argumentos principais: {{argumentos}}.",
			Temperature: 0.4,
			MaxTokens:   4096,
			TopP:        1.0,
			MotiveCodes: datatypes.NewJSONSlice([]string{"*"}),
		},
		{
			Name:    "Recurso 2ª Instância Padrão",
			Slug:    "recurso-2a-instancia-padrao-v100",
			Type:    models.PromptRecurso2aInstancia,
			Version: "1.0.0",
			Status:  models.PromptDraft,
			SystemPromptTemplate: "Você é um advogado especializado em recursos ao CETRAN. " +
				"Redija recursos de segunda instância formais e fundamentados.",
			UserPromptTemplate: "Redija um recurso de segunda instância referente ao auto " +
				"{{numero_auto}}, indeferido em primeira instância pelo motivo {{motivo_indeferimento}}. " +
				"Condutor: {{nome_condutor}}.",
			Temperature: 0.4,
			MaxTokens:   4096,
			TopP:        1.0,
			MotiveCodes: datatypes.NewJSONSlice([]string{"*"}),
		},
	}
}

// SeedDefaultPrompts creates the default prompt drafts so a fresh install
// has something to open in the playground.
func (d *Database) SeedDefaultPrompts() error {
	for _, prompt := range defaultPrompts() {
		var existing models.Prompt
		result := d.DB.Where("type = ? AND version = ?", prompt.Type, prompt.Version).First(&existing)
		if result.Error != nil {
			if err := d.DB.Create(&prompt).Error; err != nil {
				d.logger.Error("failed to seed prompt", zap.String("slug", prompt.Slug), zap.Error(err))
			}
		}
	}

	return nil
}
