// Package config provides configuration management for the application.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Encryption EncryptionConfig
	Playground PlaygroundConfig
	Providers  ProvidersConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port        string
	Mode        string
	CORSOrigins []string
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// EncryptionConfig holds encryption configuration for provider credentials.
type EncryptionConfig struct {
	Key string // 32-byte key for AES-256 encryption
}

// PlaygroundConfig holds playground execution configuration.
type PlaygroundConfig struct {
	// CompareTimeout bounds a compare-mode run so one slow provider
	// cannot hold the whole call open indefinitely.
	CompareTimeout time.Duration
}

// ProviderConfig holds single provider connection defaults.
// Used when seeding providers and creating clients dynamically.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

// ProvidersConfig holds per-vendor connection defaults.
type ProvidersConfig struct {
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read .env file, but don't fail if it doesn't exist.
	// When running in Docker, environment variables are set directly.
	if err := viper.ReadInConfig(); err != nil {
		_ = err
	}

	setDefaults()

	cfg := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Mode:        viper.GetString("GIN_MODE"),
			CORSOrigins: strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ","),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Encryption: EncryptionConfig{
			Key: viper.GetString("ENCRYPTION_KEY"),
		},
		Playground: PlaygroundConfig{
			CompareTimeout: time.Duration(viper.GetInt("PLAYGROUND_COMPARE_TIMEOUT")) * time.Second,
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIKey:  viper.GetString("OPENAI_API_KEY"),
				BaseURL: viper.GetString("OPENAI_BASE_URL"),
			},
			Anthropic: ProviderConfig{
				APIKey:  viper.GetString("ANTHROPIC_API_KEY"),
				BaseURL: viper.GetString("ANTHROPIC_BASE_URL"),
			},
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}

// setDefaults sets default values for configuration.
func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "release")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("PLAYGROUND_COMPARE_TIMEOUT", 120)
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
}

// GetDSN returns the database connection string.
func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode
}
