package config

import (
	"fmt"
	"time"
)

// placeholderAPIKey is the value shipped in sample configuration files. It is
// treated the same as an empty key.
const placeholderAPIKey = "your-api-key-here"

// Config holds all application configuration.
// It is built once at process start and passed explicitly to the components
// that need it.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// AutoMigrate applies pending migrations before the server starts listening.
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// TimeZone is an IANA zone name, or "Local". Task deadlines are 23:59 and
	// "today" is computed in this zone.
	TimeZone string `mapstructure:"timezone"`
}

// Location resolves TimeZone. Empty and "Local" mean time.Local.
func (c ServerConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid server timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
	BCryptCost           int    `mapstructure:"bcrypt_cost"            validate:"required,gte=4,lte=31"`
}

// LLMConfig contains the settings of the external completion backend.
//
// APIKey is optional. Without a usable key the distribution engine and the chat
// assistant run in their deterministic fallback modes.
type LLMConfig struct {
	Provider           string  `mapstructure:"provider"             validate:"required,oneof=openai gemini"`
	APIKey             string  `mapstructure:"api_key"`
	Endpoint           string  `mapstructure:"endpoint"             validate:"required,url"`
	Model              string  `mapstructure:"model"                validate:"required"`
	Temperature        float64 `mapstructure:"temperature"          validate:"gte=0,lte=2"`
	MaxTokens          int     `mapstructure:"max_tokens"           validate:"required,gt=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds"      validate:"required,gt=0"`
	MaxConcurrentCalls int     `mapstructure:"max_concurrent_calls" validate:"required,gt=0"`
}

// HasCredential reports whether an API key that can actually be sent to the
// provider is configured.
func (c LLMConfig) HasCredential() bool {
	return c.APIKey != "" && c.APIKey != placeholderAPIKey
}
