// Package config loads application configuration from config.yaml with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for autobi.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (embedded DuckDB)
	Database DatabaseConfig `yaml:"database"`

	// Cache lifetimes
	Cache CacheConfig `yaml:"cache"`

	// LLM configuration. SQL generation falls back to rule-based synthesis
	// when no API key is configured.
	LLM LLMConfig `yaml:"llm"`

	// Upload limits
	Upload UploadConfig `yaml:"upload"`
}

// DatabaseConfig holds the embedded DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location. Empty means in-memory.
	Path string `yaml:"path" env:"DUCKDB_PATH" env-default:""`
}

// CacheConfig holds TTLs for the schema and query caches.
type CacheConfig struct {
	SchemaTTLSeconds int `yaml:"schema_ttl_seconds" env:"CACHE_SCHEMA_TTL_SECONDS" env-default:"600"`
	QueryTTLSeconds  int `yaml:"query_ttl_seconds" env:"CACHE_QUERY_TTL_SECONDS" env-default:"120"`
}

// SchemaTTL returns the schema cache lifetime as a duration.
func (c *CacheConfig) SchemaTTL() time.Duration {
	return time.Duration(c.SchemaTTLSeconds) * time.Second
}

// QueryTTL returns the query cache lifetime as a duration.
func (c *CacheConfig) QueryTTL() time.Duration {
	return time.Duration(c.QueryTTLSeconds) * time.Second
}

// LLMConfig holds model provider settings.
type LLMConfig struct {
	Provider        string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Model           string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	Endpoint        string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	APIKey          string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	TimeoutSeconds  int    `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"30"`
	MaxOutputTokens int    `yaml:"max_output_tokens" env:"LLM_MAX_OUTPUT_TOKENS" env-default:"1024"`
}

// Timeout returns the request timeout as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IsAvailable returns true if an API key is configured.
func (c *LLMConfig) IsAvailable() bool {
	return c.APIKey != ""
}

// UploadConfig limits CSV uploads.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" env:"UPLOAD_MAX_BYTES" env-default:"52428800"` // 50 MiB
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; environment variables
// and defaults apply alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	return cfg, nil
}
