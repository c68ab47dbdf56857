// Package config loads blockmesh CLI settings from defaults, an optional TOML
// file and BLOCKMESH_ prefixed environment variables, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides, e.g. BLOCKMESH_API_KEY.
const EnvPrefix = "BLOCKMESH_"

// ErrMissingAPIKey is returned by RequireAPIKey when no key is configured.
var ErrMissingAPIKey = errors.New("config: api key is required")

// Config holds the settings shared by all commands.
type Config struct {
	Provider  string `koanf:"provider" validate:"required,oneof=deepseek anthropic"`
	Model     string `koanf:"model"`
	BaseURL   string `koanf:"base_url" validate:"omitempty,url"`
	APIKey    string `koanf:"api_key"`
	MaxTokens int64  `koanf:"max_tokens" validate:"gte=1"`
	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=text json tint"`
}

var defaults = map[string]any{
	"provider":   "deepseek",
	"max_tokens": 4096,
	"log_level":  "info",
	"log_format": "tint",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load resolves the configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireAPIKey reports ErrMissingAPIKey when no key is set. Live commands
// call it; replay works offline and does not.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
