// Package config loads process configuration from a YAML file and
// TRIPWISE_-prefixed environment variables, with env taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" mapstructure:"embeddings"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`

	// MaxIterations bounds the outer conversation loop.
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

type EmbeddingsConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
}

type StoreConfig struct {
	// Backend selects the memory store: "chromem" (in-memory) or "sqlite".
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Path is the sqlite database file. Ignored for chromem.
	Path string `yaml:"path" mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Embeddings: EmbeddingsConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
		},
		Store: StoreConfig{
			Backend: "chromem",
			Path:    "tripwise.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		MaxIterations: 8,
	}
}

// Load reads config.yaml from the working directory or the user config
// directory, applies TRIPWISE_ environment overrides, and validates.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "tripwise"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "tripwise"))
	}

	v.SetEnvPrefix("TRIPWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file; defaults plus env.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// AutomaticEnv alone does not surface env vars for keys absent from the
	// file, so bind the secrets explicitly.
	if key := os.Getenv("TRIPWISE_ANTHROPIC_API_KEY"); key != "" {
		cfg.Anthropic.APIKey = key
	}
	if key := os.Getenv("TRIPWISE_EMBEDDINGS_API_KEY"); key != "" {
		cfg.Embeddings.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "chromem", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store path is required for the sqlite backend")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}
	return nil
}
