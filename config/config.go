// Package config loads deployment configuration for Switchboard from YAML,
// applies environment overrides and validates the result. Programmatic users
// can skip it entirely and use functional options; it exists for deployments
// that prefer a config file next to the binary.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/switchboard-ai/switchboard/model"
	"github.com/switchboard-ai/switchboard/router"
)

// Config is the top-level configuration document.
type Config struct {
	Router  RouterConfig  `yaml:"router"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// RouterConfig mirrors router.Options for file-based deployments.
type RouterConfig struct {
	Policy              string        `yaml:"policy"` // "single_best" or "all_above_threshold"
	PriorityThreshold   int           `yaml:"priority_threshold"`
	AgentTimeout        time.Duration `yaml:"agent_timeout"`
	ClassifyTimeout     time.Duration `yaml:"classify_timeout"`
	MaxConcurrentAgents int64         `yaml:"max_concurrent_agents"`
	FallbackIntent      string        `yaml:"fallback_intent"`
	FallbackResponse    string        `yaml:"fallback_response"`
}

// ModelConfig selects and tunes the generation backend.
type ModelConfig struct {
	Provider    string              `yaml:"provider"` // "anthropic", "openai" or "mock"
	Name        string              `yaml:"name"`
	APIKey      string              `yaml:"api_key"`
	Temperature float64             `yaml:"temperature"`
	MaxTokens   int64               `yaml:"max_tokens"`
	Breaker     model.BreakerConfig `yaml:"breaker"`
}

// LoggingConfig tunes structured log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Defaults returns the baseline configuration.
func Defaults() *Config {
	return &Config{
		Router: RouterConfig{
			Policy:              router.SelectSingleBest.String(),
			AgentTimeout:        router.DefaultAgentTimeout,
			ClassifyTimeout:     router.DefaultClassifyTimeout,
			MaxConcurrentAgents: router.DefaultMaxConcurrentAgents,
			FallbackIntent:      router.DefaultFallbackIntent,
			FallbackResponse:    router.DefaultFallbackResponse,
		},
		Model: ModelConfig{
			Provider:    "mock",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML config file, applies env var overrides, and validates.
// A missing file is not an error: defaults plus env overrides apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps well-known environment variables onto the config so
// secrets stay out of files.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SWITCHBOARD_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("SWITCHBOARD_MODEL_PROVIDER"); v != "" {
		cfg.Model.Provider = v
	}
	if v := os.Getenv("SWITCHBOARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate rejects configurations the router cannot run with.
func Validate(cfg *Config) error {
	if _, err := router.ParsePolicy(cfg.Router.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch cfg.Model.Provider {
	case "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("config: unknown model provider %q", cfg.Model.Provider)
	}
	if cfg.Router.AgentTimeout < 0 || cfg.Router.ClassifyTimeout < 0 {
		return fmt.Errorf("config: timeouts must not be negative")
	}
	if cfg.Router.MaxConcurrentAgents < 0 {
		return fmt.Errorf("config: max_concurrent_agents must not be negative")
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", cfg.Logging.Format)
	}
	return nil
}

// RouterOptions converts the router section into functional options for
// router.New. The policy string is assumed validated.
func (c *Config) RouterOptions() []func(o *router.Options) {
	policy, _ := router.ParsePolicy(c.Router.Policy)
	return []func(o *router.Options){func(o *router.Options) {
		o.Policy = policy
		o.PriorityThreshold = c.Router.PriorityThreshold
		if c.Router.AgentTimeout > 0 {
			o.AgentTimeout = c.Router.AgentTimeout
		}
		if c.Router.ClassifyTimeout > 0 {
			o.ClassifyTimeout = c.Router.ClassifyTimeout
		}
		o.MaxConcurrentAgents = c.Router.MaxConcurrentAgents
		if c.Router.FallbackIntent != "" {
			o.FallbackIntent = c.Router.FallbackIntent
		}
		if c.Router.FallbackResponse != "" {
			o.FallbackResponse = c.Router.FallbackResponse
		}
	}}
}
