// Package config loads docent configuration from YAML with environment
// overrides. A missing config file is not an error; defaults apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all docent configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Remote model configuration
	Gemini GeminiConfig `yaml:"gemini"`

	// Retry/backoff tuning for remote calls
	Retry RetryConfig `yaml:"retry"`

	// Audio settings
	Audio AudioConfig `yaml:"audio"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the remote model backend. Model identifiers are
// configuration, not logic: swapping models must not change any code path.
type GeminiConfig struct {
	APIKey      string `yaml:"api_key"`
	TextModel   string `yaml:"text_model"`
	SpeechModel string `yaml:"speech_model"`
	Voice       string `yaml:"voice"`
	Timeout     string `yaml:"timeout"`
}

// RetryConfig configures the transient-failure retry policy.
type RetryConfig struct {
	MaxRetries   int     `yaml:"max_retries"`
	InitialDelay string  `yaml:"initial_delay"`
	Multiplier   float64 `yaml:"multiplier"`
}

// AudioConfig configures playback and synthesis.
type AudioConfig struct {
	// Sample rate of PCM produced by the speech model (Hz)
	SampleRate int `yaml:"sample_rate"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "docent",
		Version: "0.3.0",

		Gemini: GeminiConfig{
			TextModel:   "gemini-2.5-flash",
			SpeechModel: "gemini-2.5-flash-preview-tts",
			Voice:       "Kore",
			Timeout:     "120s",
		},

		Retry: RetryConfig{
			MaxRetries:   3,
			InitialDelay: "1s",
			Multiplier:   2.0,
		},

		Audio: AudioConfig{
			SampleRate: 24000,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" && c.Gemini.APIKey == "" {
		c.Gemini.APIKey = key
	}
	if model := os.Getenv("DOCENT_TEXT_MODEL"); model != "" {
		c.Gemini.TextModel = model
	}
	if model := os.Getenv("DOCENT_SPEECH_MODEL"); model != "" {
		c.Gemini.SpeechModel = model
	}
	if os.Getenv("DOCENT_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// RequestTimeout parses the configured Gemini timeout, with a fallback.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}

// RetryInitialDelay parses the configured initial backoff delay.
func (c *Config) RetryInitialDelay() time.Duration {
	d, err := time.ParseDuration(c.Retry.InitialDelay)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
