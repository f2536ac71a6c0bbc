// Package config loads CLI and dashboard configuration from a YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds classifier and UI defaults.
type Config struct {
	Provider     string  `yaml:"provider"`       // huggingface or openai
	Model        string  `yaml:"model"`          // provider-specific model ID
	LabelMapPath string  `yaml:"label_map"`      // path to the label map JSON
	Threshold    float64 `yaml:"threshold"`      // default confidence threshold
	MaxBatchSize int     `yaml:"max_batch_size"` // default batch cap
	Port         int     `yaml:"port"`           // dashboard port
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:     "huggingface",
		Model:        "",
		LabelMapPath: "models/label_map.json",
		Threshold:    0.75,
		MaxBatchSize: 100,
		Port:         8080,
	}
}

// Load reads the config file at path, if present, and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NEWSLENS_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("NEWSLENS_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("NEWSLENS_LABEL_MAP"); v != "" {
		cfg.LabelMapPath = v
	}
	if v := os.Getenv("NEWSLENS_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Threshold = f
		}
	}
	if v := os.Getenv("NEWSLENS_MAX_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxBatchSize = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
}

func (c Config) validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %g", c.Threshold)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max_batch_size must be at least 1, got %d", c.MaxBatchSize)
	}
	return nil
}
