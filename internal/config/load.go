package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const envPrefix = "NOTESFLOW_"

// Load reads a yaml or toml file (chosen by extension), applies environment
// overrides and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		cfg.Paths = PathsConfig{Input: "data/input", Output: "data/output"}
	} else if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode toml config: %w", err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode yaml config: %w", err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	// The bare Gemini variable is what most tooling exports; ours wins if both are set.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv(envPrefix + "GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv(envPrefix + "MODE"); v != "" {
		cfg.Pipeline.Mode = v
	}
	if v := os.Getenv(envPrefix + "OLLAMA_URL"); v != "" {
		cfg.Ollama.URL = v
	}
	if v := os.Getenv(envPrefix + "OLLAMA_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv(envPrefix + "TRANSCRIBE_COMMAND"); v != "" {
		cfg.Transcription.Command = v
	}
	if v := os.Getenv(envPrefix + "TOKEN_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.TokenThreshold = n
		}
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
