// Package config loads csviz configuration.
// Source priority (highest to lowest):
// 1. Environment variables (CSVIZ_SERVER_URL, CSVIZ_TIMEOUT_SECONDS)
// 2. Config file path specified via --config flag
// 3. ~/.config/csviz/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration structure for csviz.
type Config struct {
	// ServerURL is the base URL of the CSV Visualizer API.
	ServerURL string `yaml:"server_url"`

	// TimeoutSeconds bounds each HTTP request at the transport layer.
	// 0 disables the bound. The workspace controller itself has no
	// timeout policy.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// CredentialsFile overrides the token/theme store location.
	// Empty = ~/.config/csviz/credentials.yaml.
	CredentialsFile string `yaml:"credentials_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:8000/api",
		TimeoutSeconds: 30,
	}
}

// Load reads the config file and merges environment variable overrides.
// A missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(home, ".config", "csviz", "config.yaml")
		}
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}

	if v := os.Getenv("CSVIZ_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("CSVIZ_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.TimeoutSeconds = n
		}
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultConfig().ServerURL
	}
	return cfg, nil
}
