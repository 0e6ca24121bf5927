// Package config loads samtrack's runtime configuration from an optional
// YAML file overlaid with environment variables. The provider credential is
// read once at startup; changing it requires a restart.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultModel is used when SAMTRACK_MODEL is not set.
const DefaultModel = "openai:gpt-4o-mini"

// fileConfig models the optional samtrack.yaml file. Every field has an
// environment or built-in fallback, so the file itself is optional.
type fileConfig struct {
	Model          string `yaml:"model"`
	DBPath         string `yaml:"db_path"`
	ListenAddr     string `yaml:"listen_addr"`
	PaceIntervalMS int    `yaml:"pace_interval_ms"`
	CallTimeoutSec int    `yaml:"call_timeout_sec"`
}

// Config holds the resolved runtime configuration.
type Config struct {
	// Model is a provider:model string, e.g. "openai:gpt-4o-mini".
	Model string
	// APIKey is the credential for the selected provider. Empty means the
	// summary features are disabled.
	APIKey string
	// Production disables diagnostic endpoints. It has no effect on the
	// summary flow.
	Production bool
	// DBPath is the SQLite database location.
	DBPath string
	// ListenAddr is the HTTP listen address for samtrack serve.
	ListenAddr string
	// PaceInterval is the minimum spacing between bulk summary calls.
	PaceInterval time.Duration
	// CallTimeout bounds a single provider call.
	CallTimeout time.Duration
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) and applies environment overrides. The credential comes
// from the environment only, matching the provider the model string names.
func Load(path string) (*Config, error) {
	var fc fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Model:        fc.Model,
		DBPath:       fc.DBPath,
		ListenAddr:   fc.ListenAddr,
		PaceInterval: 200 * time.Millisecond,
		CallTimeout:  60 * time.Second,
	}
	if fc.PaceIntervalMS > 0 {
		cfg.PaceInterval = time.Duration(fc.PaceIntervalMS) * time.Millisecond
	}
	if fc.CallTimeoutSec > 0 {
		cfg.CallTimeout = time.Duration(fc.CallTimeoutSec) * time.Second
	}

	if m := os.Getenv("SAMTRACK_MODEL"); m != "" {
		cfg.Model = m
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "samtrack.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	cfg.Production = strings.EqualFold(os.Getenv("PRODUCTION_MODE"), "true")
	cfg.APIKey = os.Getenv(CredentialVar(cfg.Model))

	return cfg, nil
}

// CredentialVar returns the environment variable name holding the API key
// for the provider named in a provider:model string.
func CredentialVar(model string) string {
	provider, _, _ := strings.Cut(model, ":")
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// ProviderConfigured reports whether a non-empty credential is available.
// This is the pre-flight gate for bulk runs: when false the orchestrator
// aborts without touching any row.
func (c *Config) ProviderConfigured() bool {
	return c != nil && c.APIKey != ""
}
