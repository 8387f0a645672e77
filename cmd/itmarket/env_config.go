package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-itmarket/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // ITMARKET_CONFIG: config file name or path
	BaseURL    string // ITMARKET_BASE_URL: site root for root-relative URLs
	Dataset    string // ITMARKET_DATASET: monthly dataset file
}

// knownEnvVars lists valid ITMARKET_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"ITMARKET_CONFIG":   true,
	"ITMARKET_BASE_URL": true,
	"ITMARKET_DATASET":  true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath: os.Getenv("ITMARKET_CONFIG"),
		BaseURL:    os.Getenv("ITMARKET_BASE_URL"),
		Dataset:    os.Getenv("ITMARKET_DATASET"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized ITMARKET_* variables.
// Helps catch typos like ITMARKET_DATSET.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "ITMARKET_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// A value is only replaced while it still holds its default, so a config
// file wins over the environment.
// This ensures: CLI flags > config file > env vars > defaults
// (CLI flags are applied later by each command)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.BaseURL != "" && cfg.Site.BaseURL == config.DefaultBaseURL {
		cfg.Site.BaseURL = env.BaseURL
	}
	if env.Dataset != "" && cfg.Dataset.Path == config.DefaultDataset {
		cfg.Dataset.Path = env.Dataset
	}
}
