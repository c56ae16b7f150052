package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/tailscale/hujson"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, expands ${{ .Env.VAR }} templates, strips
// comments, unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand templates before standardizing, since they live inside strings.
	expanded := expandEnvTemplates(string(data))

	std, err := hujson.Standardize([]byte(expanded))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with all defaults applied, for when no config
// file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields. Azure coordinates fall back to
// the conventional environment variables so a config file is optional when
// deploying against Blob Storage.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 8088
	}
	if cfg.Agent.MaxToolLoops <= 0 {
		cfg.Agent.MaxToolLoops = 3
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(DataPath(), "tasks.json")
	}
	if cfg.Storage.Azure.ConnectionString == "" {
		cfg.Storage.Azure.ConnectionString = os.Getenv("AZURE_STORAGE_CONNECTION_STRING")
	}
	if cfg.Storage.Azure.Container == "" {
		cfg.Storage.Azure.Container = envOr("AZURE_STORAGE_CONTAINER", "tasks")
	}
	if cfg.Storage.Azure.Blob == "" {
		cfg.Storage.Azure.Blob = envOr("AZURE_STORAGE_BLOB_NAME", "tasks.json")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
