// Package models creates eino chat models from provider configuration.
package models

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/taskpilot/internal/config"
)

// CreateModel creates a model.ToolCallingChatModel from a provider config.
func CreateModel(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	switch strings.ToLower(cfg.Driver) {
	case "openai":
		return NewOpenAI(ctx, cfg)
	case "claude", "anthropic":
		return NewClaude(ctx, cfg)
	case "ollama":
		return NewOllama(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}
}

// resolveAPIKey returns the configured key, falling back to the given env
// vars in order. Missing keys are a configuration error at startup.
func resolveAPIKey(cfg config.ProviderConfig, envVars ...string) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no API key configured for driver %s (set %s)", cfg.Driver, strings.Join(envVars, " or "))
}
