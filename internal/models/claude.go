package models

import (
	"context"

	einoclaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/taskpilot/internal/config"
)

const defaultClaudeMaxTokens = 4096

// NewClaude creates an Anthropic Claude ChatModel.
func NewClaude(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	apiKey, err := resolveAPIKey(cfg, "ANTHROPIC_API_KEY")
	if err != nil {
		return nil, err
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	modelConfig := &einoclaude.Config{
		APIKey:    apiKey,
		Model:     cfg.Model,
		MaxTokens: maxTokens,
	}

	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		modelConfig.BaseURL = &baseURL
	}

	if cfg.Options != nil {
		if temp, ok := cfg.Options["temperature"].(float64); ok {
			t := float32(temp)
			modelConfig.Temperature = &t
		}
	}

	return einoclaude.NewChatModel(ctx, modelConfig)
}
