package models

import (
	"context"
	"os"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/taskpilot/internal/config"
)

// NewOpenAI creates an OpenAI ChatModel. With by_azure set it targets an
// Azure OpenAI deployment (base URL = endpoint, model = deployment name).
func NewOpenAI(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	envVars := []string{"OPENAI_API_KEY"}
	if cfg.ByAzure {
		envVars = []string{"AZURE_OPENAI_API_KEY", "OPENAI_API_KEY"}
	}
	apiKey, err := resolveAPIKey(cfg, envVars...)
	if err != nil {
		return nil, err
	}

	modelConfig := &einoopenai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   cfg.Model,
		ByAzure: cfg.ByAzure,
	}

	if cfg.BaseURL != "" {
		modelConfig.BaseURL = cfg.BaseURL
	} else if cfg.ByAzure {
		modelConfig.BaseURL = os.Getenv("AZURE_OPENAI_ENDPOINT")
	}
	if cfg.APIVersion != "" {
		modelConfig.APIVersion = cfg.APIVersion
	}

	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxCompletionTokens = &maxTokens
	}

	if cfg.Timeout.Duration() > 0 {
		modelConfig.Timeout = cfg.Timeout.Duration()
	} else {
		modelConfig.Timeout = 60 * time.Second
	}

	if cfg.Options != nil {
		if temp, ok := cfg.Options["temperature"].(float64); ok {
			t := float32(temp)
			modelConfig.Temperature = &t
		}
	}

	return einoopenai.NewChatModel(ctx, modelConfig)
}
