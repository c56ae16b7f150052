package config

import "time"

// Config is the root configuration for TaskPilot.
type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Models  ModelsConfig  `json:"models"`
	Agent   AgentConfig   `json:"agent"`
	MCP     MCPConfig     `json:"mcp"`
	Storage StorageConfig `json:"storage"`
}

// GatewayConfig holds the HTTP gateway settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ModelsConfig holds model provider configuration.
type ModelsConfig struct {
	Default   string                    `json:"default"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Driver     string         `json:"driver"` // "openai", "claude", "ollama"
	Model      string         `json:"model"`
	BaseURL    string         `json:"base_url,omitempty"`
	APIKey     string         `json:"api_key,omitempty"` // direct key or ${{ .Env.VAR }} template
	ByAzure    bool           `json:"by_azure,omitempty"`
	APIVersion string         `json:"api_version,omitempty"`
	MaxTokens  int            `json:"max_tokens,omitempty"`
	Timeout    Duration       `json:"timeout,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

// AgentConfig holds conversation loop settings.
type AgentConfig struct {
	SystemPrompt string `json:"system_prompt,omitempty"`
	MaxToolLoops int    `json:"max_tool_loops,omitempty"`
}

// MCPConfig describes how to start the MCP tool server. An empty command
// means the binary re-executes itself with "serve".
type MCPConfig struct {
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// StorageConfig selects the snapshot backend. When Azure coordinates are
// present the blob backend is used, otherwise the local file at Path.
type StorageConfig struct {
	Path  string      `json:"path,omitempty"`
	Azure AzureConfig `json:"azure"`
}

// AzureConfig holds Azure Blob Storage coordinates.
type AzureConfig struct {
	ConnectionString string `json:"connection_string,omitempty"`
	Container        string `json:"container,omitempty"`
	Blob             string `json:"blob,omitempty"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
