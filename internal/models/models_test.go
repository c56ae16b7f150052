package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dohr-michael/taskpilot/internal/config"
)

func TestCreateModel_UnknownDriver(t *testing.T) {
	_, err := CreateModel(context.Background(), config.ProviderConfig{Driver: "mystery"})
	if err == nil || !strings.Contains(err.Error(), "unknown driver") {
		t.Fatalf("err = %v", err)
	}
}

func TestResolveAPIKey(t *testing.T) {
	cfg := config.ProviderConfig{Driver: "openai", APIKey: "direct"}
	key, err := resolveAPIKey(cfg, "TASKPILOT_TEST_KEY")
	if err != nil || key != "direct" {
		t.Fatalf("key = %q, err = %v", key, err)
	}

	t.Setenv("TASKPILOT_TEST_KEY", "from-env")
	cfg.APIKey = ""
	key, err = resolveAPIKey(cfg, "TASKPILOT_TEST_KEY")
	if err != nil || key != "from-env" {
		t.Fatalf("key = %q, err = %v", key, err)
	}
}

func TestResolveAPIKey_Missing(t *testing.T) {
	t.Setenv("TASKPILOT_TEST_KEY", "")
	_, err := resolveAPIKey(config.ProviderConfig{Driver: "openai"}, "TASKPILOT_TEST_KEY")
	if err == nil || !strings.Contains(err.Error(), "TASKPILOT_TEST_KEY") {
		t.Fatalf("err = %v, want it to name the env var", err)
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	r := NewRegistry(config.ModelsConfig{Providers: map[string]config.ProviderConfig{}})
	_, err := r.Get(context.Background(), "nope")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistry_NoDefault(t *testing.T) {
	r := NewRegistry(config.ModelsConfig{})
	if _, err := r.Default(context.Background()); err == nil {
		t.Fatal("expected an error when no default is configured")
	}
}

func TestRegistry_DefaultName(t *testing.T) {
	r := NewRegistry(config.ModelsConfig{
		Default: "main",
		Providers: map[string]config.ProviderConfig{
			"main": {Driver: "ollama", Model: "llama3"},
		},
	})
	if r.DefaultName() != "main" {
		t.Errorf("DefaultName = %q", r.DefaultName())
	}
}

func TestRegistry_InitErrorIsSticky(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	r := NewRegistry(config.ModelsConfig{
		Default: "main",
		Providers: map[string]config.ProviderConfig{
			"main": {Driver: "openai", Model: "gpt-4o-mini"},
		},
	})

	_, first := r.Get(context.Background(), "main")
	if first == nil {
		t.Fatal("expected init failure without an API key")
	}
	_, second := r.Get(context.Background(), "main")
	if second == nil || second.Error() != first.Error() {
		t.Errorf("second error %v does not match first %v", second, first)
	}
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"auth", "401 unauthorized", "authentication failed"},
		{"rate limit", "429 too many requests", "rate limited"},
		{"context", "prompt exceeds context length", "context too long"},
		{"not found", "model not found", "model not found"},
		{"connection", "dial tcp: connection refused", "connection error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := HandleError(errors.New(tc.in))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("HandleError(%q) = %v, want %q", tc.in, err, tc.want)
			}
			if !strings.Contains(err.Error(), tc.in) {
				t.Errorf("original error text lost: %v", err)
			}
		})
	}

	if HandleError(nil) != nil {
		t.Error("nil must stay nil")
	}
	plain := errors.New("something odd")
	if got := HandleError(plain); got != plain {
		t.Errorf("unclassified errors must pass through, got %v", got)
	}
}
