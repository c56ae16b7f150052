package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskpilot/internal/agent"
	"github.com/dohr-michael/taskpilot/internal/config"
	taskmcp "github.com/dohr-michael/taskpilot/internal/mcp"
	"github.com/dohr-michael/taskpilot/internal/models"
)

// loadConfig applies the debug flag to the default logger and loads the
// config file, falling back to defaults when it does not exist.
func loadConfig(cmd *cli.Command) *config.Config {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Debug("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}
	return cfg
}

// serverCommand resolves the MCP server invocation: explicit config wins,
// otherwise the running binary re-executes itself with "serve".
func serverCommand(cfg *config.Config) (string, []string, error) {
	if cfg.MCP.Command != "" {
		return cfg.MCP.Command, cfg.MCP.Args, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("resolve own binary: %w", err)
	}
	return exe, []string{"serve"}, nil
}

// newRunner wires model, tool session, and loop for one conversation scope.
// The caller owns the returned session and must close it.
func newRunner(ctx context.Context, cfg *config.Config) (*agent.Runner, *taskmcp.Session, error) {
	registry := models.NewRegistry(cfg.Models)
	chatModel, err := registry.Default(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("init default model: %w", err)
	}

	command, args, err := serverCommand(cfg)
	if err != nil {
		return nil, nil, err
	}
	session, err := taskmcp.Open(ctx, command, args...)
	if err != nil {
		return nil, nil, err
	}

	runner := agent.New(agent.Config{
		Model:        chatModel,
		Session:      session,
		SystemPrompt: cfg.Agent.SystemPrompt,
		MaxToolLoops: cfg.Agent.MaxToolLoops,
	})
	return runner, session, nil
}
