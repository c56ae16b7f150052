package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/taskpilot/internal/config"
	taskmcp "github.com/dohr-michael/taskpilot/internal/mcp"
	"github.com/dohr-michael/taskpilot/internal/store"
)

// NewServeCommand returns the serve subcommand (MCP stdio server).
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Expose the task tools as an MCP server (stdio)",
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the MCP stdio transport; all logging goes to stderr.
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Debug("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}

	st, err := store.OpenFromConfig(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}

	server := taskmcp.NewServer(st)
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
