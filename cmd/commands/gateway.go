package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskpilot/internal/agent"
	"github.com/dohr-michael/taskpilot/internal/gateway"
	taskmcp "github.com/dohr-michael/taskpilot/internal/mcp"
	"github.com/dohr-michael/taskpilot/internal/models"
	"github.com/dohr-michael/taskpilot/internal/store"
)

// NewGatewayCommand returns the gateway subcommand.
func NewGatewayCommand() *cli.Command {
	return &cli.Command{
		Name:  "gateway",
		Usage: "Start the TaskPilot HTTP gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runGateway,
	}
}

func runGateway(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	// The model is shared across requests; each request gets its own tool
	// session so a wedged or aborted conversation never leaks a subprocess
	// into the next one.
	registry := models.NewRegistry(cfg.Models)
	chatModel, err := registry.Default(ctx)
	if err != nil {
		return fmt.Errorf("init default model: %w", err)
	}

	command, args, err := serverCommand(cfg)
	if err != nil {
		return err
	}

	run := func(ctx context.Context, text string) (string, error) {
		session, err := taskmcp.Open(ctx, command, args...)
		if err != nil {
			return "", err
		}
		defer session.Close()

		runner := agent.New(agent.Config{
			Model:        chatModel,
			Session:      session,
			SystemPrompt: cfg.Agent.SystemPrompt,
			MaxToolLoops: cfg.Agent.MaxToolLoops,
		})
		return runner.Run(ctx, text)
	}

	// Read-only store handle for /api/tasks. The gateway still serves
	// conversations when the store cannot be opened here.
	st, err := store.OpenFromConfig(cfg.Storage)
	if err != nil {
		slog.Warn("task store unavailable for /api/tasks", "error", err)
		st = nil
	}

	server := gateway.NewServer(run, st, cfg.Gateway.Host, cfg.Gateway.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
