package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskpilot/internal/agent"
)

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one message to the assistant and print the answer",
		ArgsUsage: "<message>",
		Action:    runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("usage: taskpilot ask <message>")
	}

	cfg := loadConfig(cmd)

	runner, session, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	answer, err := runner.Run(ctx, prompt)
	if err != nil {
		slog.Error("conversation failed", "error", err)
		fmt.Println(agent.ModelErrorReply)
		return fmt.Errorf("conversation failed: %w", err)
	}

	fmt.Println(answer)
	return nil
}
