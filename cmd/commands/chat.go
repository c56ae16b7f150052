package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskpilot/internal/agent"
)

// NewChatCommand returns the chat subcommand (interactive loop).
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Interactive chat with the assistant",
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	runner, session, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	fmt.Println("TaskPilot chat started. Type your request, or \"quit\" to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			break
		}

		answer, err := runner.Run(ctx, line)
		if err != nil {
			slog.Error("conversation failed", "error", err)
			fmt.Println(agent.ModelErrorReply)
			continue
		}
		fmt.Println(answer)
	}
	return scanner.Err()
}
