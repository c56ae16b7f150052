// Package agent drives the bounded tool-call conversation loop between a
// chat model and an MCP tool session.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	taskmcp "github.com/dohr-michael/taskpilot/internal/mcp"
	"github.com/dohr-michael/taskpilot/internal/models"
)

// DefaultMaxToolLoops bounds how many rounds of tool execution one
// conversation may trigger. The model could otherwise request tools
// indefinitely; the cap guarantees termination.
const DefaultMaxToolLoops = 3

// ToolSession is the slice of the MCP session the loop needs.
type ToolSession interface {
	Tools(ctx context.Context) ([]*mcpsdk.Tool, error)
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}

// Config assembles a Runner.
type Config struct {
	Model        model.ToolCallingChatModel
	Session      ToolSession
	SystemPrompt string // empty = DefaultSystemPrompt
	MaxToolLoops int    // 0 = DefaultMaxToolLoops
}

// Runner executes one conversation: model calls interleaved with strictly
// sequential tool executions, bounded by the tool-loop cap.
type Runner struct {
	model        model.ToolCallingChatModel
	session      ToolSession
	systemPrompt string
	maxToolLoops int
}

// New creates a Runner. All collaborators are injected; the Runner owns no
// global state.
func New(cfg Config) *Runner {
	r := &Runner{
		model:        cfg.Model,
		session:      cfg.Session,
		systemPrompt: cfg.SystemPrompt,
		maxToolLoops: cfg.MaxToolLoops,
	}
	if r.systemPrompt == "" {
		r.systemPrompt = DefaultSystemPrompt
	}
	if r.maxToolLoops <= 0 {
		r.maxToolLoops = DefaultMaxToolLoops
	}
	return r
}

// Run sends the prompt through the conversation loop and returns the final
// answer text. Tool failures are folded into the conversation so the model
// can react; model API failures abort the loop.
func (r *Runner) Run(ctx context.Context, prompt string) (string, error) {
	tools, err := r.session.Tools(ctx)
	if err != nil {
		return "", fmt.Errorf("discover tools: %w", err)
	}
	infos, err := taskmcp.ToolInfos(tools)
	if err != nil {
		return "", err
	}

	chatModel := r.model
	if len(infos) > 0 {
		chatModel, err = r.model.WithTools(infos)
		if err != nil {
			return "", fmt.Errorf("bind tools: %w", err)
		}
	}

	messages := []*schema.Message{
		schema.SystemMessage(r.systemPrompt),
		schema.UserMessage(prompt),
	}

	for loops := 0; ; loops++ {
		choice := schema.ToolChoiceAllowed
		if loops >= r.maxToolLoops || len(infos) == 0 {
			// Cap reached: force a final answer, no further tool requests.
			choice = schema.ToolChoiceForbidden
		}

		msg, err := chatModel.Generate(ctx, messages, model.WithToolChoice(choice))
		if err != nil {
			return "", models.HandleError(err)
		}
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 || loops >= r.maxToolLoops {
			return finalText(msg), nil
		}

		// Execute requested invocations one at a time, in the order the
		// model listed them. Ordering matters for tools with side effects.
		for _, tc := range msg.ToolCalls {
			output := r.execute(ctx, tc)
			messages = append(messages, schema.ToolMessage(output, tc.ID, schema.WithToolName(tc.Function.Name)))
		}
	}
}

// execute runs a single requested invocation and returns the text handed
// back to the model. Failures become error text instead of aborting.
func (r *Runner) execute(ctx context.Context, tc schema.ToolCall) string {
	args := map[string]any{}
	if raw := tc.Function.Arguments; raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			slog.Warn("invalid tool arguments, using empty object",
				"tool", tc.Function.Name, "error", err)
			args = map[string]any{}
		}
	}

	slog.Debug("tool call requested", "tool", tc.Function.Name, "args", tc.Function.Arguments)

	output, err := r.session.Call(ctx, tc.Function.Name, args)
	if err != nil {
		slog.Warn("tool execution failed", "tool", tc.Function.Name, "error", err)
		return fmt.Sprintf("error: %v", err)
	}
	return output
}

func finalText(msg *schema.Message) string {
	if msg.Content == "" {
		return "(no content)"
	}
	return msg.Content
}
