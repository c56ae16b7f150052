package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/taskpilot/internal/store"
)

// NewServer builds the TaskPilot MCP server on top of the given store. The
// store is injected; the server owns no ambient state.
func NewServer(st *store.Store) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "taskpilot",
		Version: "0.2.0",
	}, nil)

	addTaskTools(server, st)
	addTaskResources(server, st)
	addPrompts(server)

	return server
}

func addTaskTools(server *mcpsdk.Server, st *store.Store) {
	server.AddTool(&mcpsdk.Tool{
		Name:        "add_task",
		Description: "Create and persist a new task.",
		InputSchema: objectSchema(map[string]any{
			"title": map[string]any{"type": "string", "description": "Task title"},
			"tags":  stringArraySchema("Optional labels for the task"),
		}, "title"),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args struct {
			Title string   `json:"title"`
			Tags  []string `json:"tags"`
		}
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		task, err := st.Create(args.Title, args.Tags)
		if err != nil {
			return errorResult(err), nil
		}
		slog.Info("task created", "id", task.ID, "title", task.Title)
		return jsonResult(task)
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "list_tasks",
		Description: "Return all tasks, optionally filtering out completed ones.",
		InputSchema: objectSchema(map[string]any{
			"include_done": map[string]any{
				"type":        "boolean",
				"description": "Include completed tasks",
				"default":     true,
			},
		}),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		args := struct {
			IncludeDone *bool `json:"include_done"`
		}{}
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		tasks := st.List()
		if args.IncludeDone != nil && !*args.IncludeDone {
			pending := tasks[:0]
			for _, t := range tasks {
				if !t.Done {
					pending = append(pending, t)
				}
			}
			tasks = pending
		}
		return jsonResult(tasks)
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "complete_task",
		Description: "Mark a task completed and save it.",
		InputSchema: objectSchema(map[string]any{
			"task_id": map[string]any{"type": "string", "description": "Task identifier"},
		}, "task_id"),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args struct {
			TaskID string `json:"task_id"`
		}
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		task, err := st.Complete(args.TaskID)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(task)
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "delete_task",
		Description: "Delete a task by id.",
		InputSchema: objectSchema(map[string]any{
			"task_id": map[string]any{"type": "string", "description": "Task identifier"},
		}, "task_id"),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args struct {
			TaskID string `json:"task_id"`
		}
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		if err := st.Delete(args.TaskID); err != nil {
			return errorResult(err), nil
		}
		return textResult(fmt.Sprintf("deleted %s", args.TaskID)), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "count_tasks",
		Description: "Return the total number of stored tasks.",
		InputSchema: objectSchema(nil),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return textResult(fmt.Sprintf("%d", st.Count())), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "clear_completed",
		Description: "Remove all completed tasks. Returns the number removed.",
		InputSchema: objectSchema(nil),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		removed, err := st.ClearCompleted()
		if err != nil {
			return errorResult(err), nil
		}
		return textResult(fmt.Sprintf("%d", removed)), nil
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        "bulk_import",
		Description: "Import tasks from a list of lines, one title per line. Returns the number created.",
		InputSchema: objectSchema(map[string]any{
			"lines": stringArraySchema("Task titles, one per entry"),
		}, "lines"),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args struct {
			Lines []string `json:"lines"`
		}
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		created, err := st.BulkImport(args.Lines)
		if err != nil {
			return errorResult(err), nil
		}
		slog.Info("bulk import complete", "created", created)
		return textResult(fmt.Sprintf("%d", created)), nil
	})
}

func addTaskResources(server *mcpsdk.Server, st *store.Store) {
	server.AddResource(&mcpsdk.Resource{
		URI:      "tasks://all",
		Name:     "all-tasks",
		MIMEType: "application/json",
	}, func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		data, err := json.MarshalIndent(st.List(), "", "  ")
		if err != nil {
			return nil, err
		}
		return &mcpsdk.ReadResourceResult{
			Contents: []*mcpsdk.ResourceContents{
				{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
			},
		}, nil
	})

	server.AddResourceTemplate(&mcpsdk.ResourceTemplate{
		URITemplate: "task://{task_id}",
		Name:        "task",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
		id := req.Params.URI[len("task://"):]
		task, err := st.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			// Unknown ids answer with an error document, not a protocol error.
			text := fmt.Sprintf("{\n  \"error\": \"not found\",\n  \"id\": %q\n}", id)
			return &mcpsdk.ReadResourceResult{
				Contents: []*mcpsdk.ResourceContents{
					{URI: req.Params.URI, MIMEType: "application/json", Text: text},
				},
			}, nil
		}
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(task, "", "  ")
		if err != nil {
			return nil, err
		}
		return &mcpsdk.ReadResourceResult{
			Contents: []*mcpsdk.ResourceContents{
				{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
			},
		}, nil
	})
}

func addPrompts(server *mcpsdk.Server) {
	server.AddPrompt(&mcpsdk.Prompt{
		Name:        "status_note",
		Title:       "Write a status note",
		Description: "Suggest a short status line for a task title.",
		Arguments: []*mcpsdk.PromptArgument{
			{Name: "title", Description: "Task title", Required: true},
		},
	}, func(ctx context.Context, req *mcpsdk.GetPromptRequest) (*mcpsdk.GetPromptResult, error) {
		title := req.Params.Arguments["title"]
		return &mcpsdk.GetPromptResult{
			Messages: []*mcpsdk.PromptMessage{
				{
					Role: "user",
					Content: &mcpsdk.TextContent{
						Text: fmt.Sprintf("You are a concise assistant who writes status notes. Create a one-line status note for the task: %q", title),
					},
				},
			},
		}, nil
	})
}

func unmarshalArgs(req *mcpsdk.CallToolRequest, v any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func jsonResult(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringArraySchema(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       map[string]any{"type": "string"},
	}
}
