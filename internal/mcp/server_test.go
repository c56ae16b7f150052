package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/taskpilot/internal/store"
)

// connect wires a server and a client session over in-memory transports.
func connect(t *testing.T, st *store.Store) *Session {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()

	server := NewServer(st)
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0.0.0"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}

	session := NewSession(clientSession)
	t.Cleanup(func() { session.Close() })
	return session
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.NewFileBackend(filepath.Join(t.TempDir(), "tasks.json")))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestServerListTools(t *testing.T) {
	session := connect(t, newTestStore(t))

	tools, err := session.Tools(context.Background())
	if err != nil {
		t.Fatalf("Tools: %v", err)
	}

	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"add_task", "list_tasks", "complete_task", "delete_task",
		"count_tasks", "clear_completed", "bulk_import",
	} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestAddAndCountTasks(t *testing.T) {
	st := newTestStore(t)
	session := connect(t, st)
	ctx := context.Background()

	out, err := session.Call(ctx, "add_task", map[string]any{
		"title": "tarea de prueba",
		"tags":  []any{"demo"},
	})
	if err != nil {
		t.Fatalf("add_task: %v", err)
	}

	var task store.Task
	if err := json.Unmarshal([]byte(out), &task); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if task.Title != "tarea de prueba" {
		t.Errorf("Title = %q", task.Title)
	}
	if st.Count() != 1 {
		t.Errorf("store count = %d, want 1", st.Count())
	}

	count, err := session.Call(ctx, "count_tasks", nil)
	if err != nil {
		t.Fatalf("count_tasks: %v", err)
	}
	if count != "1" {
		t.Errorf("count = %q, want %q", count, "1")
	}
}

func TestCompleteAndClear(t *testing.T) {
	st := newTestStore(t)
	session := connect(t, st)
	ctx := context.Background()

	task, err := st.Create("finish me", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := session.Call(ctx, "complete_task", map[string]any{"task_id": task.ID})
	if err != nil {
		t.Fatalf("complete_task: %v", err)
	}
	if !strings.Contains(out, `"done": true`) {
		t.Errorf("expected done task, got %s", out)
	}

	removed, err := session.Call(ctx, "clear_completed", nil)
	if err != nil {
		t.Fatalf("clear_completed: %v", err)
	}
	if removed != "1" {
		t.Errorf("removed = %q, want %q", removed, "1")
	}
	if st.Count() != 0 {
		t.Errorf("store count = %d, want 0", st.Count())
	}
}

func TestAddTask_EmptyTitleIsToolError(t *testing.T) {
	session := connect(t, newTestStore(t))

	_, err := session.Call(context.Background(), "add_task", map[string]any{"title": "   "})
	if err == nil {
		t.Fatal("expected error for empty title")
	}
	if !strings.Contains(err.Error(), "title cannot be empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

// Arguments that violate the declared schema must fail closed before any
// dispatch to the server.
func TestCall_RejectsInvalidArguments(t *testing.T) {
	st := newTestStore(t)
	session := connect(t, st)
	ctx := context.Background()

	if _, err := session.Tools(ctx); err != nil {
		t.Fatalf("Tools: %v", err)
	}

	_, err := session.Call(ctx, "add_task", map[string]any{"tags": []any{"x"}})
	if err == nil {
		t.Fatal("expected validation error for missing title")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("unexpected error: %v", err)
	}
	if st.Count() != 0 {
		t.Errorf("invalid call must not reach the store, count = %d", st.Count())
	}
}

func TestCall_UnknownTool(t *testing.T) {
	session := connect(t, newTestStore(t))

	_, err := session.Call(context.Background(), "no_such_tool", nil)
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestBulkImportTool(t *testing.T) {
	st := newTestStore(t)
	session := connect(t, st)

	out, err := session.Call(context.Background(), "bulk_import", map[string]any{
		"lines": []any{"alpha", "", "beta"},
	})
	if err != nil {
		t.Fatalf("bulk_import: %v", err)
	}
	if out != "2" {
		t.Errorf("created = %q, want %q", out, "2")
	}
	if st.Count() != 2 {
		t.Errorf("store count = %d, want 2", st.Count())
	}
}
