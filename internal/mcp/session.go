// Package mcp contains the TaskPilot MCP server and the client session used
// by the conversation loop to reach it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Session manages one connection to an MCP tool server: spawn, initialize
// handshake, tool discovery, invocation, and teardown.
type Session struct {
	session *mcpsdk.ClientSession

	mu      sync.Mutex
	schemas map[string]*jsonschema.Resolved // tool name -> resolved input schema
}

// Open spawns the server command over a stdio transport and performs the
// initialize handshake. The returned session must be closed; Close is safe
// on every exit path including cancellation.
func Open(ctx context.Context, command string, args ...string) (*Session, error) {
	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "taskpilot-client",
		Version: "0.2.0",
	}, nil)

	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr // server logs stay visible; stdout carries the protocol

	session, err := client.Connect(ctx, &mcpsdk.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to tool server: %w", err)
	}
	return NewSession(session), nil
}

// NewSession wraps an already-connected client session. Used directly by
// tests with in-memory transports.
func NewSession(cs *mcpsdk.ClientSession) *Session {
	return &Session{session: cs, schemas: make(map[string]*jsonschema.Resolved)}
}

// Tools lists the server's tool descriptors. The result is fetched fresh on
// every call since the tool set can change across redeploys.
func (s *Session) Tools(ctx context.Context) ([]*mcpsdk.Tool, error) {
	res, err := s.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	s.cacheSchemas(res.Tools)
	return res.Tools, nil
}

// Call invokes a named tool and returns the normalized text result.
// Arguments are validated against the tool's declared input schema before
// dispatch; mismatches fail closed without reaching the server.
func (s *Session) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := s.validate(ctx, name, args); err != nil {
		return "", err
	}

	res, err := s.session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}

	text := Normalize(res)
	if res.IsError {
		return "", fmt.Errorf("tool %s failed: %s", name, text)
	}
	return text, nil
}

// Close tears down the session and the spawned server process. Idempotent.
func (s *Session) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

// cacheSchemas compiles the input schemas of the listed tools. Tools whose
// schema does not compile are kept callable without validation.
func (s *Session) cacheSchemas(tools []*mcpsdk.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas = make(map[string]*jsonschema.Resolved, len(tools))
	for _, t := range tools {
		s.schemas[t.Name] = nil
		if t.InputSchema == nil {
			continue
		}
		raw, err := json.Marshal(t.InputSchema)
		if err != nil {
			continue
		}
		var schema jsonschema.Schema
		if err := json.Unmarshal(raw, &schema); err != nil {
			continue
		}
		resolved, err := schema.Resolve(nil)
		if err != nil {
			continue
		}
		s.schemas[t.Name] = resolved
	}
}

func (s *Session) validate(ctx context.Context, name string, args map[string]any) error {
	s.mu.Lock()
	resolved, known := s.schemas[name]
	s.mu.Unlock()

	if !known {
		// The model may reference a tool discovered before a redeploy.
		if _, err := s.Tools(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		resolved, known = s.schemas[name]
		s.mu.Unlock()
		if !known {
			return fmt.Errorf("unknown tool: %s", name)
		}
	}
	if resolved == nil {
		return nil
	}
	if err := resolved.Validate(args); err != nil {
		return fmt.Errorf("arguments for %s rejected: %w", name, err)
	}
	return nil
}
