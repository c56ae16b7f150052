// Package store provides the persistent task store shared by the MCP server
// and the CLI. Tasks live in an in-memory map; every mutation rewrites the
// full snapshot through a pluggable backend (local file or Azure blob).
package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a single task item.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaskID creates a unique task identifier (32 hex chars).
func NewTaskID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
