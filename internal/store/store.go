package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dohr-michael/taskpilot/internal/config"
)

// Store keeps tasks in memory and rewrites the full snapshot through its
// backend after every mutation. All methods are safe for concurrent use
// within one process; across processes the last snapshot write wins.
type Store struct {
	mu      sync.Mutex
	tasks   map[string]Task
	backend Backend
}

// Open loads the snapshot from the backend. A missing snapshot starts the
// store empty; a corrupt snapshot is logged and treated as empty, since no
// recovery tooling exists.
func Open(backend Backend) (*Store, error) {
	s := &Store{tasks: make(map[string]Task), backend: backend}

	data, err := backend.Load()
	if errors.Is(err, ErrNoSnapshot) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &s.tasks); err != nil {
		slog.Warn("corrupt task snapshot, starting empty", "error", err)
		s.tasks = make(map[string]Task)
	}
	return s, nil
}

// OpenFromConfig selects the backend from configuration: Azure Blob Storage
// when a connection string is present, the local file otherwise. This is a
// deployment-time switch; there is no fallback on error.
func OpenFromConfig(cfg config.StorageConfig) (*Store, error) {
	if cfg.Azure.ConnectionString != "" {
		backend, err := NewBlobBackend(cfg.Azure.ConnectionString, cfg.Azure.Container, cfg.Azure.Blob)
		if err != nil {
			return nil, err
		}
		return Open(backend)
	}
	return Open(NewFileBackend(cfg.Path))
}

// Fields carries the mutable parts of a task for Update. Nil pointers leave
// the current value untouched.
type Fields struct {
	Title *string
	Done  *bool
	Tags  *[]string
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// List returns all tasks sorted by creation time, then id.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of stored tasks.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Create inserts a new task with a fresh id and persists the snapshot.
// Blank titles are rejected; blank tags are dropped.
func (s *Store) Create(title string, tags []string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t := Task{
		ID:        NewTaskID(),
		Title:     title,
		Tags:      cleanTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks[t.ID] = t
	if err := s.persist(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update merges the given fields into an existing task and persists.
// Returns ErrNotFound if the id is absent; it never creates a record.
func (s *Store) Update(id string, fields Fields) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}

	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return Task{}, ErrEmptyTitle
		}
		t.Title = title
	}
	if fields.Done != nil {
		t.Done = *fields.Done
	}
	if fields.Tags != nil {
		t.Tags = cleanTags(*fields.Tags)
	}
	t.UpdatedAt = time.Now().UTC()

	s.tasks[id] = t
	if err := s.persist(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Complete marks a task done.
func (s *Store) Complete(id string) (Task, error) {
	done := true
	return s.Update(id, Fields{Done: &done})
}

// Delete removes a task and persists. Returns ErrNotFound if absent.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return s.persist()
}

// ClearCompleted removes all completed tasks and returns how many were
// removed. The snapshot is rewritten only when something changed.
func (s *Store) ClearCompleted() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.tasks {
		if t.Done {
			delete(s.tasks, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persist()
}

// BulkImport creates one task per non-blank line and returns how many were
// created. The snapshot is written once at the end.
func (s *Store) BulkImport(lines []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	now := time.Now().UTC()
	for i, raw := range lines {
		title := strings.TrimSpace(raw)
		if title == "" {
			slog.Warn("skipping empty line", "line", i+1)
			continue
		}
		t := Task{ID: NewTaskID(), Title: title, CreatedAt: now, UpdatedAt: now}
		s.tasks[t.ID] = t
		created++
	}
	if created == 0 {
		return 0, nil
	}
	return created, s.persist()
}

// persist rewrites the full snapshot. Callers must hold the lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return err
	}
	return s.backend.Save(data)
}

func cleanTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
