package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dohr-michael/taskpilot/internal/config"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	st, err := Open(NewFileBackend(path))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st, path
}

func TestCreateGetRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)

	task, err := st.Create("Record chapter 2", []string{"course", " ", ""})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected non-empty task ID")
	}

	got, err := st.Get(task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Record chapter 2" {
		t.Errorf("Title: got %q, want %q", got.Title, "Record chapter 2")
	}
	if got.Done {
		t.Error("new task should not be done")
	}
	if len(got.Tags) != 1 || got.Tags[0] != "course" {
		t.Errorf("Tags: got %v, want [course]", got.Tags)
	}
}

func TestCreate_EmptyTitle(t *testing.T) {
	st, _ := newTestStore(t)

	if _, err := st.Create("   ", nil); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if st.Count() != 0 {
		t.Errorf("expected empty store, got %d tasks", st.Count())
	}
}

func TestCountMatchesList(t *testing.T) {
	st, _ := newTestStore(t)

	for _, title := range []string{"one", "two", "three"} {
		if _, err := st.Create(title, nil); err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
	}

	if got, want := st.Count(), len(st.List()); got != want {
		t.Errorf("Count() = %d, len(List()) = %d", got, want)
	}
	if st.Count() != 3 {
		t.Errorf("Count() = %d, want 3", st.Count())
	}
}

func TestUpdate_NotFoundNeverCreates(t *testing.T) {
	st, _ := newTestStore(t)

	title := "ghost"
	_, err := st.Update("does-not-exist", Fields{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if st.Count() != 0 {
		t.Errorf("Update must not create records, store has %d", st.Count())
	}
}

func TestUpdateAndComplete(t *testing.T) {
	st, _ := newTestStore(t)

	task, err := st.Create("draft", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "final"
	updated, err := st.Update(task.ID, Fields{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "final" {
		t.Errorf("Title: got %q, want %q", updated.Title, "final")
	}

	done, err := st.Complete(task.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !done.Done {
		t.Error("expected task marked done")
	}
}

func TestDelete(t *testing.T) {
	st, _ := newTestStore(t)

	task, err := st.Create("to remove", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := st.Delete(task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.Delete(task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestClearCompleted(t *testing.T) {
	st, _ := newTestStore(t)

	keep, _ := st.Create("keep", nil)
	done1, _ := st.Create("done one", nil)
	done2, _ := st.Create("done two", nil)
	for _, id := range []string{done1.ID, done2.ID} {
		if _, err := st.Complete(id); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}

	removed, err := st.ClearCompleted()
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if st.Count() != 1 {
		t.Errorf("Count() = %d, want 1", st.Count())
	}
	if _, err := st.Get(keep.ID); err != nil {
		t.Errorf("surviving task missing: %v", err)
	}
}

func TestBulkImport(t *testing.T) {
	st, _ := newTestStore(t)

	created, err := st.BulkImport([]string{"alpha", "", "  ", "beta"})
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	if st.Count() != 2 {
		t.Errorf("Count() = %d, want 2", st.Count())
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	st, path := newTestStore(t)

	task, err := st.Create("durable", []string{"keep"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reopened, err := Open(NewFileBackend(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(task.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Title != "durable" {
		t.Errorf("Title after reopen: got %q, want %q", got.Title, "durable")
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{{{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := Open(NewFileBackend(path))
	if err != nil {
		t.Fatalf("Open with corrupt snapshot: %v", err)
	}
	if st.Count() != 0 {
		t.Errorf("expected empty store, got %d", st.Count())
	}
}

func TestListOrderStable(t *testing.T) {
	st, _ := newTestStore(t)

	if _, err := st.BulkImport([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("BulkImport: %v", err)
	}

	first := st.List()
	second := st.List()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("List order not stable at index %d", i)
		}
	}
}

// With no Azure coordinates configured the store must only touch the local
// snapshot path.
func TestOpenFromConfig_LocalFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	st, err := OpenFromConfig(config.StorageConfig{
		Path:  path,
		Azure: config.AzureConfig{Container: "tasks", Blob: "tasks.json"},
	})
	if err != nil {
		t.Fatalf("OpenFromConfig: %v", err)
	}

	if _, err := st.Create("local only", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected snapshot at %s: %v", path, err)
	}
}
