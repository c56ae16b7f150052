package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	content := `
# comment line
PLAIN=value
QUOTED="quoted value"
SINGLE='single value'
SPACED =  padded
NOEQUALS
`
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"PLAIN", "QUOTED", "SINGLE", "SPACED"} {
		os.Unsetenv(key)
		t.Cleanup(func() { os.Unsetenv(key) })
	}

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}

	cases := map[string]string{
		"PLAIN":  "value",
		"QUOTED": "quoted value",
		"SINGLE": "single value",
		"SPACED": "padded",
	}
	for key, want := range cases {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s: got %q, want %q", key, got, want)
		}
	}
}

func TestLoadDotenv_NeverOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("EXISTING=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EXISTING", "from-env")

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("EXISTING"); got != "from-env" {
		t.Errorf("expected existing env var untouched, got %q", got)
	}
}

func TestLoadDotenv_MissingFile(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
}
