package config

import (
	"os"
	"path/filepath"
)

// DataPath returns the root directory for TaskPilot data.
// It uses $TASKPILOT_PATH if set, otherwise defaults to ~/.taskpilot.
func DataPath() string {
	if v := os.Getenv("TASKPILOT_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskpilot")
	}
	return filepath.Join(home, ".taskpilot")
}

// ConfigPath returns the path to the TaskPilot config file.
func ConfigPath() string {
	return filepath.Join(DataPath(), "config.jsonc")
}

// DotenvPath returns the path to the TaskPilot .env file.
func DotenvPath() string {
	return filepath.Join(DataPath(), ".env")
}
