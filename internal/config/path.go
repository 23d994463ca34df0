// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is used when neither the config file, the environment
// nor a flag name a database.
const DefaultDatabasePath = "$HOME/.local/share/pocketbook/pocketbook.db"

// DefaultConfigDir is searched for config.yaml after an explicit --config.
const DefaultConfigDir = "$HOME/.config/pocketbook"

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
