// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDBPath returns the default location of the piper database.
func DefaultDBPath() string {
	return ExpandPath("~/.local/share/piper/piper.db")
}

// DefaultDataDir returns the default directory for sorted bank exports.
func DefaultDataDir() string {
	return ExpandPath("~/.local/share/piper/transactions")
}
