// Package xdg resolves XDG Base Directory paths for the Genie CLI.
// Directories are created with private permissions since the config dir
// sits next to security-sensitive state.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "genie"

// ConfigDir returns the XDG config directory for the CLI, creating it with
// 0700 permissions if missing. Falls back to ~/.config/genie when
// XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
