// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings live here; the API token goes to the OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"genie/cli/internal/xdg"
)

// Environment overrides. DATABRICKS_TOKEN is resolved by the caller together
// with the keychain; it is named here so the precedence lives in one place.
const (
	EnvHost    = "DATABRICKS_HOST"
	EnvSpaceID = "GENIE_SPACE_ID"
	EnvToken   = "DATABRICKS_TOKEN"
)

// Config holds non-sensitive CLI settings for one workspace.
type Config struct {
	// Host is the workspace hostname, e.g. "adb-123.4.azuredatabricks.net".
	Host string `json:"workspace_host"`
	// SpaceID identifies the Genie space queries run against.
	SpaceID string `json:"space_id"`
	LogLevel string `json:"log_level"`
}

func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.LogLevel = "info"
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Clear removes the stored configuration file.
func Clear() error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ApplyEnv overlays environment overrides onto c. Env values win over the
// config file so CI and app-service deployments need no config step.
func (c Config) ApplyEnv() Config {
	if v := strings.TrimSpace(os.Getenv(EnvHost)); v != "" {
		c.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSpaceID)); v != "" {
		c.SpaceID = v
	}
	return c
}

// Complete reports whether enough settings are present to build a client.
func (c Config) Complete() bool {
	return c.Host != "" && c.SpaceID != ""
}
