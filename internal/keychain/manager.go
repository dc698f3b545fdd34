// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe storage of the
// Databricks API token in the OS credential store. The token never touches
// the config file; everything non-secret lives in internal/config instead.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// Manager provides thread-safe access to the OS credential store.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend credentialBackend
}

// credentialBackend abstracts the native store used on macOS where the
// keyring library can be unavailable.
type credentialBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our credential store namespace.
const ServiceName = "genie-cli"

// KeyAPIToken is the store key for the Databricks personal access token.
const KeyAPIToken = "api_token"

// ErrNotFound is returned when no token has been stored yet.
var ErrNotFound = errors.New("no API token stored")

// NewManager creates a keychain manager with the OS store initialized.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to the keyring library if the security command fails.
	}
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// GetManager returns the global manager, initializing it on first call and
// retrying after a failed initialization.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalManager != nil {
		return globalManager, nil
	}
	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.PassBackend}
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, errors.New("no secure credential store available; set " +
			"DATABRICKS_TOKEN in the environment instead")
	}
	return ring, nil
}

// SaveToken stores the API token. Thread-safe.
func (m *Manager) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" {
		return errors.New("empty token")
	}
	if m.backend != nil {
		return m.backend.Set(KeyAPIToken, token)
	}
	return m.ring.Set(keyring.Item{Key: KeyAPIToken, Data: []byte(token)})
}

// LoadToken retrieves the API token, or ErrNotFound when none is stored.
func (m *Manager) LoadToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.backend != nil {
		token, err := m.backend.Get(KeyAPIToken)
		if err != nil || token == "" {
			return "", ErrNotFound
		}
		return token, nil
	}
	item, err := m.ring.Get(KeyAPIToken)
	if err != nil || len(item.Data) == 0 {
		return "", ErrNotFound
	}
	return string(item.Data), nil
}

// ClearToken removes the stored API token. Missing entries are not errors.
func (m *Manager) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backend != nil {
		return m.backend.Delete(KeyAPIToken)
	}
	if err := m.ring.Remove(KeyAPIToken); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
