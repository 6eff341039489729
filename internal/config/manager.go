// Package config persists the user's preferences under the OS config
// directory. Environment variables override the file at startup; the
// file only stores what the user explicitly saved.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the user's persistent preferences.
type Config struct {
	Provider           string `json:"provider,omitempty"` // openai, anthropic, deepseek, ...
	APIKey             string `json:"api_key,omitempty"`
	Model              string `json:"model,omitempty"`
	BaseURL            string `json:"base_url,omitempty"` // override for OpenAI-compatible endpoints
	AuditDBPath        string `json:"audit_db_path,omitempty"`
	ToolTimeoutSeconds int    `json:"tool_timeout_seconds,omitempty"`
	WatchWorkspace     bool   `json:"watch_workspace"`
}

// Manager loads and saves the configuration file.
type Manager struct {
	configDir string
}

// NewManager locates the config directory for the current user.
func NewManager() (*Manager, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config dir: %w", err)
	}
	return &Manager{configDir: filepath.Join(configDir, "oryx")}, nil
}

// Path returns the absolute path of the config file.
func (m *Manager) Path() string {
	return filepath.Join(m.configDir, "config.json")
}

// Exists reports whether a config file has been saved before.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.Path())
	return !os.IsNotExist(err)
}

// Load reads the configuration. A missing file yields defaults, not an
// error.
func (m *Manager) Load() (*Config, error) {
	path := m.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config json: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration with owner-only permissions, since it
// may carry an API key.
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto the loaded config.
// Variables win over the file so one-off overrides need no editing.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("ORYX_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("ORYX_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ORYX_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ORYX_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ORYX_AUDIT_DB"); v != "" {
		cfg.AuditDBPath = v
	}
	if v := os.Getenv("ORYX_TOOL_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ToolTimeoutSeconds = n
		}
	}
}
