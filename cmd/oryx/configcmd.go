package main

import (
	"fmt"
	"strconv"

	"github.com/oryxcli/oryx/internal/config"
)

// runConfigCommand handles `oryx config <show|path|set key value>`.
func runConfigCommand(args []string) error {
	mgr, err := config.NewManager()
	if err != nil {
		return err
	}

	if len(args) == 0 || args[0] == "show" {
		return showConfig(mgr)
	}

	switch args[0] {
	case "path":
		fmt.Println(mgr.Path())
		return nil
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: oryx config set <key> <value>")
		}
		return setConfig(mgr, args[1], args[2])
	default:
		return fmt.Errorf("unknown config command %q (expected show, path, or set)", args[0])
	}
}

func showConfig(mgr *config.Manager) error {
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}
	key := cfg.APIKey
	if len(key) > 8 {
		key = key[:4] + "..." + key[len(key)-4:]
	}
	fmt.Printf("provider:             %s\n", orDefault(cfg.Provider, "anthropic"))
	fmt.Printf("api_key:              %s\n", orDefault(key, "(unset)"))
	fmt.Printf("model:                %s\n", orDefault(cfg.Model, "(provider default)"))
	fmt.Printf("base_url:             %s\n", orDefault(cfg.BaseURL, "(provider default)"))
	fmt.Printf("audit_db_path:        %s\n", orDefault(cfg.AuditDBPath, "(config dir)"))
	fmt.Printf("tool_timeout_seconds: %d\n", cfg.ToolTimeoutSeconds)
	fmt.Printf("watch_workspace:      %v\n", cfg.WatchWorkspace)
	return nil
}

func setConfig(mgr *config.Manager, key, value string) error {
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}
	switch key {
	case "provider":
		cfg.Provider = value
	case "api_key":
		cfg.APIKey = value
	case "model":
		cfg.Model = value
	case "base_url":
		cfg.BaseURL = value
	case "audit_db_path":
		cfg.AuditDBPath = value
	case "tool_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("tool_timeout_seconds must be a non-negative integer")
		}
		cfg.ToolTimeoutSeconds = n
	case "watch_workspace":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("watch_workspace must be true or false")
		}
		cfg.WatchWorkspace = b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := mgr.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", mgr.Path())
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
