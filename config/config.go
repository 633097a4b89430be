// Package config handles application configuration: a JSON file under
// the user config directory, overridden by environment variables.
// Command-line flags (handled in main) take final precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	appName        = "murmur"
	configFileName = "config.json"
)

type Config struct {
	// HoldThresholdMs separates a tap from a hold.
	HoldThresholdMs int `json:"hold_threshold_ms" env:"MURMUR_HOLD_THRESHOLD_MS"`

	// Gesture source enable flags.
	EnablePointer bool `json:"enable_pointer" env:"MURMUR_ENABLE_POINTER"`
	EnableHotkey  bool `json:"enable_hotkey" env:"MURMUR_ENABLE_HOTKEY"`

	Provider  string `json:"provider,omitempty" env:"MURMUR_PROVIDER"`
	Language  string `json:"language" env:"MURMUR_LANGUAGE"`
	Format    string `json:"format" env:"MURMUR_FORMAT"`
	AutoPaste bool   `json:"auto_paste" env:"MURMUR_AUTO_PASTE"`
	Device    string `json:"device,omitempty" env:"MURMUR_DEVICE"`
}

func Default() *Config {
	return &Config{
		HoldThresholdMs: 350,
		EnablePointer:   true,
		EnableHotkey:    true,
		Language:        "en",
		Format:          "flac",
		AutoPaste:       true,
	}
}

func (c *Config) HoldThreshold() time.Duration {
	return time.Duration(c.HoldThresholdMs) * time.Millisecond
}

func (c *Config) Validate() error {
	if c.HoldThresholdMs <= 0 {
		return fmt.Errorf("hold_threshold_ms must be positive, got %d", c.HoldThresholdMs)
	}
	if c.Format != "flac" && c.Format != "wav" {
		return fmt.Errorf("unknown format %q (use flac or wav)", c.Format)
	}
	if !c.EnablePointer && !c.EnableHotkey {
		return fmt.Errorf("at least one gesture source must be enabled")
	}
	return nil
}

// Load reads the config file (defaults if absent) and applies
// environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func configPath() (string, error) {
	if override := os.Getenv("MURMUR_CONFIG_DIR"); override != "" {
		return filepath.Join(override, configFileName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, configFileName), nil
}
