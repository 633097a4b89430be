package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setupConfigDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("MURMUR_CONFIG_DIR", tmp)
	return tmp
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	setupConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HoldThresholdMs != 350 {
		t.Errorf("HoldThresholdMs = %d, want 350", cfg.HoldThresholdMs)
	}
	if !cfg.EnablePointer || !cfg.EnableHotkey {
		t.Error("both gesture sources should default to enabled")
	}
	if cfg.Format != "flac" {
		t.Errorf("Format = %q, want flac", cfg.Format)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	tmp := setupConfigDir(t)
	content := `{"hold_threshold_ms": 500}`
	if err := os.WriteFile(filepath.Join(tmp, configFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HoldThresholdMs != 500 {
		t.Errorf("HoldThresholdMs = %d, want 500", cfg.HoldThresholdMs)
	}
	if !cfg.AutoPaste {
		t.Error("AutoPaste default lost on partial file")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tmp := setupConfigDir(t)
	content := `{"hold_threshold_ms": 500, "language": "en"}`
	if err := os.WriteFile(filepath.Join(tmp, configFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MURMUR_HOLD_THRESHOLD_MS", "200")
	t.Setenv("MURMUR_LANGUAGE", "de")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HoldThresholdMs != 200 {
		t.Errorf("HoldThresholdMs = %d, want 200", cfg.HoldThresholdMs)
	}
	if cfg.Language != "de" {
		t.Errorf("Language = %q, want de", cfg.Language)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	setupConfigDir(t)
	t.Setenv("MURMUR_FORMAT", "mp3")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	setupConfigDir(t)

	cfg := Default()
	cfg.HoldThresholdMs = 400
	cfg.Device = "USB Mic"
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.HoldThresholdMs != 400 {
		t.Errorf("HoldThresholdMs = %d, want 400", loaded.HoldThresholdMs)
	}
	if loaded.Device != "USB Mic" {
		t.Errorf("Device = %q, want USB Mic", loaded.Device)
	}
}
