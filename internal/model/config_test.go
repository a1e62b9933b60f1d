package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3000/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Board.LoadFailurePolicy != LoadFailureSilent {
		t.Errorf("LoadFailurePolicy = %q, want silent", cfg.Board.LoadFailurePolicy)
	}
	if got := cfg.NotificationTTL().Milliseconds(); got != 5000 {
		t.Errorf("NotificationTTL = %dms, want 5000", got)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.API.BaseURL = "https://care.example.org/api"
	cfg.Board.LoadFailurePolicy = LoadFailureNotify
	cfg.Notifications.TTLMillis = 1500

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.API.BaseURL, cfg.API.BaseURL)
	}
	if loaded.Board.LoadFailurePolicy != LoadFailureNotify {
		t.Errorf("LoadFailurePolicy = %q, want notify", loaded.Board.LoadFailurePolicy)
	}
	if loaded.Notifications.TTLMillis != 1500 {
		t.Errorf("TTLMillis = %d, want 1500", loaded.Notifications.TTLMillis)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CAREBOARD_API_BASE_URL", "http://env.example/api")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://env.example/api" {
		t.Errorf("BaseURL = %q, want env value", cfg.API.BaseURL)
	}
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("board:\n  load_failure_policy: loud\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
