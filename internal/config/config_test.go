package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Sheet.Title != "Pitch Canvas Data" || cfg.Sheet.Tab != "Canvas Items" {
		t.Errorf("sheet defaults = %+v", cfg.Sheet)
	}
	if cfg.Composio.BaseURL != "https://backend.composio.dev" {
		t.Errorf("composio base url = %q", cfg.Composio.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COMPOSIO_API_KEY", "key-from-env")
	t.Setenv("COMPOSIO_USER_ID", "user-from-env")
	t.Setenv("COMPOSIO_GOOGLESHEETS_AUTH_CONFIG_ID", "ac_env")
	t.Setenv("PITCHCANVAS_DATA_DIR", "/tmp/env-data")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Composio.APIKey != "key-from-env" {
		t.Errorf("api key = %q", cfg.Composio.APIKey)
	}
	if cfg.Composio.UserID != "user-from-env" {
		t.Errorf("user id = %q", cfg.Composio.UserID)
	}
	if cfg.Composio.AuthConfigID != "ac_env" {
		t.Errorf("auth config id = %q", cfg.Composio.AuthConfigID)
	}
	if cfg.Data.DataDir != "/tmp/env-data" {
		t.Errorf("data dir = %q", cfg.Data.DataDir)
	}
}

func TestConfigTomlRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 9000
	cfg.Sheet.WorkspaceID = "team-a"

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var loaded AppConfig
	if err := toml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if loaded.Server.Port != 9000 || loaded.Sheet.WorkspaceID != "team-a" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}
	if dir != cfg.Data.DataDir {
		t.Errorf("dir = %q", dir)
	}

	// 导出子目录一并创建
	if _, err := os.Stat(filepath.Join(dir, "exports")); err != nil {
		t.Errorf("exports subdir missing: %v", err)
	}
}
