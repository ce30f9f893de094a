//go:build !integration

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"payeer-client/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  account: "P1000000"
  api_id: "12345"
  api_secret: "topsecret"
log:
  level: "debug"
sandbox:
  balances:
    USD: "1000.00"
  users:
    - "P2000000"
`)

	cfg, err := config.LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Account != "P1000000" || cfg.API.APISecret != "topsecret" {
		t.Errorf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log.format default = %q, want json", cfg.Log.Format)
	}
	if cfg.Sandbox.Port != 8880 {
		t.Errorf("sandbox.port default = %d, want 8880", cfg.Sandbox.Port)
	}
	if cfg.Sandbox.Balances["USD"] != "1000.00" {
		t.Errorf("sandbox.balances = %v", cfg.Sandbox.Balances)
	}
	if !cfg.Runtime.Dev {
		t.Error("Runtime.Dev should carry the dev flag")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "api: [not a mapping")
	if _, err := config.LoadConfig(path, false); err == nil {
		t.Fatal("expected a parse error")
	}
}
