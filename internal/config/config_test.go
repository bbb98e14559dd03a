package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ServerURL != "http://localhost:8000/api" {
		t.Errorf("default server_url = %q", cfg.ServerURL)
	}
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("default timeout_seconds = %d, want 30", cfg.TimeoutSeconds)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.ServerURL != DefaultConfig().ServerURL {
		t.Errorf("expected defaults, got %q", cfg.ServerURL)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	yaml := `
server_url: https://viz.example.com/api
timeout_seconds: 5
credentials_file: /tmp/creds.yaml
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "https://viz.example.com/api" {
		t.Errorf("server_url = %q", cfg.ServerURL)
	}
	if cfg.TimeoutSeconds != 5 {
		t.Errorf("timeout_seconds = %d", cfg.TimeoutSeconds)
	}
	if cfg.CredentialsFile != "/tmp/creds.yaml" {
		t.Errorf("credentials_file = %q", cfg.CredentialsFile)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server_url: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server_url: https://file.example.com/api\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CSVIZ_SERVER_URL", "https://env.example.com/api")
	t.Setenv("CSVIZ_TIMEOUT_SECONDS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerURL != "https://env.example.com/api" {
		t.Errorf("env override lost, server_url = %q", cfg.ServerURL)
	}
	if cfg.TimeoutSeconds != 7 {
		t.Errorf("env override lost, timeout_seconds = %d", cfg.TimeoutSeconds)
	}
}
