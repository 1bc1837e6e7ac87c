package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

const minimalConfig = `
auth:
  api_key: file-key
server:
  port: 9999
`

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalConfig)

	cfg, err := LoadFrom(path, os.DevNull)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("Environment = %q", cfg.Environment)
	}
	if cfg.Auth.APIKey != "file-key" {
		t.Fatalf("APIKey = %q", cfg.Auth.APIKey)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("Port = %d", cfg.Server.Port)
	}
	if cfg.Queue.Key != "transcriptd:jobs" {
		t.Fatalf("Queue.Key = %q", cfg.Queue.Key)
	}
	if !cfg.Worker.Enabled {
		t.Fatal("Worker.Enabled = false by default")
	}
	if cfg.Worker.Concurrency != 2 {
		t.Fatalf("Worker.Concurrency = %d", cfg.Worker.Concurrency)
	}
	if cfg.Whisper.Model != "base" {
		t.Fatalf("Whisper.Model = %q", cfg.Whisper.Model)
	}
	if cfg.YtDlp.Binary != "yt-dlp" {
		t.Fatalf("YtDlp.Binary = %q", cfg.YtDlp.Binary)
	}
}

func TestLoadFromEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, minimalConfig)
	t.Setenv("AUTH_API_KEY", "env-key")
	t.Setenv("WORKER_CONCURRENCY", "4")

	cfg, err := LoadFrom(path, os.DevNull)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Auth.APIKey != "env-key" {
		t.Fatalf("APIKey = %q, want env-key", cfg.Auth.APIKey)
	}
	if cfg.Worker.Concurrency != 4 {
		t.Fatalf("Worker.Concurrency = %d, want 4", cfg.Worker.Concurrency)
	}
}

func TestLoadFromRequiresAPIKey(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8080\n")

	if _, err := LoadFrom(path, os.DevNull); err == nil {
		t.Fatal("LoadFrom succeeded without auth.api_key")
	}
}
