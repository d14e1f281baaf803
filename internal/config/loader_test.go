package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// setupTestHome points HOME at a temporary directory for the duration of the test.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfig(t *testing.T, home, content string, perm os.FileMode) string {
	t.Helper()
	dir := filepath.Join(home, ".config", "pestid")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want 8088", cfg.Server.Port)
	}
	if cfg.AI.Provider != ProviderGemini {
		t.Errorf("AI.Provider = %q, want %q", cfg.AI.Provider, ProviderGemini)
	}
	if cfg.AI.Model != "gemini-2.0-flash-exp" {
		t.Errorf("AI.Model = %q, want gemini-2.0-flash-exp", cfg.AI.Model)
	}
	if cfg.Tracking.FallbackToSamples {
		t.Error("Tracking.FallbackToSamples should default to false")
	}
	if cfg.Events.URL != "" {
		t.Errorf("Events.URL = %q, want empty", cfg.Events.URL)
	}
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	home := setupTestHome(t)

	path := writeConfig(t, home, `server:
  http_port: 9090
  http_host: 127.0.0.1
  shutdown_timeout: 3s

ai:
  provider: openai
  model: gpt-4o-mini
  api_key: sk-test

store:
  driver: memory

tracking:
  fallback_to_samples: true
`, 0600)

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 3*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout.Duration())
	}
	if cfg.AI.Provider != ProviderOpenAI || cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("AI = %s/%s, want openai/gpt-4o-mini", cfg.AI.Provider, cfg.AI.Model)
	}
	if cfg.AI.APIKey.Value() != "sk-test" {
		t.Error("AI.APIKey was not loaded")
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}
	if !cfg.Tracking.FallbackToSamples {
		t.Error("Tracking.FallbackToSamples = false, want true")
	}
	// Untouched sections keep defaults.
	if cfg.Location.Endpoint != "https://ipapi.co/json/" {
		t.Errorf("Location.Endpoint = %q, want default", cfg.Location.Endpoint)
	}
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	home := setupTestHome(t)

	path := writeConfig(t, home, "server:\n  http_port: 9090\n", 0600)

	t.Setenv("PESTID_SERVER_HTTP_PORT", "7070")
	t.Setenv("PESTID_AI_API_KEY", "from-env")
	t.Setenv("PESTID_TRACKING_FALLBACK_TO_SAMPLES", "true")
	t.Setenv("PESTID_EVENTS_URL", "nats://127.0.0.1:4222")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 (env wins)", cfg.Server.Port)
	}
	if cfg.AI.APIKey.Value() != "from-env" {
		t.Errorf("AI.APIKey = %q, want from-env", cfg.AI.APIKey.Value())
	}
	if !cfg.Tracking.FallbackToSamples {
		t.Error("Tracking.FallbackToSamples = false, want true")
	}
	if cfg.Events.URL != "nats://127.0.0.1:4222" {
		t.Errorf("Events.URL = %q", cfg.Events.URL)
	}
}

func TestLoadWithFile_RejectsPathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  http_port: 9090\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadWithFile(path)
	if err == nil {
		t.Fatal("LoadWithFile() error = nil, want path validation error")
	}
	if !strings.Contains(err.Error(), "config path validation failed") {
		t.Errorf("error = %v, want path validation error", err)
	}
}

func TestLoadWithFile_RejectsInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	home := setupTestHome(t)

	path := writeConfig(t, home, "server:\n  http_port: 9090\n", 0644)

	_, err := LoadWithFile(path)
	if err == nil {
		t.Fatal("LoadWithFile() error = nil, want permission error")
	}
	if !strings.Contains(err.Error(), "insecure config file permissions") {
		t.Errorf("error = %v, want permission error", err)
	}
}

func TestLoadWithFile_InvalidValuesFailValidation(t *testing.T) {
	home := setupTestHome(t)

	path := writeConfig(t, home, "ai:\n  provider: llamafile\n", 0600)

	if _, err := LoadWithFile(path); err == nil {
		t.Fatal("LoadWithFile() error = nil, want validation error for unknown provider")
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PESTID_SERVER_HTTP_PORT", "server.http_port"},
		{"PESTID_AI_API_KEY", "ai.api_key"},
		{"PESTID_TRACKING_FALLBACK_TO_SAMPLES", "tracking.fallback_to_samples"},
		{"PESTID_DEBUG", "debug"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
