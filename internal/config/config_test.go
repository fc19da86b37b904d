package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Create a temporary YAML config file.
	yamlContent := []byte(`
storage:
  data_dir: "/tmp/quiverwsb/data"
  sqlite_path: "/tmp/quiverwsb/runs.db"
  reference_dir: "/tmp/quiverwsb/reference"
quiver:
  api_key: "test-token"
  base_url: "https://api.quiverquant.com/beta"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  base_url: "https://paper-api.alpaca.markets"
logging:
  level: "info"
  format: "json"
gather:
  wsb:
    rate_limit: 10
    rate_window_ms: 1100
    max_attempts: 5
    retry_delay_ms: 1000
`)

	tmpFile, err := os.CreateTemp("", "quiverwsb-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("QUIVER_API_KEY")
	os.Unsetenv("QUIVER_BASE_URL")
	os.Unsetenv("ALPACA_API_KEY")
	os.Unsetenv("ALPACA_API_SECRET")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("REFERENCE_DIR")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/quiverwsb/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/quiverwsb/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/quiverwsb/runs.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/quiverwsb/runs.db")
	}
	if cfg.Storage.ReferenceDir != "/tmp/quiverwsb/reference" {
		t.Errorf("Storage.ReferenceDir = %q, want %q", cfg.Storage.ReferenceDir, "/tmp/quiverwsb/reference")
	}

	// -- Quiver --
	if cfg.Quiver.APIKey != "test-token" {
		t.Errorf("Quiver.APIKey = %q, want %q", cfg.Quiver.APIKey, "test-token")
	}
	if cfg.Quiver.BaseURL != "https://api.quiverquant.com/beta" {
		t.Errorf("Quiver.BaseURL = %q, want %q", cfg.Quiver.BaseURL, "https://api.quiverquant.com/beta")
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
	if cfg.Alpaca.APISecret != "test-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q", cfg.Alpaca.APISecret, "test-secret")
	}

	// -- Logging --
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	// -- Gather --
	if cfg.Gather.WSB.RateLimit != 10 {
		t.Errorf("Gather.WSB.RateLimit = %d, want %d", cfg.Gather.WSB.RateLimit, 10)
	}
	if cfg.Gather.WSB.RateWindowMS != 1100 {
		t.Errorf("Gather.WSB.RateWindowMS = %d, want %d", cfg.Gather.WSB.RateWindowMS, 1100)
	}
	if cfg.Gather.WSB.MaxAttempts != 5 {
		t.Errorf("Gather.WSB.MaxAttempts = %d, want %d", cfg.Gather.WSB.MaxAttempts, 5)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	yamlContent := []byte(`
storage:
  data_dir: "/data"
`)

	tmpFile, err := os.CreateTemp("", "quiverwsb-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Unsetenv("QUIVER_BASE_URL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Quiver.BaseURL != "https://api.quiverquant.com/beta" {
		t.Errorf("Quiver.BaseURL default = %q, want Quiver endpoint", cfg.Quiver.BaseURL)
	}
	if cfg.Gather.WSB.RateLimit != 10 || cfg.Gather.WSB.RateWindowMS != 1100 {
		t.Errorf("rate defaults = %d/%dms, want 10/1100ms",
			cfg.Gather.WSB.RateLimit, cfg.Gather.WSB.RateWindowMS)
	}
	if cfg.Gather.WSB.MaxAttempts != 5 {
		t.Errorf("MaxAttempts default = %d, want 5", cfg.Gather.WSB.MaxAttempts)
	}
	if cfg.Gather.WSB.RetryDelayMS != 1000 {
		t.Errorf("RetryDelayMS default = %d, want 1000", cfg.Gather.WSB.RetryDelayMS)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
quiver:
  api_key: "yaml-token"
storage:
  data_dir: "/original/data"
`)

	tmpFile, err := os.CreateTemp("", "quiverwsb-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	t.Setenv("QUIVER_API_KEY", "env-token")
	t.Setenv("DATA_DIR", "/env/data")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Quiver.APIKey != "env-token" {
		t.Errorf("Quiver.APIKey = %q, want env override %q", cfg.Quiver.APIKey, "env-token")
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want env override %q", cfg.Storage.DataDir, "/env/data")
	}
}
