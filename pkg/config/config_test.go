package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "DEBUG"

blob:
  type: "memory"

registry:
  type: "memory"

share:
  link_base_url: "https://drive.example.com/share"

users:
  - id: "u1"
    email: "alice@example.com"
    name: "Alice"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Blob.Type != "memory" {
		t.Errorf("Expected blob type memory, got %q", cfg.Blob.Type)
	}
	if cfg.Registry.Type != "memory" {
		t.Errorf("Expected registry type memory, got %q", cfg.Registry.Type)
	}
	if cfg.Share.LinkBaseURL != "https://drive.example.com/share" {
		t.Errorf("Unexpected link base URL: %q", cfg.Share.LinkBaseURL)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Email != "alice@example.com" {
		t.Errorf("Expected one seeded user, got %+v", cfg.Users)
	}

	// Defaults fill the rest.
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Blob.Type != "filesystem" {
		t.Errorf("Expected default blob type 'filesystem', got %q", cfg.Blob.Type)
	}
	if cfg.Registry.Type != "badger" {
		t.Errorf("Expected default registry type 'badger', got %q", cfg.Registry.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("logging: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
blob:
  type: "carrier-pigeon"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected validation error for unknown blob type")
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("HARBORDRIVE_LOGGING_LEVEL", "ERROR")

	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected env-overridden level ERROR, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvironmentBeatsConfigFile(t *testing.T) {
	t.Setenv("HARBORDRIVE_BLOB_TYPE", "memory")
	t.Setenv("HARBORDRIVE_SHARE_LINK_BASE_URL", "https://env.example.com/share")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
blob:
  type: "filesystem"

share:
  link_base_url: "https://file.example.com/share"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Blob.Type != "memory" {
		t.Errorf("Expected env to beat config file, got blob type %q", cfg.Blob.Type)
	}
	if cfg.Share.LinkBaseURL != "https://env.example.com/share" {
		t.Errorf("Expected env to beat config file, got link base URL %q", cfg.Share.LinkBaseURL)
	}
}
