package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format text, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output stdout, got %q", cfg.Logging.Output)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Blob.Type != "filesystem" {
		t.Errorf("Expected default blob type filesystem, got %q", cfg.Blob.Type)
	}
	if cfg.Registry.Type != "badger" {
		t.Errorf("Expected default registry type badger, got %q", cfg.Registry.Type)
	}
	if cfg.Share.LinkBaseURL == "" {
		t.Error("Expected default link base URL to be set")
	}
}

func TestApplyDefaults_NormalizesLogLevel(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized log level DEBUG, got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Blob.Type = "s3"
	cfg.Registry.Type = "memory"
	cfg.Server.ShutdownTimeout = 5 * time.Second

	ApplyDefaults(cfg)

	if cfg.Blob.Type != "s3" {
		t.Errorf("Expected blob type s3 to be preserved, got %q", cfg.Blob.Type)
	}
	if cfg.Registry.Type != "memory" {
		t.Errorf("Expected registry type memory to be preserved, got %q", cfg.Registry.Type)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown timeout 5s to be preserved, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestApplyDefaults_FilesystemPath(t *testing.T) {
	cfg := &Config{}

	ApplyDefaults(cfg)

	if cfg.Blob.Filesystem["path"] == "" {
		t.Error("Expected default filesystem blob path to be set")
	}
	if cfg.Registry.Badger["db_path"] == "" {
		t.Error("Expected default badger db_path to be set")
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected default config to pass validation, got error: %v", err)
	}
}
