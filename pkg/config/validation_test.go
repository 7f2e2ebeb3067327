package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidBlobType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Blob.Type = "floppy"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid blob type")
	}
}

func TestValidate_InvalidRegistryType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Registry.Type = "postgres"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unsupported registry type")
	}
}

func TestValidate_ZeroShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.ShutdownTimeout = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for zero shutdown timeout")
	}
}

func TestValidate_SeededUsers(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Users = []UserConfig{
		{ID: "u1", Email: "alice@example.com", Name: "Alice"},
		{ID: "u2", Email: "bob@example.com", Name: "Bob"},
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected seeded users to pass validation, got: %v", err)
	}
}

func TestValidate_DuplicateUserID(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Users = []UserConfig{
		{ID: "u1", Email: "alice@example.com"},
		{ID: "u1", Email: "bob@example.com"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for duplicate user id")
	}
}

func TestValidate_DuplicateUserEmail(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Users = []UserConfig{
		{ID: "u1", Email: "alice@example.com"},
		{ID: "u2", Email: "alice@example.com"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for duplicate email")
	}
}

func TestValidate_InvalidEmail(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Users = []UserConfig{
		{ID: "u1", Email: "not-an-email"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for malformed email")
	}
}

func TestValidate_MissingUserID(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Users = []UserConfig{
		{Email: "alice@example.com"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing user id")
	}
}
