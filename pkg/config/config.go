// Package config loads, defaults, and validates the HarborDrive
// configuration, and provides factory functions that turn configuration
// sections into live blob stores and registries.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete HarborDrive configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (HARBORDRIVE_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each backend defines its own configuration shape. The Config struct
// contains type-specific sections (e.g. blob.filesystem, blob.s3) and
// only the section matching the selected type is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains server-wide settings
	Server ServerConfig `mapstructure:"server"`

	// Blob specifies the blob backend type and type-specific configuration
	Blob BlobConfig `mapstructure:"blob"`

	// Registry specifies the registry backend type and type-specific
	// configuration
	Registry RegistryConfig `mapstructure:"registry"`

	// Share contains share-link settings
	Share ShareConfig `mapstructure:"share"`

	// Users seeds the in-memory user directory. Ignored when the
	// embedding application provides its own directory.
	Users []UserConfig `mapstructure:"users" validate:"dive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains server-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// BlobConfig specifies blob backend configuration.
//
// The Type field determines which backend is used. Only the
// corresponding type-specific section is read.
type BlobConfig struct {
	// Type specifies which blob backend to use
	// Valid values: filesystem, s3, memory
	Type string `mapstructure:"type" validate:"required,oneof=filesystem s3 memory"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`
}

// RegistryConfig specifies registry backend configuration.
type RegistryConfig struct {
	// Type specifies which registry backend to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// ShareConfig contains share-link settings.
type ShareConfig struct {
	// LinkBaseURL prefixes share-link URLs handed to callers,
	// e.g. "https://drive.example.com/share"
	LinkBaseURL string `mapstructure:"link_base_url"`
}

// UserConfig seeds one user into the in-memory directory.
type UserConfig struct {
	ID    string `mapstructure:"id" validate:"required"`
	Email string `mapstructure:"email" validate:"required,email"`
	Name  string `mapstructure:"name"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns the loaded and validated configuration.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file
// settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the HARBORDRIVE_ prefix and underscores.
	// Example: HARBORDRIVE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("HARBORDRIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only consults the environment for keys viper already
	// knows about, so every scalar key must be registered here or an env
	// variable for it is silently ignored when the config file omits it.
	// ApplyDefaults still runs afterwards for normalization and for the
	// backend option maps.
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("blob.type", "filesystem")
	v.SetDefault("registry.type", "badger")
	v.SetDefault("share.link_base_url", "http://localhost:8080/share")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/harbordrive/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; defaults and env carry the load. An
		// explicitly named missing file surfaces as a path error rather
		// than viper's not-found type, so both are tolerated.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "harbordrive")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "harbordrive")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
