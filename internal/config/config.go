// Package config provides configuration utilities for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/checkbook/internal/common"
	"github.com/Veraticus/checkbook/internal/storage"
)

// EnvPrefix prefixes every environment variable the application reads,
// e.g. CHECKBOOK_DATABASE_PATH for database.path.
const EnvPrefix = "CHECKBOOK"

// Configuration keys.
const (
	KeyDatabasePath     = "database.path"
	KeyStrictReferences = "database.strict_references"
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
}

// DatabaseConfig locates the database file and sets store behavior.
type DatabaseConfig struct {
	Path             string
	StrictReferences bool
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers default values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, storage.DefaultDatabasePath)
	v.SetDefault(KeyStrictReferences, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path:             ExpandPath(strings.TrimSpace(v.GetString(KeyDatabasePath))),
			StrictReferences: v.GetBool(KeyStrictReferences),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
	}

	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if _, err := common.ParseLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return nil, fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, cfg.Logging.Format)
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from the given .env files (default
// ".env" in the working directory). Missing files are ignored; variables
// already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
