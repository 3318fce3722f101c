package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig.
const (
	EnvDatabase = "SSSP_DB"
	EnvURLBase  = "SSSP_URL_BASE"
	EnvLogLevel = "SSSP_LOG_LEVEL"
)

// Config holds settings shared by all commands.
//
// Precedence, lowest first: defaults, the YAML config file, environment
// variables, command line flags.
type Config struct {
	// Database is the path of the SQLite database.
	Database string `yaml:"database"`

	// URLBase is the archive source the install command downloads from.
	URLBase string `yaml:"url_base"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Database: filepath.Join(dataHome(), "sssp", "sssp.db"),
		LogLevel: "warn",
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/sssp/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sssp", "config.yaml")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// LoadConfig builds the configuration from defaults, the file at path and
// the environment. A missing file is only an error when required is set.
func LoadConfig(path string, required bool, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v, ok := lookupEnv(EnvDatabase); ok && v != "" {
		cfg.Database = v
	}
	if v, ok := lookupEnv(EnvURLBase); ok && v != "" {
		cfg.URLBase = v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}
