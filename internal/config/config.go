// Package config holds the server's configurable values. Flags are bound to
// a Config by the command layer; environment variables (optionally loaded
// from an env file) fill in anything the flags left at their defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configurable values for the server.
type Config struct {
	WorkingDirectory    string
	Transport           string
	Port                int
	MaxFileSizeMB       int
	MaxEditsPerRequest  int
	OperationTimeoutSec int
}

// Default returns a Config with the built-in defaults. The working directory
// has no default; it must be set explicitly.
func Default() *Config {
	return &Config{
		Transport:           "stdio",
		Port:                8080,
		MaxFileSizeMB:       10,
		MaxEditsPerRequest:  1000,
		OperationTimeoutSec: 30,
	}
}

// LoadEnv overlays TEXTEDIT_* environment variables onto the config,
// optionally loading them from envFile first. Unset variables leave the
// current values untouched.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	if v := os.Getenv("TEXTEDIT_DIR"); v != "" {
		c.WorkingDirectory = v
	}
	if v := os.Getenv("TEXTEDIT_TRANSPORT"); v != "" {
		c.Transport = v
	}
	for _, e := range []struct {
		name string
		dst  *int
	}{
		{"TEXTEDIT_PORT", &c.Port},
		{"TEXTEDIT_MAX_FILE_SIZE_MB", &c.MaxFileSizeMB},
		{"TEXTEDIT_MAX_EDITS", &c.MaxEditsPerRequest},
		{"TEXTEDIT_TIMEOUT_SEC", &c.OperationTimeoutSec},
	} {
		if v := os.Getenv(e.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.name, err)
			}
			*e.dst = n
		}
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.WorkingDirectory == "" {
		return fmt.Errorf("working directory is required")
	}
	info, err := os.Stat(c.WorkingDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("working directory does not exist: %s", c.WorkingDirectory)
		}
		return fmt.Errorf("error accessing working directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("working directory is not a directory: %s", c.WorkingDirectory)
	}

	if c.Transport != "http" && c.Transport != "stdio" {
		return fmt.Errorf("transport must be 'http' or 'stdio'")
	}
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535")
	}
	if c.MaxFileSizeMB < 1 || c.MaxFileSizeMB > 100 {
		return fmt.Errorf("max file size must be between 1 and 100 MB")
	}
	if c.MaxEditsPerRequest < 1 || c.MaxEditsPerRequest > 10000 {
		return fmt.Errorf("max edits per request must be between 1 and 10000")
	}
	if c.OperationTimeoutSec < 1 || c.OperationTimeoutSec > 300 {
		return fmt.Errorf("operation timeout must be between 1 and 300 seconds")
	}
	return nil
}
