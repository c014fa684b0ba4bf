// Package config handles configuration loading with sensible defaults.
// The native format is TOML; the legacy JSON document produced by earlier
// deployments is accepted when the file carries a .json extension.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for p2000.
type Config struct {
	RTLSDR RTLSDRConfig `toml:"rtlsdr" json:"rtlsdr"`
	Log    LogConfig    `toml:"log" json:"log"`
}

// RTLSDRConfig controls the receiver-side behavior of the reader.
type RTLSDRConfig struct {
	Encoding  string          `toml:"encoding" json:"encoding"`
	Blacklist BlacklistConfig `toml:"blacklist" json:"blacklist"`
}

// BlacklistConfig holds the two exclusion lists consumed by the reader.
type BlacklistConfig struct {
	Messages     []string `toml:"messages" json:"messages"`
	MonitorCodes []string `toml:"monitorcodes" json:"monitorcodes"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		RTLSDR: RTLSDRConfig{
			Encoding: "utf-8",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "p2000", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
// Files ending in .json are parsed as the legacy JSON shape, everything
// else as TOML.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
