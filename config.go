package argus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"encoding/json"

	toml "github.com/pelletier/go-toml/v2"
)

// Config defines the diagnostics configuration parameters.
// All fields can be provided via JSON or TOML configuration files.
type Config struct {
	Level         string `json:"level" toml:"level"`                   // debug, info, warning, error, critical
	Name          string `json:"name" toml:"name"`                     // Logger name stamped on every record
	Directory     string `json:"directory" toml:"directory"`           // Directory for the session log file; empty disables file logging
	Prefix        string `json:"prefix" toml:"prefix"`                 // Optional log file name prefix
	MaxLogs       int    `json:"max_logs" toml:"max_logs"`             // Rotated files to keep, -1 keeps all
	ConsoleExtras bool   `json:"console_extras" toml:"console_extras"` // Show extra fields on console lines
	SystemProbes  bool   `json:"system_probes" toml:"system_probes"`   // Register the built-in runtime and process probes
}

// defaultConfig values are used when the user does not provide a field.
func defaultConfig() *Config {
	return &Config{
		Level:   "error",
		Name:    "argus",
		MaxLogs: -1,
	}
}

// mergeConfig fills unset user fields from the defaults.
// Directory and Prefix keep their zero values: an empty directory is the
// valid "no file logging" setting.
func mergeConfig(user *Config) *Config {
	def := defaultConfig()
	if user == nil {
		return def
	}
	return &Config{
		Level:         getConfigValue(def.Level, user.Level),
		Name:          getConfigValue(def.Name, user.Name),
		Directory:     user.Directory,
		Prefix:        user.Prefix,
		MaxLogs:       getConfigValue(def.MaxLogs, user.MaxLogs),
		ConsoleExtras: user.ConsoleExtras,
		SystemProbes:  user.SystemProbes,
	}
}

// LoadConfig reads a Config from a TOML or JSON file, selected by extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	if cfg.Level != "" {
		if _, err := ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// getConfigValue returns defaultVal if cfgVal equals the zero value for type T,
// otherwise returns cfgVal. Type T must satisfy the comparable constraint.
// This is commonly used for merging configuration values with their defaults.
func getConfigValue[T comparable](defaultVal, cfgVal T) T {
	var zero T
	if cfgVal == zero {
		return defaultVal
	}
	return cfgVal
}
