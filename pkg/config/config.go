// Package config loads the optional cie.toml configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Run   Run   `toml:"run"`
	Repl  Repl  `toml:"repl"`
	Watch Watch `toml:"watch"`
	Log   Log   `toml:"log"`
}

type Run struct {
	JSONErrors bool `toml:"json_errors"`
	DumpEnv    bool `toml:"dump_env"`
}

type Repl struct {
	Prompt      string `toml:"prompt"`
	HistoryFile string `toml:"history_file"`
}

type Watch struct {
	Debounce    time.Duration `toml:"debounce"`
	ClearScreen bool          `toml:"clear_screen"`
}

type Log struct {
	Level     string `toml:"level"`
	TraceFile string `toml:"trace_file"`
}

// Default returns the configuration used when no cie.toml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML configuration file, fills in defaults, and validates
// the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults
// when it does not. Other read or parse failures are still errors.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Repl.Prompt == "" {
		c.Repl.Prompt = "cie> "
	}
	if c.Repl.HistoryFile == "" {
		c.Repl.HistoryFile = defaultHistoryFile()
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}
	return nil
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cie_history"
	}
	return home + "/.cie_history"
}
