// Package config loads and saves the parser demo harness's settings: REPL
// history size, output formatting, and inspect-TUI display preferences.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the ptx-parser demo harness's configuration.
type Config struct {
	// REPL settings
	REPL struct {
		HistorySize  int    `toml:"history_size"`
		HistoryFile  string `toml:"history_file"`
		ShowTokens   bool   `toml:"show_tokens"`
		EchoDiagnostics bool `toml:"echo_diagnostics"`
	} `toml:"repl"`

	// Display settings for rendering parsed output
	Display struct {
		ColorOutput   bool   `toml:"color_output"`
		NumberFormat  string `toml:"number_format"` // hex, dec
		IndentWidth   int    `toml:"indent_width"`
		MaxModifiers  int    `toml:"max_modifiers_shown"`
	} `toml:"display"`

	// Inspect TUI settings
	Inspect struct {
		ShowDiagnosticsPane bool `toml:"show_diagnostics_pane"`
		WrapLongLines       bool `toml:"wrap_long_lines"`
	} `toml:"inspect"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.REPL.HistorySize = 1000
	cfg.REPL.HistoryFile = ""
	cfg.REPL.ShowTokens = false
	cfg.REPL.EchoDiagnostics = true

	cfg.Display.ColorOutput = true
	cfg.Display.NumberFormat = "hex"
	cfg.Display.IndentWidth = 2
	cfg.Display.MaxModifiers = 8

	cfg.Inspect.ShowDiagnosticsPane = true
	cfg.Inspect.WrapLongLines = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "ptx-parser")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "ptx-parser")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
