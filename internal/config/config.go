package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"treeorder/internal/errors"
)

// SettingsDir is the vault-relative directory holding the default settings file.
const SettingsDir = ".treeorder"

// DragConfig tunes the drag controller.
type DragConfig struct {
	Threshold          float64 `yaml:"threshold" toml:"threshold"`                       // Pointer travel before a press becomes a drag
	FrameIntervalMS    int     `yaml:"frame_interval_ms" toml:"frame_interval_ms"`       // Target recomputation interval
	RestrictToSiblings bool    `yaml:"restrict_to_siblings" toml:"restrict_to_siblings"` // Only siblings are drop candidates
}

// WatchConfig tunes the filesystem watcher.
type WatchConfig struct {
	RenameWindowMS int `yaml:"rename_window_ms" toml:"rename_window_ms"` // Max gap between the two halves of a rename
	DebounceMS     int `yaml:"debounce_ms" toml:"debounce_ms"`           // Quiet period before a settings reload
}

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `yaml:"level" toml:"level"`             // debug, info, warn or error
	Format     string `yaml:"format" toml:"format"`           // text or json
	File       string `yaml:"file" toml:"file"`               // Empty logs to stderr
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"` // Rotation size
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"` // Rotated files kept
}

// Config represents the application configuration structure.
type Config struct {
	Vault          string      `yaml:"vault" toml:"vault"`                       // Root of the ordered tree
	SettingsFile   string      `yaml:"settings_file" toml:"settings_file"`       // Settings blob location, defaults inside the vault
	Store          string      `yaml:"store" toml:"store"`                       // yaml or sqlite
	Ignore         []string    `yaml:"ignore" toml:"ignore"`                     // Glob patterns hidden from the tree
	ShowHidden     bool        `yaml:"show_hidden" toml:"show_hidden"`           // Include dot entries
	StartupDelayMS int         `yaml:"startup_delay_ms" toml:"startup_delay_ms"` // Wait before retrying activation
	Drag           DragConfig  `yaml:"drag" toml:"drag"`
	Watch          WatchConfig `yaml:"watch" toml:"watch"`
	Log            LogConfig   `yaml:"log" toml:"log"`
}

// DefaultPath returns ~/.config/treeorder/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "treeorder", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path. Files ending
// in .toml are parsed as TOML, everything else as YAML. If the file doesn't
// exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.ConfigNotFound, err)
	}

	// Decode over the defaults so unset keys keep their default value.
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", path, errors.InvalidConfig, err)
	}
	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Vault = "."
	cfg.Store = "yaml"
	cfg.Ignore = []string{}
	cfg.StartupDelayMS = 500

	cfg.Drag.Threshold = 5
	cfg.Drag.FrameIntervalMS = 16
	cfg.Drag.RestrictToSiblings = true

	cfg.Watch.RenameWindowMS = 100
	cfg.Watch.DebounceMS = 200

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	switch strings.ToLower(c.Store) {
	case "yaml", "sqlite":
	default:
		return fmt.Errorf("invalid store backend: %s", c.Store)
	}

	for i, pattern := range c.Ignore {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("ignore pattern %d: pattern cannot be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("ignore pattern %d: %w", i, err)
		}
	}

	if c.StartupDelayMS < 0 {
		return fmt.Errorf("startup delay must be >= 0")
	}
	if c.Drag.Threshold < 0 {
		return fmt.Errorf("drag threshold must be >= 0")
	}
	if c.Drag.FrameIntervalMS < 0 {
		return fmt.Errorf("drag frame interval must be >= 0")
	}
	if c.Watch.RenameWindowMS < 0 || c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch intervals must be >= 0")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if c.Vault != "" {
		info, err := os.Stat(c.Vault)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("vault directory does not exist: %s", c.Vault)
			}
			return fmt.Errorf("error accessing vault directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault is not a directory: %s", c.Vault)
		}
	}
	return nil
}

// SettingsPath returns the settings blob location, defaulting to a file
// under the vault's SettingsDir named after the store backend.
func (c *Config) SettingsPath() string {
	if c.SettingsFile != "" {
		return c.SettingsFile
	}
	name := "settings.yaml"
	if strings.EqualFold(c.Store, "sqlite") {
		name = "settings.db"
	}
	return filepath.Join(c.Vault, SettingsDir, name)
}

// StartupDelay is the activation retry delay.
func (c *Config) StartupDelay() time.Duration {
	return time.Duration(c.StartupDelayMS) * time.Millisecond
}

// FrameInterval is the drag recomputation interval.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Drag.FrameIntervalMS) * time.Millisecond
}

// RenameWindow is the rename pairing window.
func (c *Config) RenameWindow() time.Duration {
	return time.Duration(c.Watch.RenameWindowMS) * time.Millisecond
}

// Debounce is the settings reload debounce.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
