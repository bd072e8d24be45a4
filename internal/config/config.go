// Package config loads the workbench settings from a YAML file with
// environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up under the user config directory
const DefaultFileName = "image-workbench.yaml"

// Config holds runtime configuration. Fields may be loaded from a YAML file
// and overridden by the environment and command-line flags.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Debug     bool   `yaml:"debug"`

	// Window size in device independent units
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`

	// Viewport used by the headless commands
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	ThumbnailSize int `yaml:"thumbnail_size"`

	// Session state, written back on exit
	LastDir string `yaml:"last_dir"`
}

// DefaultConfig returns a Config populated with standard defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "console",
		WindowWidth:    500,
		WindowHeight:   300,
		ViewportWidth:  500,
		ViewportHeight: 300,
		ThumbnailSize:  48,
	}
}

// DefaultPath returns the config path under the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, "image-workbench", DefaultFileName)
}

// Validate clamps values to safe ranges
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.LogFormat != "json" {
		c.LogFormat = "console"
	}
	if c.WindowWidth < 200 {
		c.WindowWidth = 500
	}
	if c.WindowHeight < 150 {
		c.WindowHeight = 300
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = c.WindowWidth
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = c.WindowHeight
	}
	if c.ThumbnailSize < 0 || c.ThumbnailSize > 256 {
		c.ThumbnailSize = 48
	}
	return nil
}

// ApplyEnv overrides fields from LOG_LEVEL and DEBUG
func (c *Config) ApplyEnv() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if debug := os.Getenv("DEBUG"); debug == "1" || strings.EqualFold(debug, "true") {
		c.Debug = true
		c.LogLevel = "debug"
	}
}

// Load reads configuration from path. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}

	cfg.ApplyEnv()
	_ = cfg.Validate()
	return cfg, nil
}

// LoadFile reads configuration from path without environment overrides.
// Use it when the result is going to be written back.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrapf(err, "read config %s", path)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}

	_ = cfg.Validate()
	return cfg, nil
}

// SaveLastDir stores dir as the last opened directory in the file at path.
// Other settings are taken from the file as is, so overrides applied to a
// running config are never persisted.
func SaveLastDir(path, dir string) error {
	cfg, err := LoadFile(path)
	if err != nil {
		return err
	}
	if cfg.LastDir == dir {
		return nil
	}
	cfg.LastDir = dir
	return cfg.Save(path)
}

// Save writes the configuration to path in YAML format
func (c *Config) Save(path string) error {
	_ = c.Validate()

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create config dir %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write config %s", path)
}
