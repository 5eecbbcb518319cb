// Package config provides configuration management for Tailtray.
// It handles loading, saving, and managing persisted applet settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tailtray/tailtray/common"
)

// Config represents the persisted applet configuration.
// All settings live in a YAML file in the user's config directory.
type Config struct {
	// ExitNodeIndex is the index of the last confirmed exit-node
	// selection; zero means none.
	ExitNodeIndex int `yaml:"exit_node_index"`
	// AllowLAN keeps LAN access while routing through an exit node.
	AllowLAN bool `yaml:"allow_lan"`
	// ShowNotifications enables desktop notifications for command
	// failures and Taildrop results.
	ShowNotifications bool `yaml:"show_notifications"`
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`

	path string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ExitNodeIndex:     0,
		AllowLAN:          false,
		ShowNotifications: true,
		Theme:             common.ThemeAuto,
	}
}

// Load loads the configuration from the config file. A missing file is
// not an error: defaults are returned and written. Load never fails
// fatally; the worst case is running on defaults.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return DefaultConfig(), fmt.Errorf("%w: resolve config path: %w", common.ErrConfigLoad, err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = configPath
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		cfg := DefaultConfig()
		cfg.path = configPath
		return cfg, fmt.Errorf("%w: %w", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	cfg := DefaultConfig()
	if err := decoder.Decode(cfg); err != nil {
		fresh := DefaultConfig()
		fresh.path = configPath
		return fresh, fmt.Errorf("%w: %w", common.ErrConfigLoad, err)
	}

	cfg.validate()
	cfg.path = configPath
	return cfg, nil
}

// validate clamps configuration values to valid ranges.
func (c *Config) validate() {
	switch c.Theme {
	case common.ThemeAuto, common.ThemeLight, common.ThemeDark:
	default:
		c.Theme = common.ThemeAuto
	}
	if c.ExitNodeIndex < 0 {
		c.ExitNodeIndex = 0
	}
}

// Save persists the configuration to its file.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			return err
		}
		c.path = configPath
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: create config directory: %w", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: serialize: %w", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %w", common.ErrConfigSave, err)
	}

	return nil
}

// SetExitNode records a confirmed exit-node selection. The write is
// fire-and-forget: failures are logged, never surfaced.
func (c *Config) SetExitNode(idx int) {
	c.ExitNodeIndex = idx
	if err := c.Save(); err != nil {
		common.LogError("Failed to save exit node config: %v", err)
	}
}

// SetAllowLAN records a confirmed LAN-access change, fire-and-forget.
func (c *Config) SetAllowLAN(allowed bool) {
	c.AllowLAN = allowed
	if err := c.Save(); err != nil {
		common.LogError("Failed to save LAN access config: %v", err)
	}
}

func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}
