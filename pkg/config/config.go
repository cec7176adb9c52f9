// Package config loads the handful of externally overridable knobs the
// core does not otherwise take as CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds msys2pkg configuration.
type Config struct {
	RootDir        string        `yaml:"root_dir"`
	NoPrompt       bool          `yaml:"no_prompt"`
	MirrorBase     string        `yaml:"mirror_base"`
	FreshWindow    time.Duration `yaml:"fresh_window"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Debug          bool          `yaml:"debug"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		RootDir:        "",
		NoPrompt:       false,
		MirrorBase:     "",
		FreshWindow:    time.Hour,
		RequestTimeout: 2 * time.Minute,
		Debug:          false,
	}
}

// Load reads configuration from path, or from
// $HOME/.config/msys2pkg/config.yaml when path is empty. A missing file
// yields DefaultConfig(), not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".config", "msys2pkg", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
