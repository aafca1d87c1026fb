// Package config holds the tool settings, as opposed to the per run
// simulation configs the run command consumes. Settings come from an
// optional YAML file overridden by SIMPILOT_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up in the user's home directory.
const FileName = ".simpilot.yaml"

const (
	DefaultOutputDir = "output"
	DefaultLogLevel  = "info"
)

// Settings configures the CLI across runs.
type Settings struct {
	OutputDir string `yaml:"output_dir" env:"SIMPILOT_OUTPUT_DIR"`
	LogLevel  string `yaml:"log_level" env:"SIMPILOT_LOG_LEVEL"`
	Progress  bool   `yaml:"progress" env:"SIMPILOT_PROGRESS"`
	Catalog   bool   `yaml:"catalog" env:"SIMPILOT_CATALOG"`
}

func DefaultSettings() *Settings {
	return &Settings{
		OutputDir: DefaultOutputDir,
		LogLevel:  DefaultLogLevel,
		Progress:  true,
		Catalog:   true,
	}
}

// DefaultPath locates the settings file in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads settings from path, layering the file over the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg *Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParseEnv applies SIMPILOT_* environment variables to target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Resolve produces the effective settings: defaults, then the settings
// file when it exists, then environment overrides.
func Resolve(path string) (*Settings, error) {
	cfg := DefaultSettings()
	if loaded, err := Load(path); err == nil {
		cfg = loaded
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
