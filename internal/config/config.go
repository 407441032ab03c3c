// SPDX-License-Identifier: MIT
// Package config handles loading, saving, and resolving the fleetpull
// configuration file and the repository list it declares.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-directory fleetpull config file.
	LocalConfigFilename = ".fleetpull.yaml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/fleetpull/v1beta1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "FleetPullConfig"
	// EnvConfig names the environment variable that overrides the config location.
	EnvConfig = "FLEETPULL_CONFIG"
)

// ErrNoRepositories is returned when the config declares no repositories.
var ErrNoRepositories = errors.New("no repositories configured")

// Defaults holds default values for operations.
type Defaults struct {
	RemoteName string `yaml:"remote_name"`
	// Concurrency caps parallel repositories. Zero or negative means one
	// unit per repository.
	Concurrency int `yaml:"concurrency"`
	// TimeoutSeconds bounds each git command. Zero means no limit.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Config represents the fleetpull configuration.
type Config struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	// Git is the ordered list of repository paths or glob patterns.
	Git     []string `yaml:"git"`
	Exclude []string `yaml:"exclude,omitempty"`
	// Fetch controls whether synced repositories pull from upstream.
	Fetch    bool     `yaml:"fetch"`
	Defaults Defaults `yaml:"defaults"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion: ConfigAPIVersion,
		Kind:       ConfigKind,
		Fetch:      true,
		Defaults: Defaults{
			RemoteName:     "origin",
			Concurrency:    0,
			TimeoutSeconds: 0,
		},
	}
}

// Timeout returns the per-command timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c == nil || c.Defaults.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Defaults.TimeoutSeconds) * time.Second
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, FLEETPULL_CONFIG env var,
// and finally os.UserConfigDir()/fleetpull.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "fleetpull"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// InitConfigPath resolves where "fleetpull init" should write config.
// Order: explicit override, FLEETPULL_CONFIG, then local dotfile in cwd.
func InitConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, LocalConfigFilename), nil
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, FLEETPULL_CONFIG, nearest local dotfile in cwd/parents,
// then global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// FindNearestConfigPath searches cwd and each parent directory for .fleetpull.yaml.
// It returns an empty string when no local config file is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigGVK(&cfg)
	if err := validateConfigGVK(&cfg); err != nil {
		return nil, err
	}
	if cfg.Defaults.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("defaults.timeout_seconds must not be negative (got %d)", cfg.Defaults.TimeoutSeconds)
	}
	if cfg.Defaults.Concurrency == 0 {
		cfg.Defaults.Concurrency = DefaultConfig().Defaults.Concurrency
	}
	if strings.TrimSpace(cfg.Defaults.RemoteName) == "" {
		cfg.Defaults.RemoteName = DefaultConfig().Defaults.RemoteName
	}

	return &cfg, nil
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	applyConfigGVK(cfg)
	if err := validateConfigGVK(cfg); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isConfigFilePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml" || ext == ".json"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
