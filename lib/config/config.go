// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// ProductionMaxPathLocations is the largest recording capacity accepted
// in production. A session buffers its whole path in memory until it
// finalizes.
const ProductionMaxPathLocations = 10000

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "WAYPATH_CONFIG"

// Config is the master configuration for waypath.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Recording configures recording sessions.
	Recording RecordingConfig `yaml:"recording"`

	// Replay configures replay bindings.
	Replay ReplayConfig `yaml:"replay"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths     *PathsConfig     `yaml:"paths,omitempty"`
	Recording *RecordingConfig `yaml:"recording,omitempty"`
	Replay    *ReplayConfig    `yaml:"replay,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for waypath data.
	Root string `yaml:"root"`

	// Paths holds one <name>.path file per recorded path, plus its
	// <name>.meta manifest.
	Paths string `yaml:"paths"`

	// Archives is the default location for exported path bundles.
	Archives string `yaml:"archives"`
}

// RecordingConfig configures recording sessions.
type RecordingConfig struct {
	// MaxPathLocations is the number of waypoints a session may hold
	// before it finalizes on its own.
	// Default: 500
	MaxPathLocations int `yaml:"max_path_locations"`

	// SamplingInterval is the recorder tick period, as a Go duration.
	// Default: 50ms
	SamplingInterval string `yaml:"sampling_interval"`

	// MinStep is the Manhattan distance a sample must exceed from the
	// last kept waypoint to be recorded.
	// Default: 0.01
	MinStep float64 `yaml:"min_step"`
}

// ReplayConfig configures replay bindings.
type ReplayConfig struct {
	// TickInterval is the replay tick period, as a Go duration.
	// Default: 50ms
	TickInterval string `yaml:"tick_interval"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "waypath")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:     defaultRoot,
			Paths:    filepath.Join(defaultRoot, "paths"),
			Archives: filepath.Join(defaultRoot, "archives"),
		},
		Recording: RecordingConfig{
			MaxPathLocations: 500,
			SamplingInterval: "50ms",
			MinStep:          0.01,
		},
		Replay: ReplayConfig{
			TickInterval: "50ms",
		},
	}
}

// Load loads configuration from the WAYPATH_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if WAYPATH_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your waypath.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values. The only expansion performed is ${HOME},
// ${WAYPATH_ROOT}, and similar path variables for portability.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed; anything else is YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML, so once comments and trailing
		// commas are stripped the YAML decoder reads it with the same
		// field tags.
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Paths != "" {
			c.Paths.Paths = overrides.Paths.Paths
		}
		if overrides.Paths.Archives != "" {
			c.Paths.Archives = overrides.Paths.Archives
		}
	}

	if overrides.Recording != nil {
		if overrides.Recording.MaxPathLocations != 0 {
			c.Recording.MaxPathLocations = overrides.Recording.MaxPathLocations
		}
		if overrides.Recording.SamplingInterval != "" {
			c.Recording.SamplingInterval = overrides.Recording.SamplingInterval
		}
		if overrides.Recording.MinStep != 0 {
			c.Recording.MinStep = overrides.Recording.MinStep
		}
	}

	if overrides.Replay != nil {
		if overrides.Replay.TickInterval != "" {
			c.Replay.TickInterval = overrides.Replay.TickInterval
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"WAYPATH_ROOT": c.Paths.Root,
		"HOME":         os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["WAYPATH_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Paths = expandVars(c.Paths.Paths, vars)
	c.Paths.Archives = expandVars(c.Paths.Archives, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// SamplingInterval returns the parsed recorder tick period. Call
// Validate first; an unparseable value returns zero here.
func (c *Config) SamplingInterval() time.Duration {
	interval, _ := time.ParseDuration(c.Recording.SamplingInterval)
	return interval
}

// ReplayInterval returns the parsed replay tick period. Call Validate
// first; an unparseable value returns zero here.
func (c *Config) ReplayInterval() time.Duration {
	interval, _ := time.ParseDuration(c.Replay.TickInterval)
	return interval
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Paths.Paths == "" {
		errs = append(errs, fmt.Errorf("paths.paths is required"))
	}

	if c.Recording.MaxPathLocations <= 0 {
		errs = append(errs, fmt.Errorf("recording.max_path_locations must be positive, got %d", c.Recording.MaxPathLocations))
	}
	if c.Environment == Production && c.Recording.MaxPathLocations > ProductionMaxPathLocations {
		errs = append(errs, fmt.Errorf("recording.max_path_locations must not exceed %d in production, got %d",
			ProductionMaxPathLocations, c.Recording.MaxPathLocations))
	}
	if c.Recording.MinStep < 0 {
		errs = append(errs, fmt.Errorf("recording.min_step must not be negative, got %v", c.Recording.MinStep))
	}

	if err := validateInterval("recording.sampling_interval", c.Recording.SamplingInterval); err != nil {
		errs = append(errs, err)
	}
	if err := validateInterval("replay.tick_interval", c.Replay.TickInterval); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateInterval(key, value string) error {
	interval, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if interval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.Paths,
		c.Paths.Archives,
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
