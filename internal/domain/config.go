package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Defaults applied when .automigrate.yaml leaves a field empty.
const (
	DefaultConfigDir     = ".storybook"
	DefaultTargetVersion = "^7.6.17"
)

// ProjectConfig holds project-level configuration loaded from .automigrate.yaml.
type ProjectConfig struct {
	ConfigDir         string   `yaml:"config_dir"          json:"config_dir,omitempty"`
	TargetVersion     string   `yaml:"target_version"      json:"target_version,omitempty"`
	ContinueOnFailure bool     `yaml:"continue_on_failure" json:"continue_on_failure,omitempty"`
	Skip              []string `yaml:"skip,omitempty"      json:"skip,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		ConfigDir:     DefaultConfigDir,
		TargetVersion: DefaultTargetVersion,
	}
}

// WithDefaults fills empty fields from DefaultConfig.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	d := DefaultConfig()
	if c.ConfigDir == "" {
		c.ConfigDir = d.ConfigDir
	}
	if c.TargetVersion == "" {
		c.TargetVersion = d.TargetVersion
	}
	return c
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. config_dir must stay inside the project
	if c.ConfigDir != "" {
		if filepath.IsAbs(c.ConfigDir) {
			return fmt.Errorf("config_dir %q must be relative to the project root", c.ConfigDir)
		}
		clean := filepath.Clean(c.ConfigDir)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("config_dir %q escapes the project root", c.ConfigDir)
		}
	}

	// 2. target_version must not be blank when given
	if c.TargetVersion != "" && strings.TrimSpace(c.TargetVersion) == "" {
		return fmt.Errorf("target_version must not be blank")
	}

	// 3. skip ids must be non-empty and unique
	seen := make(map[string]bool, len(c.Skip))
	for i, id := range c.Skip {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("skip[%d] must not be empty", i)
		}
		if seen[id] {
			return fmt.Errorf("fix %q listed twice in skip", id)
		}
		seen[id] = true
	}

	return nil
}

// ApplyTo overlays the config onto opts. Explicit option values win.
func (c ProjectConfig) ApplyTo(opts RunOptions) RunOptions {
	if opts.ConfigDir == "" {
		opts.ConfigDir = c.ConfigDir
	}
	if opts.TargetVersion == "" {
		opts.TargetVersion = c.TargetVersion
	}
	if c.ContinueOnFailure {
		opts.ContinueOnFailure = true
	}
	for _, id := range c.Skip {
		if !opts.IsSkipped(id) {
			opts.Skip = append(opts.Skip, id)
		}
	}
	return opts
}
