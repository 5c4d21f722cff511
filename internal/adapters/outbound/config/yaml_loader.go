package config

import (
	"fmt"
	"path/filepath"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fsutil"
	"github.com/abdidvp/automigrate/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project-level configuration file.
const FileName = ".automigrate.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .automigrate.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .automigrate.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, ok, err := fsutil.ReadFileIfExists(filepath.Join(projectPath, FileName))
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	if !ok {
		return domain.DefaultConfig(), nil
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate before applying defaults so typos in the raw input surface.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return cfg.WithDefaults(), nil
}

// Render produces the commented default configuration written by
// `automigrate config init`.
func Render(cfg domain.ProjectConfig) (string, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}

	header := "# automigrate configuration\n" +
		"#\n" +
		"# config_dir:          directory holding the main config file\n" +
		"# target_version:      version range written into packages added by fixes\n" +
		"# continue_on_failure: keep running later fixes after one fails\n" +
		"# skip:                fix ids that are never checked\n\n"

	return header + string(body), nil
}
