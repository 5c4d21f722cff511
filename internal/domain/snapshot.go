package domain

import (
	"path/filepath"
	"strings"
)

// Builder identities.
const (
	BuilderVite     = "vite"
	BuilderWebpack5 = "webpack5"
	BuilderWebpack4 = "webpack4"
)

// Manifest is the parsed content of package.json.
type Manifest struct {
	Name            string            `json:"name,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Automigrate     ManifestState     `json:"automigrate,omitempty"`
}

// ManifestState is the "automigrate" section of package.json. It lists the
// fixes whose manual follow-up the user confirmed in an earlier run.
type ManifestState struct {
	Acknowledged []string `json:"acknowledged,omitempty"`
}

// Acknowledged reports whether the manual follow-up of fixID was confirmed.
func (m Manifest) Acknowledged(fixID string) bool {
	for _, id := range m.Automigrate.Acknowledged {
		if id == fixID {
			return true
		}
	}
	return false
}

// Version returns the declared range of a dependency from either section.
func (m Manifest) Version(name string) (string, bool) {
	if v, ok := m.Dependencies[name]; ok {
		return v, true
	}
	v, ok := m.DevDependencies[name]
	return v, ok
}

// Has reports whether name is declared in either dependency section.
func (m Manifest) Has(name string) bool {
	_, ok := m.Version(name)
	return ok
}

// HasAny reports whether any of names is declared.
func (m Manifest) HasAny(names ...string) bool {
	for _, n := range names {
		if m.Has(n) {
			return true
		}
	}
	return false
}

// Features are boolean facts derived once from the snapshot.
type Features struct {
	TypeScript bool `json:"typescript"`
	ESLint     bool `json:"eslint"`
	Vite       bool `json:"vite"`
	Webpack5   bool `json:"webpack5"`
	React      bool `json:"react"`
	// Monorepo is set when the project is a workspace root or sits inside one.
	Monorepo bool `json:"monorepo"`
}

// ProjectFiles lists the files of interest found by walking the project.
// Paths are relative to the project root, slash-separated and sorted.
type ProjectFiles struct {
	MDX          []string `json:"mdx,omitempty"`
	ViteConfig   string   `json:"vite_config,omitempty"`
	ESLintConfig string   `json:"eslint_config,omitempty"`
	TSConfig     bool     `json:"tsconfig,omitempty"`
	PnP          bool     `json:"pnp,omitempty"`
}

// GitState describes the project's repository, when there is one.
type GitState struct {
	IsRepo bool   `json:"is_repo"`
	Clean  bool   `json:"clean"`
	Head   string `json:"head,omitempty"`
}

// ProjectSnapshot is the read-only picture of the project a run works from.
// It is built once before the first fix runs and is never refreshed, so fixes
// see the pre-run state. Fixes must not mutate it.
type ProjectSnapshot struct {
	Root             string       `json:"root"`
	ManifestPath     string       `json:"manifest_path"`
	Manifest         Manifest     `json:"manifest"`
	ConfigDir        string       `json:"config_dir"`
	MainConfigPath   string       `json:"main_config_path,omitempty"`
	MainConfig       string       `json:"-"`
	PreviewPath      string       `json:"preview_path,omitempty"`
	Preview          string       `json:"-"`
	Framework        string       `json:"framework,omitempty"`
	Builder          string       `json:"builder,omitempty"`
	Addons           []string     `json:"addons,omitempty"`
	StorybookVersion string       `json:"storybook_version,omitempty"`
	Features         Features     `json:"features"`
	Files            ProjectFiles `json:"files"`
	Git              GitState     `json:"git"`
}

// HasMainConfig reports whether a main configuration file was found.
func (s *ProjectSnapshot) HasMainConfig() bool {
	return s.MainConfigPath != ""
}

// HasAddon reports whether addon is registered in the main config. Matching
// ignores a trailing "/preset" or "/register" entry point.
func (s *ProjectSnapshot) HasAddon(addon string) bool {
	for _, a := range s.Addons {
		a = strings.TrimSuffix(strings.TrimSuffix(a, "/preset"), "/register")
		if a == addon {
			return true
		}
	}
	return false
}

// Path joins rel onto the project root.
func (s *ProjectSnapshot) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

// Validate checks the fields every fix may rely on.
func (s *ProjectSnapshot) Validate() error {
	if s == nil {
		return ErrInvalidSnapshot
	}
	if s.Root == "" {
		return invalidSnapshotf("project root is empty")
	}
	if s.ManifestPath == "" {
		return invalidSnapshotf("manifest path is empty")
	}
	return nil
}
