// Package snapshot builds the read-only ProjectSnapshot a migration run
// works from.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/mainconfig"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/manifest"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/scanner"
	"github.com/abdidvp/automigrate/internal/domain"
)

// Loader implements domain.SnapshotLoader.
type Loader struct {
	git     domain.GitInfo
	scanner *scanner.FileScanner
}

// New returns a loader. git may be nil, in which case the snapshot reports
// no repository.
func New(git domain.GitInfo) *Loader {
	return &Loader{git: git, scanner: scanner.New()}
}

func (l *Loader) Load(projectPath, configDir string) (*domain.ProjectSnapshot, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	if configDir == "" {
		configDir = domain.DefaultConfigDir
	}

	snap := &domain.ProjectSnapshot{
		Root:         root,
		ManifestPath: filepath.Join(root, manifest.FileName),
		ConfigDir:    configDir,
	}

	// 1. package.json
	doc, err := manifest.Load(snap.ManifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no %s in %s", domain.ErrInvalidSnapshot, manifest.FileName, root)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	snap.Manifest, err = doc.Manifest()
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrInvalidSnapshot, manifest.FileName, err)
	}

	// 2. main config
	if p, ok := mainconfig.Find(filepath.Join(root, configDir)); ok {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading main config: %w", err)
		}
		snap.MainConfigPath = p
		snap.MainConfig = string(data)
	}

	if p, ok := mainconfig.FindPreview(filepath.Join(root, configDir)); ok {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading preview config: %w", err)
		}
		snap.PreviewPath = p
		snap.Preview = string(data)
	}

	// 3. project files
	snap.Files, err = l.scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	// 4. detection
	snap.Framework = detectFramework(snap)
	snap.Builder = detectBuilder(snap)
	snap.Addons = mainconfig.Addons(snap.MainConfig)
	snap.StorybookVersion = storybookVersion(snap.Manifest)
	snap.Features = detectFeatures(snap)
	snap.Features.Monorepo = doc.Has("workspaces") || inWorkspace(root)

	// 5. git
	if l.git != nil && l.git.IsGitRepo(root) {
		snap.Git.IsRepo = true
		if clean, err := l.git.IsClean(root); err == nil {
			snap.Git.Clean = clean
		}
		if head, err := l.git.CommitHash(root); err == nil {
			snap.Git.Head = head
		}
	}

	return snap, nil
}

// storybookVersion returns the declared range of the storybook package, or of
// the first @storybook/* package in name order.
func storybookVersion(m domain.Manifest) string {
	if v, ok := m.Version("storybook"); ok {
		return v
	}
	var names []string
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies} {
		for name := range deps {
			if strings.HasPrefix(name, "@storybook/") {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	v, _ := m.Version(names[0])
	return v
}
