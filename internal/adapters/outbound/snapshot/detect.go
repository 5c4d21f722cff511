package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fsutil"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/mainconfig"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/manifest"
	"github.com/abdidvp/automigrate/internal/domain"
)

// knownFrameworks are checked in order when the main config does not name a
// framework. Builder-specific frameworks come before bare renderers.
var knownFrameworks = []string{
	"@storybook/react-vite",
	"@storybook/react-webpack5",
	"@storybook/nextjs",
	"@storybook/vue3-vite",
	"@storybook/vue3-webpack5",
	"@storybook/svelte-vite",
	"@storybook/sveltekit",
	"@storybook/preact-vite",
	"@storybook/preact-webpack5",
	"@storybook/web-components-vite",
	"@storybook/web-components-webpack5",
	"@storybook/html-vite",
	"@storybook/html-webpack5",
	"@storybook/angular",
	"@storybook/react",
	"@storybook/vue3",
	"@storybook/vue",
	"@storybook/svelte",
	"@storybook/preact",
	"@storybook/web-components",
	"@storybook/html",
}

func detectFramework(snap *domain.ProjectSnapshot) string {
	if fw := mainconfig.FrameworkName(snap.MainConfig); fw != "" {
		return fw
	}
	for _, fw := range knownFrameworks {
		if snap.Manifest.Has(fw) {
			return fw
		}
	}
	return ""
}

func detectBuilder(snap *domain.ProjectSnapshot) string {
	switch {
	case strings.HasSuffix(snap.Framework, "-vite"), snap.Framework == "@storybook/sveltekit":
		return domain.BuilderVite
	case strings.HasSuffix(snap.Framework, "-webpack5"), snap.Framework == "@storybook/nextjs":
		return domain.BuilderWebpack5
	}

	if b := builderFromName(mainconfig.Builder(snap.MainConfig)); b != "" {
		return b
	}

	m := snap.Manifest
	switch {
	case m.HasAny("@storybook/builder-vite", "storybook-builder-vite"):
		return domain.BuilderVite
	case m.HasAny("@storybook/builder-webpack5", "@storybook/manager-webpack5"):
		return domain.BuilderWebpack5
	case m.Has("@storybook/builder-webpack4"):
		return domain.BuilderWebpack4
	}
	return ""
}

func builderFromName(name string) string {
	switch {
	case name == "":
		return ""
	case strings.Contains(name, "vite"):
		return domain.BuilderVite
	case strings.Contains(name, "webpack5"):
		return domain.BuilderWebpack5
	case strings.Contains(name, "webpack4"):
		return domain.BuilderWebpack4
	}
	return ""
}

func detectFeatures(snap *domain.ProjectSnapshot) domain.Features {
	m := snap.Manifest
	return domain.Features{
		TypeScript: snap.Files.TSConfig || m.Has("typescript"),
		ESLint:     m.Has("eslint") || snap.Files.ESLintConfig != "",
		Vite:       m.Has("vite") || snap.Builder == domain.BuilderVite,
		Webpack5:   snap.Builder == domain.BuilderWebpack5 || strings.HasPrefix(strings.TrimLeft(versionOf(m, "webpack"), "^~=v"), "5"),
		React:      m.Has("react"),
	}
}

func versionOf(m domain.Manifest, name string) string {
	v, _ := m.Version(name)
	return v
}

// Files that mark a workspace root besides a package.json with workspaces.
var workspaceMarkers = []string{"pnpm-workspace.yaml", "lerna.json"}

// inWorkspace reports whether dir or one of its parents is a workspace root.
func inWorkspace(dir string) bool {
	for {
		for _, marker := range workspaceMarkers {
			if fsutil.Exists(filepath.Join(dir, marker)) {
				return true
			}
		}
		if doc, err := manifest.Load(filepath.Join(dir, manifest.FileName)); err == nil && doc.Has("workspaces") {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}
