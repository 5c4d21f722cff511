package fixes

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/mainconfig"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/manifest"
	"github.com/abdidvp/automigrate/internal/domain"
)

const (
	legacyViteBuilder = "storybook-builder-vite"
	viteBuilder       = "@storybook/builder-vite"
	swcCompilerAddon  = "@storybook/addon-webpack5-compiler-swc"
	babelCompiler     = "@storybook/addon-webpack5-compiler-babel"
)

// Renderer packages that were valid framework values before 7.0.
var renderers = map[string]bool{
	"@storybook/react":          true,
	"@storybook/vue3":           true,
	"@storybook/vue":            true,
	"@storybook/svelte":         true,
	"@storybook/preact":         true,
	"@storybook/web-components": true,
	"@storybook/html":           true,
}

// Packages superseded by builder-specific frameworks.
var legacyBuilderPackages = []string{
	"@storybook/builder-webpack4",
	"@storybook/builder-webpack5",
	"@storybook/manager-webpack4",
	"@storybook/manager-webpack5",
}

// Frameworks that configure their own webpack compiler.
var compilerBundled = map[string]bool{
	"@storybook/nextjs":  true,
	"@storybook/angular": true,
}

func newFrameworks() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "newFrameworks",
			Title:       "Upgrade to a builder-specific framework",
			Description: "Replaces a renderer-only framework and a separate builder with the combined framework package.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: checkNewFrameworks,
	}
}

func checkNewFrameworks(_ context.Context, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.CheckResult, error) {
	if !snap.HasMainConfig() {
		return domain.Inapplicable("no main config found"), nil
	}
	configured := mainconfig.FrameworkName(snap.MainConfig)
	current := configured
	if current == "" {
		current = snap.Framework
	}
	if current == "" {
		return domain.Inapplicable("no framework detected"), nil
	}
	if !renderers[current] {
		return domain.AlreadySatisfied(fmt.Sprintf("framework %s is already builder-specific", current)), nil
	}

	builder := "webpack5"
	if snap.Builder == domain.BuilderVite {
		builder = "vite"
	}
	next := current + "-" + builder

	if configured == "" {
		return domain.NeedsManualAction(
			fmt.Sprintf("Add framework: '%s' to %s and install %s.", next, relPath(snap, snap.MainConfigPath), next), nil), nil
	}

	version := targetVersion(opts)
	return propose(
		fmt.Sprintf("Switch the framework from %s to %s and drop the separate builder packages.", current, next),
		"",
		mainConfigEdit(snap, func(src string) string {
			src, _ = mainconfig.SetFramework(src, next)
			src, _ = mainconfig.RemoveBuilder(src)
			return src
		}),
		manifestEdit(snap, func(doc *manifest.Document) error {
			for _, pkg := range legacyBuilderPackages {
				doc.RemoveDependency(pkg)
			}
			return doc.AddDevDependency(next, version)
		}),
	)
}

func viteConfigFile() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "viteConfigFile",
			Title:       "Add a Vite config file",
			Description: "Vite-based frameworks read plugins from the project's vite.config file.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			if snap.Builder != domain.BuilderVite {
				return domain.Inapplicable("project does not build with Vite"), nil
			}
			if snap.Files.ViteConfig != "" {
				return domain.AlreadySatisfied(snap.Files.ViteConfig + " exists"), nil
			}
			plugin := "the plugin for your framework"
			if strings.Contains(snap.Framework, "react") {
				plugin = "@vitejs/plugin-react"
			}
			return domain.NeedsManualAction(
				"Storybook's Vite builder no longer ships framework plugins. Create vite.config.js at the project root and register "+plugin+" in its plugins list.",
				nil), nil
		},
	}
}

func builderVite() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "builderVite",
			Title:       "Rename the community Vite builder",
			Description: "storybook-builder-vite moved to @storybook/builder-vite.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.CheckResult, error) {
			inConfig := snap.HasMainConfig() && mainconfig.Builder(snap.MainConfig) == legacyViteBuilder
			inDeps := snap.Manifest.Has(legacyViteBuilder)
			if !inConfig && !inDeps {
				if mainconfig.Builder(snap.MainConfig) == viteBuilder {
					return domain.AlreadySatisfied("builder is already " + viteBuilder), nil
				}
				return domain.Inapplicable("project does not use " + legacyViteBuilder), nil
			}

			version := targetVersion(opts)
			var edits []fileEdit
			if inConfig {
				edits = append(edits, mainConfigEdit(snap, func(src string) string {
					src, _ = mainconfig.ReplaceLiteral(src, legacyViteBuilder, viteBuilder)
					return src
				}))
			}
			edits = append(edits, manifestEdit(snap, func(doc *manifest.Document) error {
				doc.RemoveDependency(legacyViteBuilder)
				return doc.AddDevDependency(viteBuilder, version)
			}))
			return propose("Replace "+legacyViteBuilder+" with "+viteBuilder+".", "", edits...)
		},
	}
}

func webpack5CompilerSetup() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "webpack5CompilerSetup",
			Title:       "Add a webpack5 compiler addon",
			Description: "Webpack-based frameworks no longer pick a compiler; the SWC addon restores one.",
			Versions:    domain.VersionRange{From: "<8", To: ">=8"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.CheckResult, error) {
			if snap.Builder != domain.BuilderWebpack5 || compilerBundled[snap.Framework] {
				return domain.Inapplicable("project does not build with a bare webpack5 framework"), nil
			}
			if snap.HasAddon(swcCompilerAddon) || snap.HasAddon(babelCompiler) {
				return domain.AlreadySatisfied("a compiler addon is registered"), nil
			}
			if !snap.HasMainConfig() {
				return domain.Inapplicable("no main config found"), nil
			}
			return addAddon(snap, opts, swcCompilerAddon, "Register "+swcCompilerAddon+" so stories are compiled with SWC.")
		},
	}
}

// addAddon installs addon and registers it in the main config. Without an
// addons array the registration is left to the user.
func addAddon(snap *domain.ProjectSnapshot, opts domain.RunOptions, addon, summary string) (domain.CheckResult, error) {
	version := targetVersion(opts)
	residual := ""
	if !mainconfig.HasAddonsArray(snap.MainConfig) {
		residual = fmt.Sprintf("Add '%s' to the addons list in %s.", addon, relPath(snap, snap.MainConfigPath))
	}
	return propose(summary, residual,
		mainConfigEdit(snap, func(src string) string {
			src, _ = mainconfig.AddAddon(src, addon)
			return src
		}),
		manifestEdit(snap, func(doc *manifest.Document) error {
			return doc.AddDevDependency(addon, version)
		}),
	)
}
