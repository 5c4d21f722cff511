package fixes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/manifest"
	"github.com/abdidvp/automigrate/internal/domain"
)

const (
	eslintPluginPackage = "eslint-plugin-storybook"
	eslintPluginVersion = "^0.8.0"
	eslintPluginExtend  = "plugin:storybook/recommended"
)

func eslintPlugin() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "eslintPlugin",
			Title:       "Install the Storybook ESLint plugin",
			Description: "Adds eslint-plugin-storybook and enables its recommended rules.",
			Versions:    domain.VersionRange{From: "*", To: ">=7"},
		},
		check: checkESLintPlugin,
	}
}

func checkESLintPlugin(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
	if !snap.Features.ESLint {
		return domain.Inapplicable("ESLint is not installed"), nil
	}
	if snap.Manifest.Has(eslintPluginPackage) {
		return domain.AlreadySatisfied(eslintPluginPackage + " is installed"), nil
	}

	edits := []fileEdit{manifestEdit(snap, func(doc *manifest.Document) error {
		return doc.AddDevDependency(eslintPluginPackage, eslintPluginVersion)
	})}

	residual := ""
	cfg := snap.Files.ESLintConfig
	switch {
	case cfg == "":
		residual = fmt.Sprintf("Create an ESLint config that extends '%s'.", eslintPluginExtend)
	case isJSONConfig(snap.Path(cfg)):
		edits = append(edits, jsonEdit(snap, snap.Path(cfg), extendESLint))
	default:
		residual = fmt.Sprintf("Add '%s' to the extends list in %s.", eslintPluginExtend, cfg)
	}

	return propose("Install "+eslintPluginPackage+" and extend its recommended config.", residual, edits...)
}

// isJSONConfig reports whether an ESLint config file holds JSON. .eslintrc
// without an extension may be either JSON or YAML.
func isJSONConfig(path string) bool {
	switch filepath.Ext(path) {
	case ".json":
		return true
	case "":
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		_, err = manifest.Parse(data)
		return err == nil && strings.HasPrefix(strings.TrimSpace(string(data)), "{")
	}
	return false
}

func extendESLint(doc *manifest.Document) error {
	extends := doc.Strings("extends")
	for _, e := range extends {
		if e == eslintPluginExtend {
			return nil
		}
	}
	return doc.Set(append(extends, eslintPluginExtend), "extends")
}
