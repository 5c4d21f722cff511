package fixes

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/mainconfig"
	"github.com/abdidvp/automigrate/internal/domain"
)

const absolutePathFn = "getAbsolutePath"

// Helper definitions inserted above the config. {q} is replaced with the
// file's quote character.
const (
	cjsHelper = `const path = require({q}path{q});

function getAbsolutePath(value) {
  return path.dirname(require.resolve(path.join(value, {q}package.json{q})));
}`
	tsHelper = `import { dirname, join } from {q}path{q};

function getAbsolutePath(value: string): any {
  return dirname(require.resolve(join(value, {q}package.json{q})));
}`
)

func wrapRequire() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "wrapRequire",
			Title:       "Resolve framework and addons to absolute paths",
			Description: "Package names in main config must resolve from the project in monorepos and Yarn PnP installs.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			if !snap.Features.Monorepo && !snap.Files.PnP {
				return domain.Inapplicable("project is neither a monorepo nor a Yarn PnP install"), nil
			}
			if !snap.HasMainConfig() {
				return domain.Inapplicable("no main config found"), nil
			}
			if _, changed := mainconfig.WrapPackageNames(snap.MainConfig, absolutePathFn); !changed {
				return domain.AlreadySatisfied("framework and addons already resolve through a call"), nil
			}

			helper, manual := absolutePathHelper(snap.MainConfigPath, snap.MainConfig)
			if manual != "" {
				return domain.NeedsManualAction(manual, nil), nil
			}
			return propose("Wrap the framework and addon names in main config with "+absolutePathFn+"().", "",
				mainConfigEdit(snap, func(src string) string {
					out, changed := mainconfig.WrapPackageNames(src, absolutePathFn)
					if !changed || helper == "" || mainconfig.Declares(out, absolutePathFn) {
						return out
					}
					return mainconfig.InsertAfterImports(out, quoteHelper(helper, mainconfig.QuoteStyle(src)))
				}),
			)
		},
	}
}

// absolutePathHelper picks the helper definition for the config file. A
// non-empty manual result means the file cannot be edited safely.
func absolutePathHelper(path, src string) (helper, manual string) {
	if mainconfig.Declares(src, absolutePathFn) {
		return "", ""
	}
	instructions := "Wrap the framework and addon names in " + filepath.Base(path) +
		" with " + absolutePathFn + "(name), defined as dirname(require.resolve(join(name, 'package.json')))."
	if mainconfig.ImportsModule(src, "path", "node:path") {
		return "", instructions
	}
	switch filepath.Ext(path) {
	case ".js", ".cjs":
		if strings.Contains(src, "module.exports") || strings.Contains(src, "require(") {
			return cjsHelper, ""
		}
	case ".ts", ".cts":
		return tsHelper, ""
	}
	return "", instructions
}

func quoteHelper(helper, q string) string {
	if q == "" || q == "`" {
		q = "'"
	}
	return strings.NewReplacer("{q}", q).Replace(helper)
}
