package fixes

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/abdidvp/automigrate/internal/domain"
)

// Fixes in this file only detect a situation and hand the user instructions.

func removeJestTestingLibrary() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "removeJestTestingLibrary",
			Title:       "Replace @storybook/jest and @storybook/testing-library",
			Description: "Both packages were merged into @storybook/test.",
			Versions:    domain.VersionRange{From: "<8", To: ">=8"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			var found []string
			for _, pkg := range []string{"@storybook/jest", "@storybook/testing-library"} {
				if snap.Manifest.Has(pkg) {
					found = append(found, pkg)
				}
			}
			if len(found) == 0 {
				return domain.Inapplicable("neither package is installed"), nil
			}
			return domain.NeedsManualAction(fmt.Sprintf(
				"Uninstall %s, install @storybook/test and update imports in your stories to use it.",
				strings.Join(found, " and ")), nil), nil
		},
	}
}

// Client APIs removed in favour of named exports from the preview file.
var removedClientAPIRe = regexp.MustCompile(`\b(addDecorator|addParameters|addLoader|getStorybook|setAddon|clearDecorators)\s*\(`)

func removedGlobalClientAPIs() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "removedGlobalClientAPIs",
			Title:       "Replace removed client APIs in preview",
			Description: "addDecorator, addParameters and the other global client APIs were removed.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			if snap.PreviewPath == "" {
				return domain.Inapplicable("no preview file found"), nil
			}
			var apis []string
			seen := map[string]bool{}
			for _, m := range removedClientAPIRe.FindAllStringSubmatch(snap.Preview, -1) {
				if !seen[m[1]] {
					seen[m[1]] = true
					apis = append(apis, m[1])
				}
			}
			if len(apis) == 0 {
				return domain.Inapplicable("preview does not call removed client APIs"), nil
			}
			return domain.NeedsManualAction(fmt.Sprintf(
				"%s calls %s. Export decorators, parameters and loaders from it instead, e.g. export const decorators = [...].",
				filepath.Base(snap.PreviewPath), strings.Join(apis, ", ")), nil), nil
		},
	}
}

func storyshotsMigration() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "storyshotsMigration",
			Title:       "Migrate away from Storyshots",
			Description: "@storybook/addon-storyshots is no longer maintained.",
			Versions:    domain.VersionRange{From: "<8", To: ">=8"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			const addon = "@storybook/addon-storyshots"
			if !snap.Manifest.Has(addon) && !snap.HasAddon(addon) {
				return domain.Inapplicable("Storyshots is not used"), nil
			}
			return domain.NeedsManualAction(
				"Remove "+addon+" and move snapshot tests to the Storybook test runner or portable stories.", nil), nil
		},
	}
}

// Frameworks that render with React and so need it installed.
var reactFrameworks = map[string]bool{
	"@storybook/react":          true,
	"@storybook/react-vite":     true,
	"@storybook/react-webpack5": true,
	"@storybook/nextjs":         true,
}

func removeReactDependency() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "removeReactDependency",
			Title:       "Check whether react is still needed",
			Description: "Non-React Storybook projects no longer need react installed.",
			Versions:    domain.VersionRange{From: "<8", To: ">=8"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			if snap.Framework == "" || reactFrameworks[snap.Framework] {
				return domain.Inapplicable("project uses a React framework"), nil
			}
			if !snap.Manifest.HasAny("react", "react-dom") {
				return domain.Inapplicable("react is not installed"), nil
			}
			return domain.NeedsManualAction(fmt.Sprintf(
				"%s does not need react. Remove react and react-dom from package.json unless your own code imports them.",
				snap.Framework), nil), nil
		},
	}
}
