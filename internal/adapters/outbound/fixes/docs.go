package fixes

import (
	"context"
	"fmt"
	"regexp"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/mainconfig"
	"github.com/abdidvp/automigrate/internal/domain"
)

const (
	mdxGfmAddon         = "@storybook/addon-mdx-gfm"
	legacyDocgenPlugin  = "react-docgen-typescript-plugin"
	docgenTypescript    = "react-docgen-typescript"
	reactDocgenProperty = "reactDocgen"
)

var autodocsRe = regexp.MustCompile(`\bautodocs\s*:`)

func mdxgfm() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "mdxgfm",
			Title:       "Enable GitHub-flavored markdown in MDX",
			Description: "MDX2 dropped GFM; the mdx-gfm addon brings tables, autolinks and strikethrough back.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.CheckResult, error) {
			if len(snap.Files.MDX) == 0 {
				return domain.Inapplicable("no .mdx files in the project"), nil
			}
			if snap.HasAddon(mdxGfmAddon) {
				return domain.AlreadySatisfied(mdxGfmAddon + " is registered"), nil
			}
			if !snap.HasMainConfig() {
				return domain.Inapplicable("no main config found"), nil
			}
			return addAddon(snap, opts, mdxGfmAddon,
				fmt.Sprintf("Register %s for the %d MDX file(s) in the project.", mdxGfmAddon, len(snap.Files.MDX)))
		},
	}
}

func autodocsTrue() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "autodocsTrue",
			Title:       "Replace docsPage with autodocs",
			Description: "The docs.docsPage option was renamed to docs.autodocs.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			if !snap.HasMainConfig() {
				return domain.Inapplicable("no main config found"), nil
			}
			if !mainconfig.HasDocsPage(snap.MainConfig) {
				if autodocsRe.MatchString(snap.MainConfig) {
					return domain.AlreadySatisfied("docs.autodocs is set"), nil
				}
				return domain.Inapplicable("main config does not set docsPage"), nil
			}
			return propose("Rename docs.docsPage to docs.autodocs: true.", "",
				mainConfigEdit(snap, func(src string) string {
					src, _ = mainconfig.ReplaceDocsPage(src)
					return src
				}),
			)
		},
	}
}

func reactDocgen() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "reactDocgen",
			Title:       "Update the reactDocgen option",
			Description: "react-docgen-typescript-plugin is now selected as react-docgen-typescript.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			if !snap.HasMainConfig() {
				return domain.Inapplicable("no main config found"), nil
			}
			if _, changed := mainconfig.ReplacePropertyValue(snap.MainConfig, reactDocgenProperty, legacyDocgenPlugin, docgenTypescript); !changed {
				return domain.Inapplicable("reactDocgen is not set to " + legacyDocgenPlugin), nil
			}
			return propose(fmt.Sprintf("Set typescript.reactDocgen to '%s'.", docgenTypescript), "",
				mainConfigEdit(snap, func(src string) string {
					src, _ = mainconfig.ReplacePropertyValue(src, reactDocgenProperty, legacyDocgenPlugin, docgenTypescript)
					return src
				}),
			)
		},
	}
}
