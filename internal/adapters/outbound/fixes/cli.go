package fixes

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/manifest"
	"github.com/abdidvp/automigrate/internal/domain"
)

const storybookPackage = "storybook"

// Packages that provided the CLI binary before 7.0.
var legacyCLIPackages = []string{"@storybook/cli", "sb"}

func sbBinary() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "sbBinary",
			Title:       "Use the storybook binary",
			Description: "The CLI moved from @storybook/cli and sb to the storybook package.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, opts domain.RunOptions) (domain.CheckResult, error) {
			m := snap.Manifest
			legacy := m.HasAny(legacyCLIPackages...)
			if !legacy && m.Has(storybookPackage) {
				return domain.AlreadySatisfied("storybook is installed"), nil
			}
			if !legacy && snap.StorybookVersion == "" {
				return domain.Inapplicable("project does not use Storybook"), nil
			}

			version := targetVersion(opts)
			return propose("Install the storybook package and remove the legacy CLI packages.", "",
				manifestEdit(snap, func(doc *manifest.Document) error {
					for _, pkg := range legacyCLIPackages {
						doc.RemoveDependency(pkg)
					}
					return doc.AddDevDependency(storybookPackage, version)
				}),
			)
		},
	}
}

// A legacy binary invocation. Matches that are arguments of a script runner
// call the npm script of the same name instead and are left alone.
var legacyBinaryRe = regexp.MustCompile(`(^|[\s;&|(])(start-storybook|build-storybook)\b`)

// Commands whose arguments are npm script names.
var scriptRunners = map[string]bool{
	"run-s":       true,
	"run-p":       true,
	"npm-run-all": true,
}

var binaryReplacements = map[string]string{
	"start-storybook": "storybook dev",
	"build-storybook": "storybook build",
}

// rewriteScript replaces legacy binary invocations in one script command.
func rewriteScript(cmd string) string {
	var b strings.Builder
	last := 0
	for _, m := range legacyBinaryRe.FindAllStringSubmatchIndex(cmd, -1) {
		start, end := m[4], m[5]
		if callsScript(cmd[:start]) {
			continue
		}
		b.WriteString(cmd[last:start])
		b.WriteString(binaryReplacements[cmd[start:end]])
		last = end
	}
	b.WriteString(cmd[last:])
	return b.String()
}

// callsScript reports whether a word following prefix is passed to a script
// runner: "npm run x", "yarn run x", "run-s a x" or "npm-run-all --serial x".
func callsScript(prefix string) bool {
	segment := prefix[strings.LastIndexAny(prefix, ";&|(")+1:]
	words := strings.Fields(segment)
	if len(words) == 0 {
		return false
	}
	if words[len(words)-1] == "run" {
		return true
	}
	for _, w := range words {
		if scriptRunners[w] {
			return true
		}
	}
	return false
}

func sbScripts() domain.Fix {
	return &fix{
		info: domain.FixInfo{
			ID:          "sbScripts",
			Title:       "Update Storybook scripts",
			Description: "start-storybook and build-storybook became storybook dev and storybook build.",
			Versions:    domain.VersionRange{From: "<7", To: ">=7"},
		},
		check: func(_ context.Context, snap *domain.ProjectSnapshot, _ domain.RunOptions) (domain.CheckResult, error) {
			scripts := snap.Manifest.Scripts
			var names []string
			modern := false
			for name, cmd := range scripts {
				if rewriteScript(cmd) != cmd {
					names = append(names, name)
				}
				if strings.Contains(cmd, "storybook dev") || strings.Contains(cmd, "storybook build") {
					modern = true
				}
			}
			if len(names) == 0 {
				if modern {
					return domain.AlreadySatisfied("scripts already use the storybook binary"), nil
				}
				return domain.Inapplicable("no scripts call start-storybook or build-storybook"), nil
			}
			sort.Strings(names)

			return propose("Rewrite the scripts "+strings.Join(names, ", ")+" to use the storybook binary.", "",
				manifestEdit(snap, func(doc *manifest.Document) error {
					current := doc.Scripts()
					for _, name := range names {
						cmd, ok := current[name]
						if !ok {
							continue
						}
						if err := doc.Set(rewriteScript(cmd), manifest.SectionScripts, name); err != nil {
							return err
						}
					}
					return nil
				}),
			)
		},
	}
}
