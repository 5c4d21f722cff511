package fixes

import (
	"fmt"

	"github.com/abdidvp/automigrate/internal/domain"
)

// AllFixes returns the full migration catalog in execution order.
func AllFixes() domain.Catalog {
	return domain.NewCatalog(domain.CatalogFull,
		newFrameworks(),
		viteConfigFile(),
		eslintPlugin(),
		builderVite(),
		sbBinary(),
		sbScripts(),
		removeJestTestingLibrary(),
		removedGlobalClientAPIs(),
		mdxgfm(),
		autodocsTrue(),
		wrapRequire(),
		reactDocgen(),
		storyshotsMigration(),
		removeReactDependency(),
		webpack5CompilerSetup(),
	)
}

// InitFixes returns the catalog run when Storybook is first set up.
func InitFixes() domain.Catalog {
	return domain.NewCatalog(domain.CatalogInit,
		eslintPlugin(),
	)
}

// ByName returns the named catalog.
func ByName(name string) (domain.Catalog, error) {
	switch name {
	case domain.CatalogFull, "":
		return AllFixes(), nil
	case domain.CatalogInit:
		return InitFixes(), nil
	default:
		return domain.Catalog{}, fmt.Errorf("unknown catalog %q (want %s or %s)", name, domain.CatalogFull, domain.CatalogInit)
	}
}
