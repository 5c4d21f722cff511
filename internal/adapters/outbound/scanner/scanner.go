package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdidvp/automigrate/internal/domain"
)

var skipDirs = map[string]bool{
	"node_modules":     true,
	".git":             true,
	".automigrate":     true,
	".next":            true,
	".yarn":            true,
	"dist":             true,
	"build":            true,
	"coverage":         true,
	"storybook-static": true,
}

// Root-level config file names, in lookup order.
var (
	viteConfigs = []string{
		"vite.config.ts", "vite.config.js", "vite.config.mts", "vite.config.mjs", "vite.config.cts", "vite.config.cjs",
	}
	eslintConfigs = []string{
		".eslintrc.json", ".eslintrc", ".eslintrc.js", ".eslintrc.cjs", ".eslintrc.yaml", ".eslintrc.yml",
		"eslint.config.js", "eslint.config.mjs", "eslint.config.cjs",
	}
)

// FileScanner walks a project and lists the files fixes care about.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

func (s *FileScanner) Scan(projectPath string, excludePaths ...string) (domain.ProjectFiles, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return domain.ProjectFiles{}, err
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	var result domain.ProjectFiles
	rootFiles := map[string]bool{}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != absPath && (skipDirs[d.Name()] || extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(absPath, path)
		relPath = filepath.ToSlash(relPath)

		// Root-level markers only count in the project root, not subdirs.
		if !strings.Contains(relPath, "/") {
			rootFiles[relPath] = true
		}

		if strings.EqualFold(filepath.Ext(d.Name()), ".mdx") {
			result.MDX = append(result.MDX, relPath)
		}
		return nil
	})
	if err != nil {
		return domain.ProjectFiles{}, err
	}

	result.ViteConfig = firstPresent(rootFiles, viteConfigs)
	result.ESLintConfig = firstPresent(rootFiles, eslintConfigs)
	result.TSConfig = rootFiles["tsconfig.json"]
	result.PnP = rootFiles[".pnp.cjs"] || rootFiles[".pnp.js"]
	sort.Strings(result.MDX)
	return result, nil
}

func firstPresent(files map[string]bool, names []string) string {
	for _, n := range names {
		if files[n] {
			return n
		}
	}
	return ""
}
