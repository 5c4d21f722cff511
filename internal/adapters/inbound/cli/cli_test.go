package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/automigrate/internal/adapters/inbound/cli"
	"github.com/abdidvp/automigrate/internal/domain"
)

const fixtures = "../../../../testdata/projects"

// execute runs the command tree with stdin taken from in, which may be nil to
// use a regular file and so simulate a non-terminal stdin.
func execute(t *testing.T, in any, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := cli.NewRootCmdForTest()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	switch v := in.(type) {
	case string:
		root.SetIn(strings.NewReader(v))
	case nil:
		root.SetIn(notATerminal(t))
	}
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func notATerminal(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func copyFixture(t *testing.T, name string) string {
	t.Helper()
	src := filepath.Join(fixtures, name)
	dst := t.TempDir()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, path)
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err)
	return dst
}

// readTree returns the project files, leaving out the run history.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	require.NoError(t, filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".automigrate" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	}))
	return files
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "automigrate dev")
}

func TestListCmd(t *testing.T) {
	out, _, err := execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(15 fixes)")
	assert.Less(t, strings.Index(out, "newFrameworks"), strings.Index(out, "webpack5CompilerSetup"))
}

func TestListCmd_InitJSON(t *testing.T) {
	out, _, err := execute(t, "", "list", "--catalog", "init", "--json")
	require.NoError(t, err)

	var infos []domain.FixInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "eslintPlugin", infos[0].ID)
}

func TestListCmd_UnknownCatalog(t *testing.T) {
	_, _, err := execute(t, "", "list", "--catalog", "nightly")
	require.Error(t, err)
	assert.Equal(t, domain.ExitUsage, cli.ExitCode(err))
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	_, _, err := execute(t, "", "migrate", "--bogus")
	require.Error(t, err)
	assert.Equal(t, domain.ExitUsage, cli.ExitCode(err))
}

func TestMigrateCmd_NonTerminalNeedsYesOrDryRun(t *testing.T) {
	dir := copyFixture(t, "legacy-react")

	_, _, err := execute(t, nil, "migrate", dir)
	require.Error(t, err)
	assert.Equal(t, domain.ExitUsage, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "--yes")
}

func TestMigrateCmd_DryRunWritesNothing(t *testing.T) {
	dir := copyFixture(t, "legacy-react")
	before := readTree(t, dir)

	out, _, err := execute(t, nil, "migrate", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "would apply")
	assert.Equal(t, before, readTree(t, dir))
}

func TestMigrateCmd_YesAppliesAndRecordsHistory(t *testing.T) {
	dir := copyFixture(t, "legacy-react")

	out, _, err := execute(t, nil, "migrate", dir, "--yes", "--json")
	require.NoError(t, err)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, domain.StatusClean, summary.Status)
	assert.Len(t, summary.Entries, 15)

	main, err := os.ReadFile(filepath.Join(dir, ".storybook", "main.js"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "@storybook/react-webpack5")

	out, _, err = execute(t, "", "history", dir, "--json")
	require.NoError(t, err)
	var records []domain.RunRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, domain.CatalogFull, records[0].Catalog)
	assert.NotEmpty(t, records[0].RunID)
}

func TestMigrateCmd_SecondRunHasNothingToDo(t *testing.T) {
	dir := copyFixture(t, "legacy-react")

	_, _, err := execute(t, nil, "migrate", dir, "--yes")
	require.NoError(t, err)

	out, _, err := execute(t, nil, "migrate", dir, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to migrate")
}

func TestMigrateCmd_InteractiveDecline(t *testing.T) {
	dir := copyFixture(t, "legacy-react")
	before := readTree(t, dir)

	out, stderr, err := execute(t, strings.Repeat("n\n", 20), "migrate", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Apply this change?")
	assert.Contains(t, out, "declined")
	assert.Equal(t, before, readTree(t, dir))
}

func TestMigrateCmd_InteractiveAbort(t *testing.T) {
	dir := copyFixture(t, "legacy-react")

	out, _, err := execute(t, "a\n", "migrate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Run aborted at newFrameworks")
	assert.Contains(t, out, "Not attempted:")
}

func TestMigrateCmd_ManualFollowUpExitCode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"devDependencies":{"@storybook/jest":"^0.2.3","storybook":"^7.6.17"}}`), 0o644))

	out, _, err := execute(t, nil, "migrate", dir, "--yes")
	require.Error(t, err)
	assert.Equal(t, domain.ExitManualRequired, cli.ExitCode(err))
	assert.Contains(t, out, "Follow-up")
	assert.Contains(t, out, "@storybook/test")

	out, _, err = execute(t, nil, "migrate", dir, "--yes")
	require.NoError(t, err, "confirmed follow-ups are not reported again")
	assert.Contains(t, out, "Nothing to migrate")
}

func TestMigrateCmd_UnknownSkipIsUsageError(t *testing.T) {
	dir := copyFixture(t, "legacy-react")

	_, _, err := execute(t, nil, "migrate", dir, "--yes", "--skip", "notAFix")
	require.Error(t, err)
	assert.Equal(t, domain.ExitUsage, cli.ExitCode(err))
}

func TestMigrateCmd_SkipFlag(t *testing.T) {
	dir := copyFixture(t, "legacy-react")

	out, _, err := execute(t, nil, "migrate", dir, "--yes", "--json", "--skip", "sbScripts,sbBinary")
	require.NoError(t, err)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	o, ok := summary.Outcome("sbScripts")
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeSkipped, o.Kind)
}

func TestMigrateCmd_MissingManifest(t *testing.T) {
	_, _, err := execute(t, nil, "migrate", t.TempDir(), "--yes")
	require.Error(t, err)
	assert.Equal(t, domain.ExitUsage, cli.ExitCode(err))
}

func TestInitCmd_RunsInitCatalog(t *testing.T) {
	dir := copyFixture(t, "legacy-react")

	out, _, err := execute(t, nil, "init", dir, "--yes", "--json")
	require.NoError(t, err)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, domain.CatalogInit, summary.Catalog)
	require.Len(t, summary.Entries, 1)
	assert.Equal(t, domain.OutcomeSucceeded, summary.Entries[0].Outcome.Kind)

	pkg, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), "eslint-plugin-storybook")
}

func TestHistoryCmd_Empty(t *testing.T) {
	out, _, err := execute(t, "", "history", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No migration history found.")
}

func TestConfigInitCmd(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "", "config", "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created .automigrate.yaml")

	data, err := os.ReadFile(filepath.Join(dir, ".automigrate.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "config_dir: .storybook")
	assert.Contains(t, string(data), "target_version:")
}

func TestConfigInitCmd_FailsIfExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".automigrate.yaml"), []byte("existing"), 0o644))

	_, _, err := execute(t, "", "config", "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigInitCmd_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".automigrate.yaml"), []byte("old"), 0o644))

	_, _, err := execute(t, "", "config", "init", dir, "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".automigrate.yaml"))
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(data))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, cli.ExitCode(nil))
	assert.Equal(t, 3, cli.ExitCode(&cli.ExitError{Code: 3}))
	assert.Equal(t, 2, cli.ExitCode(domain.ErrInvalidCatalog))
	assert.Equal(t, 1, cli.ExitCode(errors.New("boom")))
}
