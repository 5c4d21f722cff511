package mcp_test

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpadapter "github.com/abdidvp/automigrate/internal/adapters/inbound/mcp"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/history"
	"github.com/abdidvp/automigrate/internal/domain"
)

func TestNewAutomigrateMCPServer(t *testing.T) {
	s := mcpadapter.NewAutomigrateMCPServer(".")
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewAutomigrateMCPServer(".")
	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"automigrate_list_fixes",
		"automigrate_check",
		"automigrate_migrate",
	}
	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}

func callTool(t *testing.T, projectPath, name string, args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	s := mcpadapter.NewAutomigrateMCPServer(projectPath)
	tool, ok := s.ListTools()[name]
	require.True(t, ok, name)

	var req mcplib.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListFixesTool(t *testing.T) {
	res := callTool(t, ".", "automigrate_list_fixes", map[string]any{"catalog": "init"})
	require.False(t, res.IsError)

	var infos []domain.FixInfo
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "eslintPlugin", infos[0].ID)
}

func TestListFixesTool_UnknownCatalog(t *testing.T) {
	res := callTool(t, ".", "automigrate_list_fixes", map[string]any{"catalog": "nightly"})
	assert.True(t, res.IsError)
}

func eslintProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte("{\n  \"devDependencies\": {\n    \"eslint\": \"^8.57.0\"\n  }\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".eslintrc.json"),
		[]byte("{\n  \"extends\": [\"eslint:recommended\"]\n}\n"), 0o644))
	return dir
}

func TestCheckTool_WritesNothing(t *testing.T) {
	dir := eslintProject(t)
	before, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)

	res := callTool(t, dir, "automigrate_check", map[string]any{"catalog": "init"})
	require.False(t, res.IsError, text(t, res))

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &summary))
	assert.True(t, summary.DryRun)
	require.Len(t, summary.Entries, 1)
	assert.True(t, summary.Entries[0].Outcome.WouldApply)

	after, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.NoDirExists(t, filepath.Join(dir, ".automigrate"))
}

func TestMigrateTool_Applies(t *testing.T) {
	dir := eslintProject(t)

	res := callTool(t, dir, "automigrate_migrate", map[string]any{"catalog": "init"})
	require.False(t, res.IsError, text(t, res))

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &summary))
	assert.Equal(t, domain.OutcomeSucceeded, summary.Entries[0].Outcome.Kind)

	pkg, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), "eslint-plugin-storybook")
}

func TestMigrateTool_InvalidProject(t *testing.T) {
	res := callTool(t, t.TempDir(), "automigrate_migrate", nil)
	assert.True(t, res.IsError)
}

func TestMigrateTool_ConcurrentCallsDoNotOverlap(t *testing.T) {
	dir := copyFixture(t, "legacy-react")
	s := mcpadapter.NewAutomigrateMCPServer(dir)
	tool := s.ListTools()["automigrate_migrate"]
	require.NotNil(t, tool)

	calls := []map[string]any{
		{"catalog": "init"},
		{"catalog": "full", "skip": "eslintPlugin"},
	}
	results := make([]*mcplib.CallToolResult, len(calls))
	errs := make([]error, len(calls))

	var wg sync.WaitGroup
	for i, args := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var req mcplib.CallToolRequest
			req.Params.Name = "automigrate_migrate"
			req.Params.Arguments = args
			results[i], errs[i] = tool.Handler(context.Background(), req)
		}()
	}
	wg.Wait()

	for i := range calls {
		require.NoError(t, errs[i])
		require.False(t, results[i].IsError, text(t, results[i]))
	}

	pkg, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), `"eslint-plugin-storybook"`, "init run edit survives")
	assert.Contains(t, string(pkg), `"storybook": `, "full run edit survives")
	assert.NotContains(t, string(pkg), "start-storybook")

	records, err := history.New().Load(dir)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func copyFixture(t *testing.T, name string) string {
	t.Helper()
	src := filepath.Join("../../../../testdata/projects", name)
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
