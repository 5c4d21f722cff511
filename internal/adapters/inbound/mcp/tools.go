package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/config"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/fixes"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/history"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/logging"
	"github.com/abdidvp/automigrate/internal/adapters/outbound/snapshot"
	"github.com/abdidvp/automigrate/internal/application"
	"github.com/abdidvp/automigrate/internal/domain"
)

// registerTools registers all automigrate MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. automigrate_list_fixes
	s.AddTool(
		mcplib.NewTool("automigrate_list_fixes",
			mcplib.WithDescription("Lists the fixes of a catalog in execution order"),
			mcplib.WithString("catalog", mcplib.Description("Catalog name: full or init (default: full)")),
		),
		handleListFixes(),
	)

	// 2. automigrate_check
	s.AddTool(
		mcplib.NewTool("automigrate_check",
			mcplib.WithDescription("Dry-runs a catalog against the project and returns the run summary with the diff each fix would apply. Nothing is written."),
			mcplib.WithString("catalog", mcplib.Description("Catalog name: full or init (default: full)")),
			mcplib.WithString("skip", mcplib.Description("Comma-separated fix ids to skip")),
		),
		handleRun(projectPath, true),
	)

	// 3. automigrate_migrate
	s.AddTool(
		mcplib.NewTool("automigrate_migrate",
			mcplib.WithDescription("Applies every fix of a catalog that the project needs and returns the run summary. Manual follow-up steps are listed in the summary."),
			mcplib.WithString("catalog", mcplib.Description("Catalog name: full or init (default: full)")),
			mcplib.WithString("skip", mcplib.Description("Comma-separated fix ids to skip")),
			mcplib.WithBoolean("continue", mcplib.Description("Keep running later fixes after one fails")),
		),
		handleRun(projectPath, false),
	)
}

// newService wires the migrate service. Runs started over MCP never prompt.
func newService() *application.MigrateService {
	logger := logging.Discard()
	return application.NewMigrateService(
		config.New(),
		snapshot.New(gitinfo.New()),
		history.New(),
		application.NewRunner(nil, logger),
		logger,
	)
}

func handleListFixes() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, _ := request.GetArguments()["catalog"].(string)
		catalog, err := fixes.ByName(name)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		infos := make([]domain.FixInfo, 0, len(catalog.Fixes))
		for _, f := range catalog.Fixes {
			infos = append(infos, f.Info())
		}
		return jsonResult(infos)
	}
}

func handleRun(projectPath string, dryRun bool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		name, _ := args["catalog"].(string)
		skip, _ := args["skip"].(string)
		cont, _ := args["continue"].(bool)

		catalog, err := fixes.ByName(name)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		opts := domain.RunOptions{
			AssumeYes:         true,
			DryRun:            dryRun,
			ContinueOnFailure: cont,
			Skip:              splitCSV(skip),
		}

		unlock := lockProject(projectPath)
		defer unlock()

		summary, err := newService().Migrate(ctx, projectPath, catalog, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("migration failed: %v", err)), nil
		}
		return jsonResult(summary)
	}
}

// projectLocks holds one mutex per project directory. The stdio server runs
// tool calls on several goroutines; runs against the same project must not
// overlap.
var projectLocks sync.Map

func lockProject(path string) (unlock func()) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	v, _ := projectLocks.LoadOrStore(path, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// jsonResult marshals v as indented JSON into a tool result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result flagged as an error.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
