package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fixes"
	"github.com/abdidvp/automigrate/internal/domain"
)

const fixURIPrefix = "automigrate://fixes/"

// registerResources registers all automigrate MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. automigrate://snapshot - what the loader sees
	s.AddResource(
		mcplib.NewResource(
			"automigrate://snapshot",
			"Project Snapshot",
			mcplib.WithResourceDescription("Framework, builder, addons, features and git state detected for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleSnapshotResource(projectPath),
	)

	// 2. automigrate://fixes/{id} - one fix and its verdict for this project
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			fixURIPrefix+"{id}",
			"Fix",
			mcplib.WithTemplateDescription("A fix of the full catalog with its check verdict and pending change for the project"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleFixResource(projectPath),
	)
}

func handleSnapshotResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		snap, _, err := newService().Prepare(projectPath, domain.RunOptions{})
		if err != nil {
			return nil, err
		}
		return jsonContents(request.Params.URI, snap)
	}
}

// fixDetail is the body of a fix resource.
type fixDetail struct {
	domain.FixInfo
	Verdict domain.CheckKind         `json:"verdict"`
	Reason  string                   `json:"reason,omitempty"`
	Prompt  *domain.PromptDescriptor `json:"prompt,omitempty"`
}

func handleFixResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		id := fixID(request)
		if id == "" {
			return nil, fmt.Errorf("fix id is required")
		}

		fix, ok := fixes.AllFixes().Lookup(id)
		if !ok {
			return nil, fmt.Errorf("unknown fix %q", id)
		}

		snap, opts, err := newService().Prepare(projectPath, domain.RunOptions{DryRun: true, AssumeYes: true})
		if err != nil {
			return nil, err
		}

		res, err := fix.Check(ctx, snap, opts)
		if err != nil {
			return nil, &domain.CheckError{FixID: id, Err: err}
		}

		detail := fixDetail{FixInfo: fix.Info(), Verdict: res.Kind, Reason: res.Reason}
		if res.Actionable() {
			p := fix.Describe(res)
			detail.Prompt = &p
		}
		return jsonContents(request.Params.URI, detail)
	}
}

// fixID reads the id matched by the template, falling back to the URI.
func fixID(request mcplib.ReadResourceRequest) string {
	switch v := request.Params.Arguments["id"].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return strings.TrimPrefix(request.Params.URI, fixURIPrefix)
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
