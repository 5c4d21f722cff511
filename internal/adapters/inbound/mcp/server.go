package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewAutomigrateMCPServer creates a new MCP server with all automigrate tools
// and resources registered. The projectPath is the root directory of the
// Storybook project to migrate.
func NewAutomigrateMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"automigrate",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
