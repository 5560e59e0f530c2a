// Package mcp exposes scaff to AI agents as an MCP tool server. Agents can
// validate and preview templates; nothing served here writes to disk.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with the scaff tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"scaff",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("scaff/validate",
			mcp.WithDescription("Validate a scaff template manifest (template.toml)"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to template.toml or the directory holding it")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("scaff/preview",
			mcp.WithDescription("Dry-run a template with default answers and list the actions it would perform"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to template.toml or the directory holding it")),
			mcp.WithString("output", mcp.Description("Output directory the run would target (default '.')")),
			mcp.WithString("add_to", mcp.Description("Existing application manifest, for add-to runs")),
			mcp.WithObject("vars", mcp.Description("Variables to set, as a string map")),
		),
		HandlePreview,
	)

	s.AddTool(
		mcp.NewTool("scaff/schema",
			mcp.WithDescription("Export the JSON Schema of a template run result"),
		),
		HandleSchema,
	)

	s.AddTool(
		mcp.NewTool("scaff/builtins",
			mcp.WithDescription("List the templates compiled into scaff"),
		),
		HandleBuiltins,
	)

	return s
}
