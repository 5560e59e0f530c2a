package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/ormasoftchile/scaff/pkg/scaffold"
	"github.com/ormasoftchile/scaff/pkg/templates"
)

// HandleValidate implements the scaff/validate MCP tool.
func HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	m, err := scaffold.LoadManifest(path)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if err := m.CheckHostVersion(scaffold.HostVersion); err != nil {
		return errorResult(err.Error()), nil
	}
	if m.Builtin != "" {
		if _, ok := templates.Lookup(m.Builtin); !ok {
			return errorResult(fmt.Sprintf("unknown builtin template %q", m.Builtin)), nil
		}
		return textResult(fmt.Sprintf("✓ builtin template %s is valid", m.Builtin)), nil
	}
	return textResult(fmt.Sprintf("✓ plugin template %s is valid (%d filters)", m.Template, len(m.Filters))), nil
}

// HandlePreview implements the scaff/preview MCP tool. It always runs dry
// and answers every prompt with its default.
func HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}
	output, _ := args["output"].(string)
	if output == "" {
		output = "."
	}
	addTo, _ := args["add_to"].(string)

	vars := make(map[string]string)
	if rawVars, ok := args["vars"].(map[string]any); ok {
		for k, v := range rawVars {
			vars[k] = fmt.Sprint(v)
		}
	}

	m, err := scaffold.LoadManifest(path)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	var preview bytes.Buffer
	outcome, err := (&scaffold.Runner{}).Run(ctx, scaffold.Config{
		Manifest:    m,
		OutputDir:   output,
		AddTo:       addTo,
		DryRun:      true,
		UseDefaults: true,
		Variables:   vars,
		Preview:     &preview,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("preview: %s", err)), nil
	}

	response := map[string]any{
		"run_id":    outcome.RunID,
		"cancelled": outcome.Cancelled,
		"actions":   describeActions(outcome.Actions),
	}
	data, _ := json.MarshalIndent(response, "", "  ")
	return textResult(string(data)), nil
}

// HandleSchema implements the scaff/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := plugin.GenerateRunResultSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleBuiltins implements the scaff/builtins MCP tool.
func HandleBuiltins(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(strings.Join(templates.Names(), "\n")), nil
}

func describeActions(actions []plugin.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.String()
	}
	return out
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
