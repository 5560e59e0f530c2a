package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", r.Content[0])
	}
	return tc.Text
}

func writeFruitTemplate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "template.toml"), []byte("builtin = \"fruit\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "content"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "content", "fruit.txt"), []byte("{{ .fruit }}"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestHandleValidate_MissingPath(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestHandleValidate(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": writeFruitTemplate(t)}

	result, err := HandleValidate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Errorf("unexpected error: %s", resultText(t, result))
	}
}

func TestHandlePreview(t *testing.T) {
	out := t.TempDir()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": writeFruitTemplate(t), "output": out}

	result, err := HandlePreview(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("preview failed: %s", text)
	}

	var resp struct {
		Actions []string `json:"actions"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, text)
	}
	if len(resp.Actions) != 5 || !strings.HasPrefix(resp.Actions[0], "Copy file fruit.txt to") {
		t.Errorf("actions = %v", resp.Actions)
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("preview wrote %d entries", len(entries))
	}
}

func TestHandleSchema(t *testing.T) {
	result, err := HandleSchema(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError || !strings.Contains(resultText(t, result), "copy-file-to-raw") {
		t.Error("expected run result schema")
	}
}

func TestHandleBuiltins(t *testing.T) {
	result, err := HandleBuiltins(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, result), "http-component") {
		t.Errorf("builtins = %q", resultText(t, result))
	}
}
