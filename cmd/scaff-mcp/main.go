// Package main provides the scaff-mcp binary, an MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ormasoftchile/scaff/pkg/config"
	"github.com/ormasoftchile/scaff/pkg/logging"
	smcp "github.com/ormasoftchile/scaff/pkg/mcp"
)

var version = "dev"

func main() {
	// stdout carries the protocol; logs go to stderr only.
	if cfg, err := config.Load(""); err == nil {
		_, _ = logging.Init("scaff-mcp", logging.Options{Level: cfg.LogLevel, Format: "json"})
	}

	s := smcp.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
