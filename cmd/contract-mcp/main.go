package main

import (
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/server"
)

const version = "0.1.0"

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	svc, err := analyzer.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("build analyzer", "error", err)
		os.Exit(1)
	}

	tool := server.NewMCPTool(svc, cfg.Server.MaxUploadMB, logger)
	if err := mcpserver.ServeStdio(tool.NewMCPServer(version)); err != nil {
		logger.Error("mcp serve", "error", err)
		os.Exit(1)
	}
}
