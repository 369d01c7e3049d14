package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/joseph-ayodele/contract-risk/internal/analyzer"
	"github.com/joseph-ayodele/contract-risk/internal/common"
)

const AnalyzeToolName = "analyze_contract"

// MCPTool exposes the analyzer as a single MCP tool. Callers pass either a
// local path or inline base64 content.
type MCPTool struct {
	svc         Analyzer
	maxFileSize int64
	logger      *slog.Logger
}

func NewMCPTool(svc Analyzer, maxUploadMB int, logger *slog.Logger) *MCPTool {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &MCPTool{svc: svc, maxFileSize: int64(maxUploadMB) << 20, logger: logger}
}

func (t *MCPTool) Tool() mcp.Tool {
	return mcp.NewTool(AnalyzeToolName,
		mcp.WithDescription("Detect risky clauses in a contract (PDF, image or text) and return a risk score, level, summary and clause list as JSON."),
		mcp.WithString("path", mcp.Description("Local path of the contract file")),
		mcp.WithString("content_base64", mcp.Description("Base64 file content, used when path is empty")),
		mcp.WithString("file_name", mcp.Description("File name for content_base64; its extension selects PDF, image or text handling")),
		mcp.WithString("language", mcp.Description("Output language"), mcp.Enum("en", "hi")),
	)
}

// NewMCPServer registers the tool on a fresh MCP server.
func (t *MCPTool) NewMCPServer(version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("contract-risk", version, mcpserver.WithToolCapabilities(false))
	s.AddTool(t.Tool(), t.Handle)
	return s
}

func (t *MCPTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	lang := req.GetString("language", "en")

	name, data, err := t.input(req)
	if err != nil {
		t.logger.Warn("mcp.analyze.bad_input", "req_id", rid, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := t.svc.Analyze(ctx, analyzer.Request{FileName: name, Data: data, Language: lang})
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (t *MCPTool) input(req mcp.CallToolRequest) (string, []byte, error) {
	if path := req.GetString("path", ""); path != "" {
		st, err := os.Stat(path)
		if err != nil {
			return "", nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if st.Size() > t.maxFileSize {
			return "", nil, fmt.Errorf("%s is larger than %d bytes", path, t.maxFileSize)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", path, err)
		}
		return filepath.Base(path), data, nil
	}

	encoded := req.GetString("content_base64", "")
	if encoded == "" {
		return "", nil, fmt.Errorf("one of path or content_base64 is required")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("content_base64: %w", err)
	}
	if int64(len(data)) > t.maxFileSize {
		return "", nil, fmt.Errorf("content is larger than %d bytes", t.maxFileSize)
	}
	return req.GetString("file_name", "contract.txt"), data, nil
}
