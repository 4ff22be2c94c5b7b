// Package mcpadapter exposes the compliance checker as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

const (
	serverName = "compliance-checker"

	toolCheckCompliance = "check_compliance"
	toolIndexStats      = "index_stats"

	minQueryTextLength = 10
	maxTopK            = 20
)

type Server struct {
	checker ports.ComplianceChecker
	cfg     config.Config
	logger  *slog.Logger
	mcp     *server.MCPServer
}

func NewServer(cfg config.Config, checker ports.ComplianceChecker, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		checker: checker,
		cfg:     cfg,
		logger:  logger,
		mcp:     server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(toolCheckCompliance,
		mcp.WithDescription("Compare a passage against indexed legal documents and report compliance risks grouped by cause."),
		mcp.WithString("query_text", mcp.Required(), mcp.Description("Passage to check, at least 10 characters.")),
		mcp.WithNumber("threshold", mcp.Description("Minimum similarity in [0,1].")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of neighbours, 1 to 20.")),
	), s.handleCheckCompliance)

	s.mcp.AddTool(mcp.NewTool(toolIndexStats,
		mcp.WithDescription("Report the vector index collection name and entry count."),
	), s.handleIndexStats)

	return s
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleCheckCompliance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryTextLength {
		return mcp.NewToolResultError(fmt.Sprintf("query_text must be at least %d characters", minQueryTextLength)), nil
	}

	threshold := req.GetFloat("threshold", s.cfg.ComplianceThreshold)
	if threshold < 0 || threshold > 1 {
		return mcp.NewToolResultError("threshold must be within [0,1]"), nil
	}
	topK := req.GetInt("top_k", s.cfg.ComplianceTopK)
	if topK < 1 || topK > maxTopK {
		return mcp.NewToolResultError(fmt.Sprintf("top_k must be within [1,%d]", maxTopK)), nil
	}

	report, err := s.checker.Check(ctx, query, threshold, topK)
	if err != nil {
		return s.toolError(ctx, toolCheckCompliance, err), nil
	}
	return jsonResult(report)
}

func (s *Server) handleIndexStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.checker.Stats(ctx)
	if err != nil {
		return s.toolError(ctx, toolIndexStats, err), nil
	}
	return jsonResult(stats)
}

// toolError reports a failed call inside the tool result so the client sees
// the error kind instead of a protocol failure.
func (s *Server) toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	kind := domain.KindName(err)
	s.logger.WarnContext(ctx, "mcp_tool_failed", "tool", tool, "kind", kind, "error", err.Error())
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kind, err))
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
