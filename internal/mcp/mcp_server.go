// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
)

// NewMCPServer initializes and configures the overtime MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Overtime Evidence Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: get_overtime_report ---
	s.AddTool(mcp.NewTool("get_overtime_report",
		mcp.WithDescription("Estimate extra hours worked per day from commit, review, calendar and chat evidence."),
		mcp.WithString("since", mcp.Description("Start date (YYYY-MM-DD). Defaults to the configured lookback.")),
		mcp.WithString("until", mcp.Description("End date (YYYY-MM-DD), inclusive. Defaults to today.")),
		mcp.WithString("timezone", mcp.Description("IANA timezone for day boundaries (e.g. Europe/Berlin).")),
	), h.handleGetOvertimeReport)

	// --- 2. Tool: get_evidence_rows ---
	s.AddTool(mcp.NewTool("get_evidence_rows",
		mcp.WithDescription("List the raw evidence rows (commits, merged PRs, meetings, messages) behind the overtime estimate."),
		mcp.WithString("since", mcp.Description("Start date (YYYY-MM-DD).")),
		mcp.WithString("until", mcp.Description("End date (YYYY-MM-DD), inclusive.")),
		mcp.WithString("source", mcp.Description("Restrict to one evidence source."), mcp.Enum("git", "review", "calendar", "chat")),
	), h.handleGetEvidenceRows)

	return s
}

// StartMCPServer starts the overtime MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
