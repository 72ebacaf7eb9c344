package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/core"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// applyRangeArgs overrides a cloned config's run range and timezone from
// tool arguments.
func applyRangeArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if tz := request.GetString("timezone", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		cfg.Loc = loc
		cfg.TZ = tz
	}
	if s := request.GetString("since", ""); s != "" {
		t, err := time.ParseInLocation(contract.DateFormat, s, cfg.Loc)
		if err != nil {
			return fmt.Errorf("invalid since date %q: %w", s, err)
		}
		cfg.Since = t
	}
	if u := request.GetString("until", ""); u != "" {
		t, err := time.ParseInLocation(contract.DateFormat, u, cfg.Loc)
		if err != nil {
			return fmt.Errorf("invalid until date %q: %w", u, err)
		}
		cfg.Until = t.AddDate(0, 0, 1)
	}
	if !cfg.Since.Before(cfg.Until) {
		return fmt.Errorf("since must be before until")
	}
	return nil
}

func (h *toolHandler) handleGetOvertimeReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyRangeArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}

	result, err := core.GetReportResults(ctx, cfg, core.DefaultSources())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result.Days, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetEvidenceRows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyRangeArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid evidence parameters: %v", err)), nil
	}

	result, err := core.GetReportResults(ctx, cfg, core.DefaultSources())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evidence collection failed: %v", err)), nil
	}

	rows := result.Rows
	if src := request.GetString("source", ""); src != "" {
		filtered := make([]schema.EvidenceRecord, 0, len(rows))
		for _, r := range rows {
			if string(r.Source) == src {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	jsonData, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
