package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/calendar"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/chat"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/gitsrc"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/outwriter"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/review"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// ExecutorFunc defines the function signature for executing different report modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// DefaultSources returns every built-in evidence source. Unconfigured
// sources yield nothing, so the full set is always safe to run.
func DefaultSources() []contract.EvidenceSource {
	return []contract.EvidenceSource{
		gitsrc.NewSource(),
		review.NewSource(),
		calendar.NewSource(),
		chat.NewSource(),
	}
}

// ExecuteOvertimeReport runs the full pipeline and prints the per-day
// summary. It serves as the main entry point for the 'report' mode.
func ExecuteOvertimeReport(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := GetReportResults(ctx, cfg, DefaultSources())
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteSummary(result, cfg, duration)
}

// ExecuteOvertimeEvidence runs the full pipeline and prints the raw
// evidence rows behind the estimate. It serves as the main entry point for
// the 'evidence' mode.
func ExecuteOvertimeEvidence(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	result, err := GetReportResults(ctx, cfg, DefaultSources())
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteEvidence(result, cfg, duration)
}

// GetReportResults collects evidence from every source and computes the
// overtime report. The MCP server reuses this to share one code path with
// the CLI.
func GetReportResults(ctx context.Context, cfg *contract.Config, sources []contract.EvidenceSource) (*schema.ReportResult, error) {
	records, err := CollectEvidence(ctx, cfg, sources)
	if err != nil {
		return nil, err
	}
	return ComputeReport(cfg, records), nil
}

// CollectEvidence runs each source in turn and merges their records, sorted
// by timestamp. Sources run sequentially: the remote ones already fan out
// internally across a worker pool.
func CollectEvidence(ctx context.Context, cfg *contract.Config, sources []contract.EvidenceSource) ([]schema.EvidenceRecord, error) {
	var records []schema.EvidenceRecord
	for _, source := range sources {
		batch, err := source.Collect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("collecting %s evidence: %w", source.Name(), err)
		}
		records = append(records, batch...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// ComputeReport turns raw evidence into the final report. It is pure:
// everything it needs arrives through cfg and records, so the same inputs
// always produce the same report.
func ComputeReport(cfg *contract.Config, records []schema.EvidenceRecord) *schema.ReportResult {
	sched := NewSchedule(cfg.Loc, cfg.Windows, cfg.PTODays, BuildHolidayCalendar(cfg.Country))

	var meetings []schema.EvidenceRecord
	for _, r := range records {
		if !r.IsPoint() {
			meetings = append(meetings, r)
		}
	}

	policy := ClusterPolicy{Gap: cfg.SessionGap, PadBefore: cfg.PadBefore, PadAfter: cfg.PadAfter}
	sessions := ClusterSessions(records, policy)
	perDay := ComputeOutside(sched, sessions, meetings)
	penalties := LunchPenalties(sched, sessions, meetings, cfg.LunchBreak)
	days := BuildDayReports(sched, perDay, penalties, cfg.LunchBreak)

	var outside []schema.OutsideInterval
	keys := make([]string, 0, len(perDay))
	for key := range perDay {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		outside = append(outside, perDay[key]...)
	}

	return &schema.ReportResult{Rows: records, Outside: outside, Days: days}
}
