package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/core"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
)

// reportCmd computes the per-day overtime summary.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show estimated extra hours per day.",
	Long: `Collect evidence from every configured source and estimate extra hours per day.

Activity traces (commits, merged pull requests, meetings, chat messages) are
clustered into work sessions, intersected with your outside-work time, and
rolled up per day. Days with no extra time are omitted.

A day also gains one extra hour when the evidence shows no hour-long break
within your working hours: back-to-back activity through lunch is time worked.

Examples:
  # Last 90 days with defaults
  overtime report --emails me@example.com --repos-root ~/src

  # A specific month with a calendar and chat evidence
  overtime report --since 2026-07-01 --until 2026-07-31 \
    --calendar-ics calendar.ics --use-chat --chat-users U123ABC

  # Export the summary to CSV for the records
  overtime report --output csv --output-file overtime.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteOvertimeReport(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot build overtime report", err)
		}
	},
}
