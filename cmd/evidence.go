package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/core"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
)

// evidenceCmd lists the raw evidence rows behind the estimate.
var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "List the raw evidence rows behind the estimate.",
	Long: `List every timestamped trace the report is built from.

Each row names its source (git, review, calendar, chat), where it came from
(repository, channel, calendar) and a short detail. Use this view to audit a
surprising day in the summary before trusting it.

Examples:
  # Inspect one week in detail
  overtime evidence --since 2026-08-10 --until 2026-08-16

  # Export rows as JSON for further processing
  overtime evidence --output json --output-file evidence.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteOvertimeEvidence(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot collect evidence", err)
		}
	},
}
