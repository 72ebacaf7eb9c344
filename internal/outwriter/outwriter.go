// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints the per-day overtime summary using the configured output format.
func (ow *OutWriter) WriteSummary(result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	return PrintSummary(result, cfg, duration)
}

// WriteEvidence prints the raw evidence rows using the configured output format.
func (ow *OutWriter) WriteEvidence(result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	return PrintEvidence(result, cfg, duration)
}
