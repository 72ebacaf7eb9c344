// Package contract provides interfaces and shared utilities for the overtime
// CLI's internal architecture.
package contract

import (
	"context"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// EvidenceSource defines one upstream system that yields normalized evidence
// records. Sources perform all I/O and filtering themselves; the computation
// engine only ever sees validated, in-memory records.
type EvidenceSource interface {
	// Name identifies the source kind for logging and reporting.
	Name() schema.Source

	// Collect gathers all evidence records within the configured run range.
	// A source that is not configured returns a nil slice and no error.
	Collect(ctx context.Context, cfg *Config) ([]schema.EvidenceRecord, error)
}
