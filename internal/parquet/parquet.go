// Package parquet exports overtime evidence and summaries to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// EvidenceRow represents one evidence record in columnar form.
type EvidenceRow struct {
	// ID is the stable record identifier (commit SHA, message ts, PR number)
	ID string `parquet:"id,snappy"`

	// Timestamp is when the activity happened
	Timestamp time.Time `parquet:"timestamp,snappy"`

	// Source names the evidence channel (git, review, calendar, chat)
	Source string `parquet:"source,snappy"`

	// Origin is the repository, channel or calendar the record came from
	Origin string `parquet:"origin,snappy"`

	// Detail is the human-readable description
	Detail string `parquet:"detail,snappy"`

	// EventStart and EventEnd bound interval evidence (nullable for points)
	EventStart *time.Time `parquet:"event_start,optional,snappy"`
	EventEnd   *time.Time `parquet:"event_end,optional,snappy"`
}

// DaySummary represents one day of the overtime report in columnar form.
type DaySummary struct {
	// Date is the civil date in YYYY-MM-DD form
	Date string `parquet:"date,snappy"`

	// Weekday is the day-of-week name
	Weekday string `parquet:"weekday,snappy"`

	// OutsideMinutes is the merged outside-work evidence in whole minutes
	OutsideMinutes int32 `parquet:"outside_minutes,snappy"`

	// HoursExtra is the estimated extra hours, rounded to two decimals
	HoursExtra float64 `parquet:"hours_extra,snappy"`

	// LunchPenalty marks days flagged for a missing lunch break
	LunchPenalty bool `parquet:"lunch_penalty,snappy"`

	// Examples joins the sampled evidence notes with "; "
	Examples string `parquet:"examples,snappy"`
}

// WriteEvidenceParquet writes evidence rows to a Parquet file.
func WriteEvidenceParquet(data []EvidenceRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the EvidenceRow struct tags
	writer := parquet.NewGenericWriter[EvidenceRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteSummaryParquet writes day summaries to a Parquet file.
func WriteSummaryParquet(data []DaySummary, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the DaySummary struct tags
	writer := parquet.NewGenericWriter[DaySummary](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
