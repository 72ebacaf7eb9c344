// Package schema has configs, models and global variables for all parts of overtime.
package schema

import "time"

// Interval is a half-open time range [Start, End). Zero-length intervals are
// valid; they carry no duration once merged.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsEmpty reports whether the interval has no extent.
func (iv Interval) IsEmpty() bool {
	return !iv.Start.Before(iv.End)
}

// Duration returns the extent of the interval.
func (iv Interval) Duration() time.Duration {
	if iv.IsEmpty() {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Contains reports whether t falls within [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// EvidenceRecord is a normalized, timestamped fact derived from an activity
// source. Records are immutable once created by an adapter.
type EvidenceRecord struct {
	ID        string    `json:"id"`     // Stable identity for deduplication (commit SHA, PR id, message ts)
	Source    Source    `json:"source"` // Which system produced the record
	Origin    string    `json:"origin"` // Repository or channel identity
	Label     string    `json:"label"`  // Human-readable detail for audit notes
	Timestamp time.Time `json:"timestamp"`
	Event     *Interval `json:"event,omitempty"` // Exact bounds, set only for calendar records
}

// IsPoint reports whether the record is point-in-time evidence. Calendar
// records carry a full interval instead and are never clustered.
func (r *EvidenceRecord) IsPoint() bool {
	return r.Event == nil
}

// Note renders the record as a sample note for the daily summary.
func (r *EvidenceRecord) Note() string {
	return "[" + string(r.Source) + "] " + r.Label
}

// Session is a padded interval clustering temporally-close point evidence,
// together with the records that produced it.
type Session struct {
	Interval
	Records []EvidenceRecord
}

// OutsideInterval is an interval known to lie entirely within the complement
// of the day's work schedule, tagged with its contributing records.
type OutsideInterval struct {
	Interval
	Records []EvidenceRecord
}

// DayReport summarizes the overtime evidence for one calendar date.
type DayReport struct {
	Date           time.Time `json:"date"` // Midnight in the configured timezone
	OutsideMinutes int       `json:"outside_minutes"`
	HoursExtra     float64   `json:"hours_extra_estimated"` // Decimal hours, two places
	LunchPenalty   bool      `json:"lunch_penalty_applied"`
	SampleNotes    []string  `json:"sample_notes"` // At most MaxSampleNotes entries
}

// ReportResult bundles everything the reporting layer needs: the granular
// evidence rows, the per-date outside intervals, and the daily summaries.
type ReportResult struct {
	Rows    []EvidenceRecord  `json:"rows"`
	Outside []OutsideInterval `json:"outside"`
	Days    []DayReport       `json:"days"`
}
