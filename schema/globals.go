package schema

import "time"

// Tunable defaults for the computation engine.
const (
	DefaultSessionGap = 45 * time.Minute
	DefaultPadBefore  = 10 * time.Minute
	DefaultPadAfter   = 15 * time.Minute
	DefaultLunchBreak = 60 * time.Minute

	// MaxSampleNotes caps the evidence notes carried per day in summaries.
	MaxSampleNotes = 5

	// LunchNote is the fixed note attached when the lunch penalty applies.
	LunchNote = "[lunch] no 60m break (+1h)"
)

// Tunable defaults for the incremental fetch cache.
const (
	DefaultFetchWorkers = 4
	DefaultSliceDays    = 14 // Date-sliced fetch window, bounds per-request payload
	DefaultMaxAttempts  = 5
	DefaultPageSize     = 100

	BackoffBase = 1 * time.Second
	BackoffCap  = 30 * time.Second
	JitterSpan  = 500 * time.Millisecond
)

// DayWindow is a working window expressed as minutes since local midnight.
// End is exclusive, matching the half-open interval convention.
type DayWindow struct {
	StartMin int
	EndMin   int
}

// DefaultShiftWindows is the Mon-Fri 09:00-18:00 schedule used when no
// per-weekday configuration is provided. Weekends default to empty so that
// weekend activity counts entirely as extra.
var DefaultShiftWindows = map[time.Weekday][]DayWindow{
	time.Monday:    {{StartMin: 9 * 60, EndMin: 18 * 60}},
	time.Tuesday:   {{StartMin: 9 * 60, EndMin: 18 * 60}},
	time.Wednesday: {{StartMin: 9 * 60, EndMin: 18 * 60}},
	time.Thursday:  {{StartMin: 9 * 60, EndMin: 18 * 60}},
	time.Friday:    {{StartMin: 9 * 60, EndMin: 18 * 60}},
}

// DefaultExcludedTitles are calendar event titles that never count as
// activity evidence (case-insensitive match).
var DefaultExcludedTitles = []string{"Out of office", "PTO", "OOO"}
