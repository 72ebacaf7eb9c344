package core

import (
	"math"
	"sort"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// BuildDayReports reduces the per-day outside intervals and lunch penalties
// into the final ordered daily summaries. Dates with zero outside minutes and
// no penalty are omitted. The lunch penalty adds a fixed block to the day's
// total and its note is always retained, dropping the least-recent evidence
// note when the cap would be exceeded.
func BuildDayReports(sched *Schedule, perDay map[string][]schema.OutsideInterval, penalties map[string]bool, lunch time.Duration) []schema.DayReport {
	keys := make(map[string]struct{}, len(perDay))
	for k := range perDay {
		keys[k] = struct{}{}
	}
	for k := range penalties {
		keys[k] = struct{}{}
	}

	var days []schema.DayReport
	for key := range keys {
		intervals := perDay[key]
		bare := make([]schema.Interval, 0, len(intervals))
		var records []schema.EvidenceRecord
		for _, iv := range intervals {
			bare = append(bare, iv.Interval)
			records = appendRecords(records, iv.Records)
		}

		minutes := TotalDuration(bare)
		penalized := penalties[key]
		if penalized {
			minutes += int(lunch / time.Minute)
		}
		if minutes == 0 && !penalized {
			continue
		}

		date, err := time.ParseInLocation("2006-01-02", key, sched.Loc)
		if err != nil {
			continue // keys are produced by DateKey, this cannot happen
		}

		days = append(days, schema.DayReport{
			Date:           date,
			OutsideMinutes: minutes,
			HoursExtra:     math.Round(float64(minutes)/60.0*100) / 100,
			LunchPenalty:   penalized,
			SampleNotes:    sampleNotes(records, penalized),
		})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// sampleNotes selects at most MaxSampleNotes notes for a day, most recent
// first, ties broken by keeping the earlier record ahead of later selection.
// The lunch note, when present, always leads the list.
func sampleNotes(records []schema.EvidenceRecord, lunch bool) []string {
	sorted := make([]schema.EvidenceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })

	limit := schema.MaxSampleNotes
	if lunch {
		limit--
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	var notes []string
	if lunch {
		notes = append(notes, schema.LunchNote)
	}
	for _, r := range sorted {
		notes = append(notes, r.Note())
	}
	return notes
}
