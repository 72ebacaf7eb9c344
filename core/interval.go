// Package core has the evidence-to-overtime computation engine. Everything in
// this package is pure and deterministic over its inputs: no I/O, no clocks,
// no locks.
package core

import (
	"sort"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Overlaps reports whether two half-open intervals share any instant.
func Overlaps(a, b schema.Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Intersect returns the overlap of a and b. The second return value is false
// when the intervals are disjoint.
func Intersect(a, b schema.Interval) (schema.Interval, bool) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !start.Before(end) {
		return schema.Interval{}, false
	}
	return schema.Interval{Start: start, End: end}, true
}

// Merge folds a list of intervals into the minimal disjoint sorted
// representation. Intervals that overlap or merely touch are combined; empty
// intervals are dropped. The minimality of the result is load-bearing for the
// no-double-count guarantee in the outside-work calculation.
func Merge(intervals []schema.Interval) []schema.Interval {
	in := make([]schema.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.IsEmpty() {
			in = append(in, iv)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start.Before(in[j].Start) })

	merged := []schema.Interval{in[0]}
	for _, iv := range in[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) { // overlapping or touching
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract returns the portions of a not covered by any of the cutouts.
func Subtract(a schema.Interval, cutouts []schema.Interval) []schema.Interval {
	if a.IsEmpty() {
		return nil
	}
	var out []schema.Interval
	cursor := a.Start
	for _, cut := range Merge(cutouts) {
		if !cut.End.After(cursor) || !cut.Start.Before(a.End) {
			continue
		}
		if cursor.Before(cut.Start) {
			out = append(out, schema.Interval{Start: cursor, End: cut.Start})
		}
		if cut.End.After(cursor) {
			cursor = cut.End
		}
		if !cursor.Before(a.End) {
			return out
		}
	}
	if cursor.Before(a.End) {
		out = append(out, schema.Interval{Start: cursor, End: a.End})
	}
	return out
}

// TotalDuration sums a list of intervals into whole minutes. The input is
// merged first so overlapping intervals contribute each wall-clock minute
// exactly once.
func TotalDuration(intervals []schema.Interval) int {
	var total time.Duration
	for _, iv := range Merge(intervals) {
		total += iv.Duration()
	}
	return int(total / time.Minute)
}
