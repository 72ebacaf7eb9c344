package core

import (
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// LunchPenalties evaluates the lunch-break heuristic for every date touched
// by a session or calendar interval. A date is penalized when it has
// in-window activity but no free gap of at least minBreak between the first
// and last in-window activity. Calendar events join the occupancy set here
// even though only their outside-window portions count as overtime: meetings
// block lunch without themselves being overtime.
//
// Days with zero in-window activity are never evaluated, so fully-free days
// (PTO, holidays, weekends) cannot trigger the penalty.
func LunchPenalties(sched *Schedule, sessions []schema.Session, calendar []schema.EvidenceRecord, minBreak time.Duration) map[string]bool {
	occupied := make(map[string][]schema.Interval)

	clip := func(iv schema.Interval) {
		for _, seg := range splitByDay(sched, iv) {
			key := DateKey(seg.Start.In(sched.Loc))
			for _, w := range sched.WindowsFor(seg.Start) {
				if hit, ok := Intersect(seg, w); ok {
					occupied[key] = append(occupied[key], hit)
				}
			}
		}
	}

	for _, s := range sessions {
		clip(s.Interval)
	}
	for _, r := range calendar {
		if r.Event != nil {
			clip(*r.Event)
		}
	}

	penalties := make(map[string]bool)
	for key, busy := range occupied {
		merged := Merge(busy)
		if len(merged) == 0 {
			continue
		}
		span := schema.Interval{Start: merged[0].Start, End: merged[len(merged)-1].End}
		if !hasGap(span, merged, minBreak) {
			penalties[key] = true
		}
	}
	return penalties
}

// hasGap reports whether the complement of busy within span contains a free
// interval of at least minBreak.
func hasGap(span schema.Interval, busy []schema.Interval, minBreak time.Duration) bool {
	for _, free := range Subtract(span, busy) {
		if free.Duration() >= minBreak {
			return true
		}
	}
	return false
}
