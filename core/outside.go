package core

import (
	"sort"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// ComputeOutside intersects padded sessions and exact calendar intervals with
// the complement of each day's work schedule. The result is keyed by DateKey
// and each day's intervals are merged into the minimal disjoint form, so two
// evidence sources covering the same wall-clock minute contribute that minute
// once. Calendar records use their own precise bounds rather than session
// padding.
func ComputeOutside(sched *Schedule, sessions []schema.Session, calendar []schema.EvidenceRecord) map[string][]schema.OutsideInterval {
	perDay := make(map[string][]schema.OutsideInterval)

	add := func(iv schema.Interval, records []schema.EvidenceRecord) {
		for _, seg := range splitByDay(sched, iv) {
			key := DateKey(seg.Start.In(sched.Loc))
			for _, out := range sched.OutsideFor(seg.Start) {
				if hit, ok := Intersect(seg, out); ok {
					perDay[key] = append(perDay[key], schema.OutsideInterval{Interval: hit, Records: records})
				}
			}
		}
	}

	for _, s := range sessions {
		add(s.Interval, s.Records)
	}
	for _, r := range calendar {
		if r.Event == nil {
			continue
		}
		add(*r.Event, []schema.EvidenceRecord{r})
	}

	for key, intervals := range perDay {
		perDay[key] = mergeTagged(intervals)
	}
	return perDay
}

// splitByDay clips an interval into per-date segments in the schedule's
// timezone, so each segment can be intersected with its own day complement.
func splitByDay(sched *Schedule, iv schema.Interval) []schema.Interval {
	if iv.IsEmpty() {
		return nil
	}
	var segments []schema.Interval
	cursor := iv.Start
	for cursor.Before(iv.End) {
		day := sched.DaySpan(cursor)
		seg, ok := Intersect(iv, day)
		if ok {
			segments = append(segments, seg)
		}
		cursor = day.End
	}
	return segments
}

// mergeTagged merges overlapping or touching tagged intervals, carrying the
// union of their contributing records (deduplicated by record ID).
func mergeTagged(intervals []schema.OutsideInterval) []schema.OutsideInterval {
	var in []schema.OutsideInterval
	for _, iv := range intervals {
		if !iv.IsEmpty() {
			in = append(in, iv)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start.Before(in[j].Start) })

	merged := []schema.OutsideInterval{{Interval: in[0].Interval, Records: appendRecords(nil, in[0].Records)}}
	for _, iv := range in[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			last.Records = appendRecords(last.Records, iv.Records)
			continue
		}
		merged = append(merged, schema.OutsideInterval{Interval: iv.Interval, Records: appendRecords(nil, iv.Records)})
	}
	return merged
}

func appendRecords(dst, src []schema.EvidenceRecord) []schema.EvidenceRecord {
	seen := make(map[string]struct{}, len(dst))
	for _, r := range dst {
		seen[r.ID] = struct{}{}
	}
	for _, r := range src {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		dst = append(dst, r)
	}
	return dst
}
