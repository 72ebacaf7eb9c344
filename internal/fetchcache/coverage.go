package fetchcache

import (
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Range is a half-open time range [Since, Until) that still needs fetching.
type Range struct {
	Since time.Time
	Until time.Time
}

// MissingRanges compares a requested range against an entry's covered range
// and returns the sub-ranges that still need fetching. Coverage is a single
// contiguous interval, so at most two ranges come back: one older than the
// covered span and one newer. A nil entry (or one that never fetched) yields
// the full requested range.
func MissingRanges(entry *schema.CacheEntry, since, until time.Time) []Range {
	if !until.After(since) {
		return nil
	}
	if entry == nil || entry.CoveredUntil.IsZero() || !entry.CoveredUntil.After(entry.CoveredSince) {
		return []Range{{Since: since, Until: until}}
	}
	// A request disjoint from the covered span falls out naturally: the
	// missing range is stretched to meet coverage, keeping it contiguous.
	var missing []Range
	if since.Before(entry.CoveredSince) {
		missing = append(missing, Range{Since: since, Until: entry.CoveredSince})
	}
	if until.After(entry.CoveredUntil) {
		missing = append(missing, Range{Since: entry.CoveredUntil, Until: until})
	}
	return missing
}

// Slices splits a range into sub-ranges of at most sliceDays days each,
// in ascending order.
func Slices(r Range, sliceDays int) []Range {
	if sliceDays < 1 {
		sliceDays = 1
	}
	var out []Range
	for cursor := r.Since; cursor.Before(r.Until); {
		next := cursor.AddDate(0, 0, sliceDays)
		if next.After(r.Until) {
			next = r.Until
		}
		out = append(out, Range{Since: cursor, Until: next})
		cursor = next
	}
	return out
}
