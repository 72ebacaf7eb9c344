package schema

import "time"

// CacheEntry is the persisted fetch-cache state for one remote origin
// identity (a chat user or channel). Coverage grows only by union; it shrinks
// only when a force-refresh discards the entry.
//
// Invariant: CoveredSince <= CoveredUntil, and every record timestamp falls
// within [CoveredSince, CoveredUntil].
type CacheEntry struct {
	Origin       string           `json:"origin"`
	RawRecords   []EvidenceRecord `json:"raw_records"` // Deduplicated by record ID
	CoveredSince time.Time        `json:"covered_since"`
	CoveredUntil time.Time        `json:"covered_until"`
	LastFetched  time.Time        `json:"last_fetched"`
}

// Covered reports whether the entry already covers the full requested range.
func (e *CacheEntry) Covered(since, until time.Time) bool {
	if e == nil || e.CoveredSince.IsZero() {
		return false
	}
	return !e.CoveredSince.After(since) && !e.CoveredUntil.Before(until)
}

// RecordsWithin returns the cached records whose timestamps fall inside
// [since, until], preserving insertion order.
func (e *CacheEntry) RecordsWithin(since, until time.Time) []EvidenceRecord {
	if e == nil {
		return nil
	}
	var out []EvidenceRecord
	for _, r := range e.RawRecords {
		if r.Timestamp.Before(since) || r.Timestamp.After(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CacheStatus holds inspection data for the `cache status` command.
type CacheStatus struct {
	Backend       string    `json:"backend"`
	Origins       int       `json:"origins"`
	TotalRecords  int       `json:"total_records"`
	OldestCovered time.Time `json:"oldest_covered"`
	NewestCovered time.Time `json:"newest_covered"`
	LastFetched   time.Time `json:"last_fetched"`
}
