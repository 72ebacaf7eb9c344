// Package fetchcache provides incremental, resumable fetching of evidence
// records from remote APIs. Each origin (a chat user, a review repository)
// carries a cache entry recording which time range has already been pulled;
// only the missing sub-ranges are fetched, in bounded slices, with retry and
// backoff. Entries persist across runs through a pluggable Store.
package fetchcache

import (
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Store persists per-origin cache entries. Implementations must make Save
// atomic per origin: a crash mid-save leaves either the old entry or the new
// one, never a torn mix.
type Store interface {
	// Load returns the entry for an origin, or nil when none exists.
	Load(origin string) (*schema.CacheEntry, error)
	// Save replaces the entry for an origin.
	Save(entry *schema.CacheEntry) error
	// Delete removes the entry for an origin. Missing entries are not an error.
	Delete(origin string) error
	// List returns every stored origin name.
	List() ([]string, error)
	// Close releases any underlying resources.
	Close() error
}

// Status summarizes a store's contents for the cache status command.
func Status(store Store, backend string) (*schema.CacheStatus, error) {
	origins, err := store.List()
	if err != nil {
		return nil, err
	}
	status := &schema.CacheStatus{Backend: backend, Origins: len(origins)}
	for _, origin := range origins {
		entry, err := store.Load(origin)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		status.TotalRecords += len(entry.RawRecords)
		if status.OldestCovered.IsZero() || entry.CoveredSince.Before(status.OldestCovered) {
			status.OldestCovered = entry.CoveredSince
		}
		if entry.CoveredUntil.After(status.NewestCovered) {
			status.NewestCovered = entry.CoveredUntil
		}
		if entry.LastFetched.After(status.LastFetched) {
			status.LastFetched = entry.LastFetched
		}
	}
	return status, nil
}

// Clear deletes every entry in the store.
func Clear(store Store) error {
	origins, err := store.List()
	if err != nil {
		return err
	}
	for _, origin := range origins {
		if err := store.Delete(origin); err != nil {
			return err
		}
	}
	return nil
}
