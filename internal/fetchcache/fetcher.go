package fetchcache

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Page is one page of results from a remote search API.
type Page struct {
	Records    []schema.EvidenceRecord
	NextCursor string // empty when this is the last page
}

// PageClient fetches one page of records for an origin within a time range.
// Implementations wrap a specific remote API (chat search, review API).
type PageClient interface {
	Search(ctx context.Context, origin string, r Range, cursor string) (Page, error)
}

// RateLimitError signals that the remote asked us to wait before retrying.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.Wait)
}

// Result holds the outcome of a FetchAll run. Incomplete lists origins whose
// requested range could not be fully covered; their cached records are still
// included, so a flaky remote degrades the report instead of killing it.
type Result struct {
	Records    []schema.EvidenceRecord
	Incomplete []string
}

// Fetcher pulls records for a set of origins, reusing cached coverage and
// fetching only the missing sub-ranges. Origins fan out across a bounded
// worker pool; within an origin, slices and pages run sequentially so
// coverage stays a contiguous interval.
type Fetcher struct {
	Store        Store
	Client       PageClient
	Workers      int
	SliceDays    int
	MaxAttempts  int
	ForceRefresh bool

	// Sleep and Seed are injectable for tests. Sleep defaults to a
	// context-aware wait; Seed of zero derives from the clock.
	Sleep func(ctx context.Context, d time.Duration) error
	Seed  int64
}

// NewFetcher returns a Fetcher with defaults filled in.
func NewFetcher(store Store, client PageClient, cfg FetchConfig) *Fetcher {
	return &Fetcher{
		Store:        store,
		Client:       client,
		Workers:      cfg.Workers,
		SliceDays:    cfg.SliceDays,
		MaxAttempts:  cfg.MaxAttempts,
		ForceRefresh: cfg.ForceRefresh,
	}
}

// FetchConfig carries the fetch tunables from the main configuration.
type FetchConfig struct {
	Workers      int
	SliceDays    int
	MaxAttempts  int
	ForceRefresh bool
}

// FetchAll fetches records for every origin over [since, until) and returns
// the union of cached and freshly fetched records within that range, sorted
// by timestamp. Only a context cancellation or a store failure is fatal;
// remote errors exhaust their retries and land in Result.Incomplete.
func (f *Fetcher) FetchAll(ctx context.Context, origins []string, since, until time.Time) (*Result, error) {
	workers := f.Workers
	if workers <= 0 {
		workers = schema.DefaultFetchWorkers
	}
	if workers > len(origins) {
		workers = len(origins)
	}

	var (
		mu     sync.Mutex
		result Result
		runErr error
	)
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for origin := range jobs {
				records, complete, err := f.fetchOrigin(ctx, origin, since, until, rng)
				mu.Lock()
				if err != nil && runErr == nil {
					runErr = err
				}
				result.Records = append(result.Records, records...)
				if !complete {
					result.Incomplete = append(result.Incomplete, origin)
				}
				mu.Unlock()
			}
		}(f.seed() + int64(i))
	}
	for _, origin := range origins {
		jobs <- origin
	}
	close(jobs)
	wg.Wait()

	if runErr != nil {
		return nil, runErr
	}
	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Timestamp.Before(result.Records[j].Timestamp)
	})
	sort.Strings(result.Incomplete)
	return &result, nil
}

// fetchOrigin brings one origin's coverage up to the requested range and
// returns the records within it. complete reports whether every missing
// slice succeeded.
func (f *Fetcher) fetchOrigin(ctx context.Context, origin string, since, until time.Time, rng *rand.Rand) (records []schema.EvidenceRecord, complete bool, err error) {
	var entry *schema.CacheEntry
	if !f.ForceRefresh {
		entry, err = f.Store.Load(origin)
		if err != nil {
			return nil, false, fmt.Errorf("loading cache entry for %s: %w", origin, err)
		}
	}
	if entry == nil {
		entry = &schema.CacheEntry{Origin: origin}
	}

	complete = true
	for _, gap := range MissingRanges(entry, since, until) {
		older := !entry.CoveredUntil.IsZero() && !gap.Until.After(entry.CoveredSince)
		slices := Slices(gap, f.sliceDays())
		if older {
			// Walk the older gap newest-first so each success extends
			// CoveredSince without leaving a hole.
			for i, j := 0, len(slices)-1; i < j; i, j = i+1, j-1 {
				slices[i], slices[j] = slices[j], slices[i]
			}
		}
		for _, slice := range slices {
			fresh, err := f.fetchSlice(ctx, origin, slice, rng)
			if err != nil {
				if ctx.Err() != nil {
					return nil, false, ctx.Err()
				}
				complete = false
				break // stop extending in this direction past a failed slice
			}
			mergeRecords(entry, fresh)
			if entry.CoveredUntil.IsZero() {
				entry.CoveredSince = slice.Since
				entry.CoveredUntil = slice.Until
			} else if older {
				entry.CoveredSince = slice.Since
			} else {
				entry.CoveredUntil = slice.Until
			}
			entry.LastFetched = time.Now()
			if err := f.Store.Save(entry); err != nil {
				return nil, false, fmt.Errorf("saving cache entry for %s: %w", origin, err)
			}
		}
	}
	return entry.RecordsWithin(since, until), complete, nil
}

// fetchSlice pages through one time slice. The attempt counter resets on any
// successful page, so a long but steady pagination never exhausts retries.
func (f *Fetcher) fetchSlice(ctx context.Context, origin string, slice Range, rng *rand.Rand) ([]schema.EvidenceRecord, error) {
	maxAttempts := f.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = schema.DefaultMaxAttempts
	}

	var records []schema.EvidenceRecord
	cursor := ""
	attempts := 0
	for {
		page, err := f.Client.Search(ctx, origin, slice, cursor)
		if err != nil {
			attempts++
			if attempts >= maxAttempts {
				return nil, fmt.Errorf("giving up on %s after %d attempts: %w", origin, attempts, err)
			}
			delay := BackoffDelay(attempts)
			if rlErr, ok := err.(*RateLimitError); ok {
				delay = rlErr.Wait
			}
			if err := f.sleep(ctx, delay+Jitter(rng)); err != nil {
				return nil, err
			}
			continue
		}
		attempts = 0
		records = append(records, page.Records...)
		if page.NextCursor == "" {
			return records, nil
		}
		cursor = page.NextCursor
	}
}

func (f *Fetcher) sliceDays() int {
	if f.SliceDays > 0 {
		return f.SliceDays
	}
	return schema.DefaultSliceDays
}

func (f *Fetcher) seed() int64 {
	if f.Seed != 0 {
		return f.Seed
	}
	return time.Now().UnixNano()
}

func (f *Fetcher) sleep(ctx context.Context, d time.Duration) error {
	if f.Sleep != nil {
		return f.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// mergeRecords folds freshly fetched records into the entry, deduplicating
// by record ID. Overlapping fetches (a re-fetched boundary page) must not
// double-count evidence.
func mergeRecords(entry *schema.CacheEntry, fresh []schema.EvidenceRecord) {
	seen := make(map[string]struct{}, len(entry.RawRecords))
	for _, r := range entry.RawRecords {
		seen[r.ID] = struct{}{}
	}
	for _, r := range fresh {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		entry.RawRecords = append(entry.RawRecords, r)
	}
}
