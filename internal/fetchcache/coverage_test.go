package fetchcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

// TestMissingRanges covers the coverage arithmetic: what still needs
// fetching given a cached contiguous span.
func TestMissingRanges(t *testing.T) {
	covered := &schema.CacheEntry{Origin: "o", CoveredSince: day(10), CoveredUntil: day(20)}

	tests := []struct {
		name  string
		entry *schema.CacheEntry
		since time.Time
		until time.Time
		want  []Range
	}{
		{
			name:  "nil entry yields full range",
			entry: nil,
			since: day(1), until: day(5),
			want: []Range{{Since: day(1), Until: day(5)}},
		},
		{
			name:  "never fetched yields full range",
			entry: &schema.CacheEntry{Origin: "o"},
			since: day(1), until: day(5),
			want: []Range{{Since: day(1), Until: day(5)}},
		},
		{
			name:  "fully covered yields nothing",
			entry: covered,
			since: day(12), until: day(18),
			want: nil,
		},
		{
			name:  "older gap only",
			entry: covered,
			since: day(5), until: day(15),
			want: []Range{{Since: day(5), Until: day(10)}},
		},
		{
			name:  "newer gap only",
			entry: covered,
			since: day(15), until: day(25),
			want: []Range{{Since: day(20), Until: day(25)}},
		},
		{
			name:  "both sides",
			entry: covered,
			since: day(5), until: day(25),
			want: []Range{{Since: day(5), Until: day(10)}, {Since: day(20), Until: day(25)}},
		},
		{
			name:  "disjoint newer request stretches to meet coverage",
			entry: covered,
			since: day(24), until: day(28),
			want: []Range{{Since: day(20), Until: day(28)}},
		},
		{
			name:  "disjoint older request stretches to meet coverage",
			entry: covered,
			since: day(1), until: day(4),
			want: []Range{{Since: day(1), Until: day(10)}},
		},
		{
			name:  "empty request yields nothing",
			entry: covered,
			since: day(5), until: day(5),
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MissingRanges(tc.entry, tc.since, tc.until))
		})
	}
}

// TestSlices verifies a range splits into ascending chunks with the
// remainder in the last one.
func TestSlices(t *testing.T) {
	out := Slices(Range{Since: day(1), Until: day(31)}, 14)
	require.Len(t, out, 3)
	assert.Equal(t, Range{Since: day(1), Until: day(15)}, out[0])
	assert.Equal(t, Range{Since: day(15), Until: day(29)}, out[1])
	assert.Equal(t, Range{Since: day(29), Until: day(31)}, out[2])
}

// TestSlicesSingle verifies a range shorter than one slice stays whole.
func TestSlicesSingle(t *testing.T) {
	out := Slices(Range{Since: day(1), Until: day(3)}, 14)
	require.Len(t, out, 1)
	assert.Equal(t, Range{Since: day(1), Until: day(3)}, out[0])
}
