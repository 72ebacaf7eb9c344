package fetchcache

import (
	"math/rand"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// BackoffDelay returns the base delay before retry number attempt (1-based):
// 1s, 2s, 4s, 8s, 16s, then capped at 30s.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		// 2^(n-1) would overflow quickly; anything past the cap is the cap.
		return schema.BackoffCap
	}
	d := schema.BackoffBase << (attempt - 1)
	if d > schema.BackoffCap {
		return schema.BackoffCap
	}
	return d
}

// Jitter returns a random delay in [0, schema.JitterSpan) drawn from rng.
// Spreading retries avoids synchronized hammering when several workers hit
// the same rate limit.
func Jitter(rng *rand.Rand) time.Duration {
	return time.Duration(rng.Int63n(int64(schema.JitterSpan)))
}
