package core

import (
	"sort"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// ClusterPolicy controls how point evidence is grouped into sessions.
type ClusterPolicy struct {
	Gap       time.Duration // Maximum silence between records in one session
	PadBefore time.Duration // Padding applied once before the first record
	PadAfter  time.Duration // Padding applied once after the last record
}

// DefaultClusterPolicy mirrors the engine defaults.
func DefaultClusterPolicy() ClusterPolicy {
	return ClusterPolicy{
		Gap:       schema.DefaultSessionGap,
		PadBefore: schema.DefaultPadBefore,
		PadAfter:  schema.DefaultPadAfter,
	}
}

// ClusterSessions walks point records in timestamp order and groups them into
// padded sessions. A record extends the current session when its distance to
// the previous record is at most the gap; otherwise the session is closed and
// a new one begins. Padding is applied once per session boundary, regardless
// of how many records the session contains. Non-point records are ignored.
func ClusterSessions(records []schema.EvidenceRecord, policy ClusterPolicy) []schema.Session {
	points := make([]schema.EvidenceRecord, 0, len(records))
	for _, r := range records {
		if r.IsPoint() {
			points = append(points, r)
		}
	}
	if len(points) == 0 {
		return nil
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })

	var sessions []schema.Session
	current := []schema.EvidenceRecord{points[0]}
	for _, r := range points[1:] {
		last := current[len(current)-1].Timestamp
		if r.Timestamp.Sub(last) > policy.Gap {
			sessions = append(sessions, closeSession(current, policy))
			current = nil
		}
		current = append(current, r)
	}
	sessions = append(sessions, closeSession(current, policy))
	return sessions
}

func closeSession(records []schema.EvidenceRecord, policy ClusterPolicy) schema.Session {
	first := records[0].Timestamp
	last := records[len(records)-1].Timestamp
	return schema.Session{
		Interval: schema.Interval{
			Start: first.Add(-policy.PadBefore),
			End:   last.Add(policy.PadAfter),
		},
		Records: records,
	}
}
