// Package calendar collects meeting evidence from an ICS calendar export.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Source parses scheduled meetings out of an ICS file or URL. Meetings are
// interval evidence: they occupy their whole span rather than a single
// instant.
type Source struct{}

var _ contract.EvidenceSource = &Source{} // Compile-time check

// NewSource creates a calendar source.
func NewSource() *Source {
	return &Source{}
}

// Name implements the EvidenceSource interface.
func (s *Source) Name() schema.Source {
	return schema.CalendarSource
}

// Collect implements the EvidenceSource interface.
func (s *Source) Collect(ctx context.Context, cfg *contract.Config) ([]schema.EvidenceRecord, error) {
	if cfg.CalendarICS == "" {
		return nil, nil
	}
	body, err := readICS(ctx, cfg.CalendarICS)
	if err != nil {
		return nil, fmt.Errorf("reading calendar %s: %w", cfg.CalendarICS, err)
	}
	defer func() { _ = body.Close() }()

	cal, err := ics.ParseCalendar(body)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar %s: %w", cfg.CalendarICS, err)
	}
	return eventsToRecords(cal, cfg), nil
}

// readICS opens the calendar source, which may be a local file or a URL
// (a published calendar feed).
func readICS(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("calendar feed returned %d", resp.StatusCode)
		}
		return resp.Body, nil
	}
	return os.Open(source)
}

// eventsToRecords converts calendar events within the run range into
// evidence records. All-day events and excluded titles (PTO blocks, "Out of
// office") are skipped: they describe absence, not work.
func eventsToRecords(cal *ics.Calendar, cfg *contract.Config) []schema.EvidenceRecord {
	var records []schema.EvidenceRecord
	for _, event := range cal.Events() {
		startProp := event.GetProperty(ics.ComponentPropertyDtStart)
		endProp := event.GetProperty(ics.ComponentPropertyDtEnd)
		if startProp == nil || endProp == nil {
			continue
		}
		if isAllDay(startProp) {
			continue
		}
		title := ""
		if p := event.GetProperty(ics.ComponentPropertySummary); p != nil {
			title = p.Value
		}
		if _, excluded := cfg.ExcludedTitles[strings.ToLower(strings.TrimSpace(title))]; excluded {
			continue
		}
		start, err := parseICSTime(startProp, cfg.Loc)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Dropping event %q with unparseable start", title), err)
			continue
		}
		end, err := parseICSTime(endProp, cfg.Loc)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Dropping event %q with unparseable end", title), err)
			continue
		}
		if !end.After(start) {
			continue
		}
		// Clamp to the run range; events fully outside it vanish.
		if !start.Before(cfg.Until) || !end.After(cfg.Since) {
			continue
		}
		if start.Before(cfg.Since) {
			start = cfg.Since
		}
		if end.After(cfg.Until) {
			end = cfg.Until
		}
		records = append(records, schema.EvidenceRecord{
			ID:        startProp.Value + "|" + title,
			Source:    schema.CalendarSource,
			Origin:    "calendar",
			Label:     "Meeting: " + title,
			Timestamp: start,
			Event:     &schema.Interval{Start: start, End: end},
		})
	}
	return records
}

// isAllDay reports whether a DTSTART property carries VALUE=DATE, the ICS
// marker for all-day events.
func isAllDay(prop *ics.IANAProperty) bool {
	for _, v := range prop.ICalParameters["VALUE"] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	// A bare 8-digit value is a date too, some exporters omit the parameter.
	return len(prop.Value) == 8 && !strings.Contains(prop.Value, "T")
}

// icsLayouts covers UTC, zoned and floating DATE-TIME values.
var icsLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
}

// parseICSTime parses a DATE-TIME property value. A trailing Z means UTC, a
// TZID parameter names the zone, and a floating time lands in the run's
// location.
func parseICSTime(prop *ics.IANAProperty, loc *time.Location) (time.Time, error) {
	value := prop.Value
	if strings.HasSuffix(value, "Z") {
		return time.Parse(icsLayouts[0], value)
	}
	zone := loc
	if tzids := prop.ICalParameters["TZID"]; len(tzids) > 0 {
		if parsed, err := time.LoadLocation(tzids[0]); err == nil {
			zone = parsed
		}
	}
	return time.ParseInLocation(icsLayouts[1], value, zone)
}
