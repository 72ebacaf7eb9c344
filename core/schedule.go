package core

import (
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/au"
	"github.com/rickar/cal/v2/br"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/es"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Schedule resolves the working windows for any date. It combines the
// per-weekday configuration with explicit PTO dates and a public-holiday
// calendar. An empty result means the entire day counts as outside-work.
type Schedule struct {
	Loc      *time.Location
	Windows  map[time.Weekday][]schema.DayWindow
	PTO      map[string]struct{} // Date keys in DateKey form
	Holidays *cal.Calendar       // nil disables holiday lookup
}

// DateKey formats a date the way the PTO set is keyed.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// NewSchedule builds a Schedule from configured windows, PTO dates and an
// optional holiday calendar. A nil windows map selects the defaults.
func NewSchedule(loc *time.Location, windows map[time.Weekday][]schema.DayWindow, pto []time.Time, holidays *cal.Calendar) *Schedule {
	if loc == nil {
		loc = time.Local
	}
	if windows == nil {
		windows = schema.DefaultShiftWindows
	}
	ptoSet := make(map[string]struct{}, len(pto))
	for _, d := range pto {
		ptoSet[DateKey(d.In(loc))] = struct{}{}
	}
	return &Schedule{Loc: loc, Windows: windows, PTO: ptoSet, Holidays: holidays}
}

// auNationalHolidays is the set observed in every Australian state; the au
// package exports only per-subdivision lists.
var auNationalHolidays = []*cal.Holiday{
	au.NewYear,
	au.AustraliaDay,
	au.GoodFriday,
	au.EasterMonday,
	au.AnzacDay,
	au.ChristmasDay,
	au.BoxingDay,
}

// BuildHolidayCalendar returns the national public-holiday calendar for the
// given ISO country code, or nil when the country is unknown or empty.
func BuildHolidayCalendar(country string) *cal.Calendar {
	c := &cal.Calendar{Cacheable: true}
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "AU":
		c.AddHoliday(auNationalHolidays...)
	case "BR":
		c.AddHoliday(br.Holidays...)
	case "CA":
		c.AddHoliday(ca.Holidays...)
	case "DE":
		c.AddHoliday(de.Holidays...)
	case "ES":
		c.AddHoliday(es.Holidays...)
	case "FR":
		c.AddHoliday(fr.Holidays...)
	case "GB", "UK":
		c.AddHoliday(gb.Holidays...)
	case "IT":
		c.AddHoliday(it.Holidays...)
	case "JP":
		c.AddHoliday(jp.Holidays...)
	case "NL":
		c.AddHoliday(nl.Holidays...)
	case "US":
		c.AddHoliday(us.Holidays...)
	default:
		return nil
	}
	return c
}

// DaySpan returns [00:00, 24:00) for the calendar date containing t.
func (s *Schedule) DaySpan(t time.Time) schema.Interval {
	local := t.In(s.Loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.Loc)
	return schema.Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// IsFreeDay reports whether the date is PTO or a public holiday, in which
// case the whole day counts as outside-work.
func (s *Schedule) IsFreeDay(date time.Time) bool {
	local := date.In(s.Loc)
	if _, ok := s.PTO[DateKey(local)]; ok {
		return true
	}
	if s.Holidays != nil {
		actual, observed, _ := s.Holidays.IsHoliday(local)
		return actual || observed
	}
	return false
}

// WindowsFor resolves the concrete working intervals for the date containing
// t. PTO and holidays yield an empty result, as do weekdays with no
// configured window. Windows with end at or before start are skipped; they
// were already flagged during configuration validation.
func (s *Schedule) WindowsFor(t time.Time) []schema.Interval {
	if s.IsFreeDay(t) {
		return nil
	}
	local := t.In(s.Loc)
	midnight := s.DaySpan(local).Start
	var out []schema.Interval
	for _, w := range s.Windows[local.Weekday()] {
		if w.EndMin <= w.StartMin {
			continue
		}
		out = append(out, schema.Interval{
			Start: midnight.Add(time.Duration(w.StartMin) * time.Minute),
			End:   midnight.Add(time.Duration(w.EndMin) * time.Minute),
		})
	}
	return Merge(out)
}

// OutsideFor returns the complement of the working windows within the full
// day span of the date containing t.
func (s *Schedule) OutsideFor(t time.Time) []schema.Interval {
	return Subtract(s.DaySpan(t), s.WindowsFor(t))
}
