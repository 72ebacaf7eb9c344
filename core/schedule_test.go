package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// TestWindowsForDefaults verifies the default Monday-Friday shift.
func TestWindowsForDefaults(t *testing.T) {
	sched := NewSchedule(time.UTC, nil, nil, nil)

	monday := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	windows := sched.WindowsFor(monday)
	require.Len(t, windows, 1)
	assert.Equal(t, at(9, 0), windows[0].Start)
	assert.Equal(t, at(18, 0), windows[0].End)

	saturday := time.Date(2026, 8, 8, 12, 0, 0, 0, time.UTC)
	assert.Empty(t, sched.WindowsFor(saturday))
}

// TestWindowsForPTO verifies PTO turns a working day fully outside.
func TestWindowsForPTO(t *testing.T) {
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	sched := NewSchedule(time.UTC, nil, []time.Time{monday}, nil)

	assert.Empty(t, sched.WindowsFor(monday.Add(10*time.Hour)))
	outside := sched.OutsideFor(monday)
	require.Len(t, outside, 1)
	assert.Equal(t, sched.DaySpan(monday), outside[0])
}

// TestWindowsForHoliday verifies public holidays behave like PTO.
func TestWindowsForHoliday(t *testing.T) {
	sched := NewSchedule(time.UTC, nil, nil, BuildHolidayCalendar("us"))

	newYear := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC) // a Thursday
	assert.Empty(t, sched.WindowsFor(newYear))

	ordinaryThursday := time.Date(2026, 1, 8, 10, 0, 0, 0, time.UTC)
	assert.Len(t, sched.WindowsFor(ordinaryThursday), 1)
}

// TestBuildHolidayCalendarAustralia verifies the aggregated national set for
// countries where the upstream package only ships per-subdivision lists.
func TestBuildHolidayCalendarAustralia(t *testing.T) {
	c := BuildHolidayCalendar("au")
	require.NotNil(t, c)

	// Australia Day 2026 falls on a Monday.
	actual, observed, _ := c.IsHoliday(time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC))
	assert.True(t, actual || observed)
}

// TestBuildHolidayCalendarUnknownCountry verifies unknown codes disable
// holiday lookup instead of failing.
func TestBuildHolidayCalendarUnknownCountry(t *testing.T) {
	assert.Nil(t, BuildHolidayCalendar(""))
	assert.Nil(t, BuildHolidayCalendar("zz"))
	assert.NotNil(t, BuildHolidayCalendar("de"))
	assert.NotNil(t, BuildHolidayCalendar("uk"))
	assert.NotNil(t, BuildHolidayCalendar("jp"))
}

// TestWindowsForSplitShift verifies multiple windows per day merge cleanly
// and the complement has three pieces.
func TestWindowsForSplitShift(t *testing.T) {
	windows := map[time.Weekday][]schema.DayWindow{
		time.Monday: {{StartMin: 9 * 60, EndMin: 12 * 60}, {StartMin: 13 * 60, EndMin: 18 * 60}},
	}
	sched := NewSchedule(time.UTC, windows, nil, nil)

	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	assert.Len(t, sched.WindowsFor(monday), 2)
	outside := sched.OutsideFor(monday)
	require.Len(t, outside, 3)
	assert.Equal(t, at(12, 0), outside[1].Start)
	assert.Equal(t, at(13, 0), outside[1].End)
}

// TestWindowsForInvalidWindowSkipped verifies an inverted window resolves to
// an empty day rather than a negative interval.
func TestWindowsForInvalidWindowSkipped(t *testing.T) {
	windows := map[time.Weekday][]schema.DayWindow{
		time.Monday: {{StartMin: 18 * 60, EndMin: 9 * 60}},
	}
	sched := NewSchedule(time.UTC, windows, nil, nil)

	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, sched.WindowsFor(monday))
	// The whole day counts as outside-work.
	outside := sched.OutsideFor(monday)
	require.Len(t, outside, 1)
	assert.Equal(t, 24*time.Hour, outside[0].Duration())
}

// TestDaySpanTimezone verifies day boundaries follow the schedule location,
// not UTC.
func TestDaySpanTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	sched := NewSchedule(berlin, nil, nil, nil)

	// 23:30 UTC on Aug 3 is already Aug 4 in Berlin.
	span := sched.DaySpan(time.Date(2026, 8, 3, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 4, 0, 0, 0, 0, berlin), span.Start)
}
