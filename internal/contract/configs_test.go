package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// validInput returns a raw input equivalent to the flag defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Timezone:     "UTC",
		Workers:      DefaultWorkers,
		SliceDays:    DefaultSliceDays,
		MaxAttempts:  DefaultMaxAttempts,
		WeekendExtra: true,
		CacheBackend: string(schema.FileBackend),
		Output:       string(schema.TextOut),
		Color:        "yes",
	}
}

func process(t *testing.T, input *ConfigRawInput) *Config {
	t.Helper()
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	return cfg
}

// TestProcessAndValidateRange verifies explicit dates yield a half-open range
// that includes the until day in full.
func TestProcessAndValidateRange(t *testing.T) {
	input := validInput()
	input.SinceStr = "2026-08-01"
	input.UntilStr = "2026-08-14"

	cfg := process(t, input)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), cfg.Since)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), cfg.Until)
}

// TestProcessAndValidateDefaultLookback verifies the default range reaches
// back the standard lookback from today.
func TestProcessAndValidateDefaultLookback(t *testing.T) {
	cfg := process(t, validInput())
	assert.Equal(t, DefaultLookbackDays+1, int(cfg.Until.Sub(cfg.Since).Hours()/24))
	assert.True(t, cfg.Until.After(time.Now().In(cfg.Loc)))
}

// TestProcessAndValidateRejectsReversedRange verifies since after until is an
// error rather than an empty report.
func TestProcessAndValidateRejectsReversedRange(t *testing.T) {
	input := validInput()
	input.SinceStr = "2026-08-14"
	input.UntilStr = "2026-08-01"
	assert.Error(t, ProcessAndValidate(&Config{}, input))
}

// TestProcessAndValidateIdentity verifies email lowering and list splitting.
func TestProcessAndValidateIdentity(t *testing.T) {
	input := validInput()
	input.Emails = " Dev@Example.com , other@example.com ,"
	input.ChatUserIDs = "U123, U456"
	input.ExcludedTitles = "Focus Time, OOO"

	cfg := process(t, input)
	assert.Equal(t, []string{"dev@example.com", "other@example.com"}, cfg.Emails)
	assert.Equal(t, []string{"U123", "U456"}, cfg.ChatUserIDs)
	assert.Contains(t, cfg.ExcludedTitles, "focus time")
	assert.Contains(t, cfg.ExcludedTitles, "ooo")
}

// TestProcessAndValidateExcludeSubjects verifies the default noise filter and
// rejection of a broken pattern.
func TestProcessAndValidateExcludeSubjects(t *testing.T) {
	cfg := process(t, validInput())
	assert.True(t, cfg.ExcludeSubjects.MatchString("Merge pull request #42"))
	assert.True(t, cfg.ExcludeSubjects.MatchString("chore: bump deps"))
	assert.False(t, cfg.ExcludeSubjects.MatchString("fix session clustering"))

	input := validInput()
	input.ExcludeSubjects = "(["
	assert.Error(t, ProcessAndValidate(&Config{}, input))
}

// TestProcessAndValidateTunables verifies duration parsing with defaults and
// the rejection of negatives.
func TestProcessAndValidateTunables(t *testing.T) {
	cfg := process(t, validInput())
	assert.Equal(t, schema.DefaultSessionGap, cfg.SessionGap)
	assert.Equal(t, schema.DefaultPadBefore, cfg.PadBefore)
	assert.Equal(t, schema.DefaultPadAfter, cfg.PadAfter)
	assert.Equal(t, schema.DefaultLunchBreak, cfg.LunchBreak)

	input := validInput()
	input.SessionGap = "30m"
	cfg = process(t, input)
	assert.Equal(t, 30*time.Minute, cfg.SessionGap)

	input = validInput()
	input.PadAfter = "-5m"
	assert.Error(t, ProcessAndValidate(&Config{}, input))
}

// TestProcessAndValidateBackends verifies backend validation and the
// connection string requirement for server databases.
func TestProcessAndValidateBackends(t *testing.T) {
	input := validInput()
	input.CacheBackend = "redis"
	assert.Error(t, ProcessAndValidate(&Config{}, input))

	input = validInput()
	input.CacheBackend = "mysql"
	assert.Error(t, ProcessAndValidate(&Config{}, input)) // missing conn string

	input = validInput()
	input.CacheBackend = "mysql"
	input.CacheConnStr = "root:pw@tcp(localhost:3306)/overtime"
	cfg := process(t, input)
	assert.Equal(t, schema.MySQLBackend, cfg.CacheBackend)
}

// TestProcessAndValidateOutput verifies output mode validation and the color
// switch.
func TestProcessAndValidateOutput(t *testing.T) {
	input := validInput()
	input.Output = "xml"
	assert.Error(t, ProcessAndValidate(&Config{}, input))

	input = validInput()
	input.Output = "JSON"
	input.Color = "off"
	cfg := process(t, input)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.False(t, cfg.UseColor)
}

// TestBuildWindowsWeekendExtra verifies weekends have no windows when weekend
// activity counts entirely as extra, and carry the base hours otherwise.
func TestBuildWindowsWeekendExtra(t *testing.T) {
	cfg := process(t, validInput())
	assert.Empty(t, cfg.Windows[time.Saturday])
	assert.Empty(t, cfg.Windows[time.Sunday])
	require.Len(t, cfg.Windows[time.Monday], 1)
	assert.Equal(t, schema.DayWindow{StartMin: 9 * 60, EndMin: 18 * 60}, cfg.Windows[time.Monday][0])

	input := validInput()
	input.WeekendExtra = false
	cfg = process(t, input)
	require.Len(t, cfg.Windows[time.Saturday], 1)
}

// TestBuildWindowsOverrides verifies per-weekday schedule overrides,
// including split shifts, explicit free days, and the fail-safe for an
// invalid spec.
func TestBuildWindowsOverrides(t *testing.T) {
	input := validInput()
	input.Schedule = map[string]string{
		"friday":    "09:00-12:00,13:00-17:00",
		"wednesday": "",
		"monday":    "18:00-09:00", // invalid: treated as a free day
	}

	cfg := process(t, input)
	require.Len(t, cfg.Windows[time.Friday], 2)
	assert.Equal(t, schema.DayWindow{StartMin: 13 * 60, EndMin: 17 * 60}, cfg.Windows[time.Friday][1])
	assert.Empty(t, cfg.Windows[time.Wednesday])
	assert.Empty(t, cfg.Windows[time.Monday])
	require.Len(t, cfg.Windows[time.Tuesday], 1)
}

// TestProcessAndValidateWorkHours verifies a bad shared work-hours spec is a
// hard error, unlike per-day overrides.
func TestProcessAndValidateWorkHours(t *testing.T) {
	input := validInput()
	input.WorkHours = "9am-6pm"
	assert.Error(t, ProcessAndValidate(&Config{}, input))
}

// TestProcessAndValidatePTO verifies valid PTO dates parse and junk ones are
// dropped instead of failing the run.
func TestProcessAndValidatePTO(t *testing.T) {
	input := validInput()
	input.PTODays = "2026-08-07, not-a-date"

	cfg := process(t, input)
	require.Len(t, cfg.PTODays, 1)
	assert.Equal(t, time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC), cfg.PTODays[0])
}

// TestParseClock verifies clock parsing including the 24:00 end bound.
func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "24:00", want: 1440},
		{in: "24:01", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "12:61", wantErr: true},
		{in: "noon", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

// TestCloneIsDeep verifies mutating a clone leaves the original alone.
func TestCloneIsDeep(t *testing.T) {
	input := validInput()
	input.Emails = "dev@example.com"
	cfg := process(t, input)

	clone := cfg.CloneWithRange(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	clone.Emails[0] = "evil@example.com"
	clone.Windows[time.Monday][0].StartMin = 0

	assert.Equal(t, "dev@example.com", cfg.Emails[0])
	assert.Equal(t, 9*60, cfg.Windows[time.Monday][0].StartMin)
	assert.NotEqual(t, cfg.Since, clone.Since)
}
