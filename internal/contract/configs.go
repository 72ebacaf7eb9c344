package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Default values for configuration.
const (
	DefaultLookbackDays = 90
	DefaultWorkers      = schema.DefaultFetchWorkers
	DefaultSliceDays    = schema.DefaultSliceDays
	DefaultMaxAttempts  = schema.DefaultMaxAttempts
	DefaultWorkHours    = "09:00-18:00"
)

// DateFormat is the civil date representation used on flags and in reports.
const DateFormat = "2006-01-02"

// DateTimeFormat is the timestamp representation used in report rows.
const DateTimeFormat = "2006-01-02 15:04:05"

// DefaultExcludeSubjects filters out commit subjects that are not evidence of
// actual work (merges, bots, release chores).
const DefaultExcludeSubjects = `(?i)\b(merge pull request|dependabot|bump version|chore:?)\b`

// Config holds the validated runtime configuration for a run. It is built
// once by ProcessAndValidate and passed explicitly through every component;
// there is no ambient lookup.
type Config struct {
	Since time.Time // Inclusive start of the run range (local midnight)
	Until time.Time // Exclusive end of the run range (local midnight after the last day)
	Loc   *time.Location
	TZ    string

	// Git commits
	Emails          []string // Lowercased author emails; empty skips the source
	ReposRoot       string
	ExcludeSubjects *regexp.Regexp

	// Merged reviews
	UseReview       bool
	ReviewUser      string
	ReviewPassword  string
	ReviewWorkspace string
	ReviewRepos     []string
	ReviewBaseURL   string

	// Calendar
	CalendarICS    string
	ExcludedTitles map[string]struct{} // Lowercased titles

	// Chat
	UseChat      bool
	ChatToken    string
	ChatUserIDs  []string
	ChatBaseURL  string
	ForceRefresh bool

	// Fetch cache
	CacheBackend schema.DatabaseBackend
	CacheConnStr string
	CacheDir     string
	Workers      int
	SliceDays    int
	MaxAttempts  int

	// Engine tunables
	SessionGap time.Duration
	PadBefore  time.Duration
	PadAfter   time.Duration
	LunchBreak time.Duration

	// Schedule
	Country     string
	Subdivision string
	PTODays     []time.Time
	Windows     map[time.Weekday][]schema.DayWindow

	// Output
	Output     schema.OutputMode
	OutputFile string
	Width      int
	UseColor   bool
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Emails = append([]string(nil), c.Emails...)
	clone.ReviewRepos = append([]string(nil), c.ReviewRepos...)
	clone.ChatUserIDs = append([]string(nil), c.ChatUserIDs...)
	clone.PTODays = append([]time.Time(nil), c.PTODays...)
	clone.ExcludedTitles = make(map[string]struct{}, len(c.ExcludedTitles))
	for k := range c.ExcludedTitles {
		clone.ExcludedTitles[k] = struct{}{}
	}
	clone.Windows = make(map[time.Weekday][]schema.DayWindow, len(c.Windows))
	for wd, spans := range c.Windows {
		clone.Windows[wd] = append([]schema.DayWindow(nil), spans...)
	}
	return &clone
}

// CloneWithRange creates a copy of the Config with a new run range.
func (c *Config) CloneWithRange(since, until time.Time) *Config {
	clone := c.Clone()
	clone.Since = since
	clone.Until = until
	return clone
}

// ConfigRawInput holds the raw inputs from flags, env and config file that
// require parsing or validation. Viper unmarshals into this struct.
type ConfigRawInput struct {
	SinceStr        string            `mapstructure:"since"`
	UntilStr        string            `mapstructure:"until"`
	Timezone        string            `mapstructure:"timezone"`
	Emails          string            `mapstructure:"emails"`
	ReposRoot       string            `mapstructure:"repos-root"`
	ExcludeSubjects string            `mapstructure:"exclude-subjects"`
	UseReview       bool              `mapstructure:"use-review"`
	ReviewUser      string            `mapstructure:"review-user"`
	ReviewPassword  string            `mapstructure:"review-password"`
	ReviewWorkspace string            `mapstructure:"review-workspace"`
	ReviewRepos     string            `mapstructure:"review-repos"`
	ReviewBaseURL   string            `mapstructure:"review-url"`
	CalendarICS     string            `mapstructure:"calendar-ics"`
	ExcludedTitles  string            `mapstructure:"excluded-titles"`
	UseChat         bool              `mapstructure:"use-chat"`
	ChatToken       string            `mapstructure:"chat-token"`
	ChatUserIDs     string            `mapstructure:"chat-users"`
	ChatBaseURL     string            `mapstructure:"chat-url"`
	ForceRefresh    bool              `mapstructure:"force-refresh"`
	CacheBackend    string            `mapstructure:"cache-backend"`
	CacheConnStr    string            `mapstructure:"cache-db-connect"`
	CacheDir        string            `mapstructure:"cache-dir"`
	Workers         int               `mapstructure:"workers"`
	SliceDays       int               `mapstructure:"slice-days"`
	MaxAttempts     int               `mapstructure:"max-attempts"`
	SessionGap      string            `mapstructure:"session-gap"`
	PadBefore       string            `mapstructure:"pad-before"`
	PadAfter        string            `mapstructure:"pad-after"`
	LunchBreak      string            `mapstructure:"lunch-break"`
	Country         string            `mapstructure:"country"`
	Subdivision     string            `mapstructure:"subdivision"`
	PTODays         string            `mapstructure:"pto"`
	WorkHours       string            `mapstructure:"work-hours"`
	WeekendExtra    bool              `mapstructure:"weekend-extra"`
	Schedule        map[string]string `mapstructure:"schedule"`
	Output          string            `mapstructure:"output"`
	OutputFile      string            `mapstructure:"output-file"`
	Width           int               `mapstructure:"width"`
	Color           string            `mapstructure:"color"`
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Timezone ---
	cfg.TZ = strings.TrimSpace(input.Timezone)
	if cfg.TZ == "" {
		cfg.Loc = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.TZ)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", input.Timezone, err)
		}
		cfg.Loc = loc
	}

	// --- 2. Run range ---
	now := time.Now().In(cfg.Loc)
	untilDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, cfg.Loc)
	sinceDay := untilDay.AddDate(0, 0, -DefaultLookbackDays)
	if input.SinceStr != "" {
		t, err := time.ParseInLocation(DateFormat, input.SinceStr, cfg.Loc)
		if err != nil {
			return fmt.Errorf("invalid since date %q, must be YYYY-MM-DD: %w", input.SinceStr, err)
		}
		sinceDay = t
	}
	if input.UntilStr != "" {
		t, err := time.ParseInLocation(DateFormat, input.UntilStr, cfg.Loc)
		if err != nil {
			return fmt.Errorf("invalid until date %q, must be YYYY-MM-DD: %w", input.UntilStr, err)
		}
		untilDay = t
	}
	if sinceDay.After(untilDay) {
		return fmt.Errorf("since (%s) cannot be after until (%s)", sinceDay.Format(DateFormat), untilDay.Format(DateFormat))
	}
	cfg.Since = sinceDay
	cfg.Until = untilDay.AddDate(0, 0, 1) // half-open: the until day counts in full

	// --- 3. Identity filters ---
	cfg.Emails = splitLower(input.Emails)
	cfg.ChatUserIDs = splitTrim(input.ChatUserIDs)
	cfg.ReviewRepos = splitTrim(input.ReviewRepos)

	pattern := input.ExcludeSubjects
	if pattern == "" {
		pattern = DefaultExcludeSubjects
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid exclude-subjects pattern: %w", err)
	}
	cfg.ExcludeSubjects = re

	cfg.ReposRoot = input.ReposRoot
	cfg.UseReview = input.UseReview
	cfg.ReviewUser = input.ReviewUser
	cfg.ReviewPassword = input.ReviewPassword
	cfg.ReviewWorkspace = input.ReviewWorkspace
	cfg.ReviewBaseURL = input.ReviewBaseURL
	cfg.CalendarICS = input.CalendarICS
	cfg.UseChat = input.UseChat
	cfg.ChatToken = input.ChatToken
	cfg.ChatBaseURL = input.ChatBaseURL
	cfg.ForceRefresh = input.ForceRefresh

	titles := schema.DefaultExcludedTitles
	if input.ExcludedTitles != "" {
		titles = splitTrim(input.ExcludedTitles)
	}
	cfg.ExcludedTitles = make(map[string]struct{}, len(titles))
	for _, t := range titles {
		cfg.ExcludedTitles[strings.ToLower(t)] = struct{}{}
	}

	// --- 4. Fetch cache ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be file, sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, input.CacheConnStr); err != nil {
		return err
	}
	cfg.CacheConnStr = input.CacheConnStr
	cfg.CacheDir = input.CacheDir
	if cfg.CacheDir == "" {
		cfg.CacheDir = GetCacheDirPath()
	}
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers
	if input.SliceDays <= 0 {
		return fmt.Errorf("slice-days must be greater than 0 (received %d)", input.SliceDays)
	}
	cfg.SliceDays = input.SliceDays
	if input.MaxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be greater than 0 (received %d)", input.MaxAttempts)
	}
	cfg.MaxAttempts = input.MaxAttempts

	// --- 5. Engine tunables ---
	if cfg.SessionGap, err = parseDurationOr(input.SessionGap, schema.DefaultSessionGap); err != nil {
		return fmt.Errorf("invalid session-gap: %w", err)
	}
	if cfg.PadBefore, err = parseDurationOr(input.PadBefore, schema.DefaultPadBefore); err != nil {
		return fmt.Errorf("invalid pad-before: %w", err)
	}
	if cfg.PadAfter, err = parseDurationOr(input.PadAfter, schema.DefaultPadAfter); err != nil {
		return fmt.Errorf("invalid pad-after: %w", err)
	}
	if cfg.LunchBreak, err = parseDurationOr(input.LunchBreak, schema.DefaultLunchBreak); err != nil {
		return fmt.Errorf("invalid lunch-break: %w", err)
	}

	// --- 6. Schedule ---
	cfg.Country = input.Country
	cfg.Subdivision = input.Subdivision
	for _, d := range splitTrim(input.PTODays) {
		t, err := time.ParseInLocation(DateFormat, d, cfg.Loc)
		if err != nil {
			LogWarn(fmt.Sprintf("Dropping unparseable PTO date %q", d), err)
			continue
		}
		cfg.PTODays = append(cfg.PTODays, t)
	}
	cfg.Windows, err = buildWindows(input)
	if err != nil {
		return err
	}

	// --- 7. Output ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.UseColor = parseBoolish(input.Color, true)

	return nil
}

// buildWindows assembles the per-weekday schedule from the shared work-hours
// spec, the weekend-extra switch, and any per-weekday overrides. A weekday
// whose spec fails to parse (or whose end is not after its start) resolves to
// an empty day with a warning: fail-safe toward counting as outside-work.
func buildWindows(input *ConfigRawInput) (map[time.Weekday][]schema.DayWindow, error) {
	hours := input.WorkHours
	if hours == "" {
		hours = DefaultWorkHours
	}
	base, err := parseWindowSpec(hours)
	if err != nil {
		return nil, fmt.Errorf("invalid work-hours %q: %w", hours, err)
	}

	windows := make(map[time.Weekday][]schema.DayWindow, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		weekend := wd == time.Saturday || wd == time.Sunday
		if weekend && input.WeekendExtra {
			continue // empty day: weekend hours count entirely as extra
		}
		windows[wd] = base
	}

	for key, spec := range input.Schedule {
		wd, ok := parseWeekday(key)
		if !ok {
			LogWarn(fmt.Sprintf("Ignoring unknown schedule weekday %q", key), nil)
			continue
		}
		if strings.TrimSpace(spec) == "" {
			delete(windows, wd)
			continue
		}
		spans, err := parseWindowSpec(spec)
		if err != nil {
			LogWarn(fmt.Sprintf("Treating %s as a free day: invalid window %q", key, spec), err)
			delete(windows, wd)
			continue
		}
		windows[wd] = spans
	}
	return windows, nil
}

// parseWindowSpec parses "09:00-12:00,13:00-18:00" into day windows. A span
// whose end is not after its start is rejected.
func parseWindowSpec(spec string) ([]schema.DayWindow, error) {
	var spans []schema.DayWindow
	for _, part := range splitTrim(spec) {
		fromTo := strings.SplitN(part, "-", 2)
		if len(fromTo) != 2 {
			return nil, fmt.Errorf("window %q must be HH:MM-HH:MM", part)
		}
		start, err := parseClock(fromTo[0])
		if err != nil {
			return nil, err
		}
		end, err := parseClock(fromTo[1])
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, fmt.Errorf("window %q ends before it starts", part)
		}
		spans = append(spans, schema.DayWindow{StartMin: start, EndMin: end})
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("empty window spec")
	}
	return spans, nil
}

// parseClock converts "HH:MM" to minutes since midnight. "24:00" is allowed
// as an end bound.
func parseClock(s string) (int, error) {
	hm := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(hm) != 2 {
		return 0, fmt.Errorf("clock value %q must be HH:MM", s)
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return h*60 + m, nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s))[:min(3, len(strings.TrimSpace(s)))] {
	case "sun":
		return time.Sunday, true
	case "mon":
		return time.Monday, true
	case "tue":
		return time.Tuesday, true
	case "wed":
		return time.Wednesday, true
	case "thu":
		return time.Thursday, true
	case "fri":
		return time.Friday, true
	case "sat":
		return time.Saturday, true
	}
	return 0, false
}

func parseDurationOr(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration cannot be negative: %s", s)
	}
	return d, nil
}

func parseBoolish(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func splitTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitLower(s string) []string {
	var out []string
	for _, p := range splitTrim(s) {
		out = append(out, strings.ToLower(p))
	}
	return out
}
