package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Severity label constants for daily extra hours.
const (
	CriticalValue = "Critical" // Critical value
	HighValue     = "High"     // High value
	ModerateValue = "Moderate" // Moderate value
	LowValue      = "Low"      // Low value
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// GetPlainLabel returns a plain text label indicating how heavy a day's
// estimated extra hours are. This is the core logic used for CSV, JSON,
// and table printing.
func GetPlainLabel(hours float64) string {
	switch {
	case hours >= 4:
		return CriticalValue
	case hours >= 2:
		return HighValue
	case hours >= 1:
		return ModerateValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(hours float64) string {
	text := GetPlainLabel(hours)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateDetail truncates an evidence detail to a maximum width with an
// ellipsis suffix. Requires maxWidth > 3 to leave room for the ellipsis.
func TruncateDetail(detail string, maxWidth int) string {
	runes := []rune(detail)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return detail
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogNotice logs an informational message to stderr, keeping stdout clean
// for report output.
func LogNotice(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "Notice %s\n", msg)
}

// ProfileConfig holds profiling configuration.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig enables profiling when a file prefix was provided.
func ProcessProfilingConfig(profile *ProfileConfig, prefix string) {
	profile.Prefix = strings.TrimSpace(prefix)
	profile.Enabled = profile.Prefix != ""
}

// GetCacheDirPath returns the directory holding per-origin fetch cache files.
func GetCacheDirPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".overtime_cache"
	}
	return filepath.Join(homeDir, ".overtime", "cache")
}

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".overtime_cache.db"
	}
	return filepath.Join(homeDir, ".overtime_cache.db")
}

// ValidateDatabaseConnectionString checks that a connection string was
// supplied for backends that need one. SQLite and the file backend fall back
// to a default location in the user's home directory.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if strings.TrimSpace(connStr) == "" {
			return fmt.Errorf("cache backend %s requires a connection string (--cache-db-connect)", backend)
		}
	}
	return nil
}
