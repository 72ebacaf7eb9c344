// Package cmd defines the command-line interface for overtime.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(evidenceCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("since", "", "Start date (YYYY-MM-DD), default is 90 days back")
	rootCmd.PersistentFlags().String("until", "", "End date (YYYY-MM-DD), inclusive, default is today")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for day boundaries (default: system local)")
	rootCmd.PersistentFlags().String("emails", "", "Comma-separated author emails that identify your commits")
	rootCmd.PersistentFlags().String("repos-root", "", "Directory scanned recursively for git repositories")
	rootCmd.PersistentFlags().String("exclude-subjects", "", "Regex for commit subjects to ignore (merges, bots, chores)")
	rootCmd.PersistentFlags().Bool("use-review", false, "Collect merged pull request evidence")
	rootCmd.PersistentFlags().String("review-user", "", "Review API username")
	rootCmd.PersistentFlags().String("review-password", "", "Review API app password or token")
	rootCmd.PersistentFlags().String("review-workspace", "", "Review workspace or organization slug")
	rootCmd.PersistentFlags().String("review-repos", "", "Comma-separated repository slugs to scan for merged PRs")
	rootCmd.PersistentFlags().String("review-url", "", "Review API base URL override")
	rootCmd.PersistentFlags().String("calendar-ics", "", "Path or URL of an ICS calendar export")
	rootCmd.PersistentFlags().String("excluded-titles", "", "Comma-separated event titles to skip (default: Out of office, PTO, OOO)")
	rootCmd.PersistentFlags().Bool("use-chat", false, "Collect chat message evidence")
	rootCmd.PersistentFlags().String("chat-token", "", "Chat API token")
	rootCmd.PersistentFlags().String("chat-users", "", "Comma-separated chat user IDs that identify your messages")
	rootCmd.PersistentFlags().String("chat-url", "", "Chat API base URL override")
	rootCmd.PersistentFlags().Bool("force-refresh", false, "Ignore cached coverage and refetch the whole range")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.FileBackend), "Cache backend: file or sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory for the file cache backend (default: ~/.overtime/cache)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent fetch workers")
	rootCmd.PersistentFlags().Int("slice-days", contract.DefaultSliceDays, "Days per fetch slice for remote sources")
	rootCmd.PersistentFlags().Int("max-attempts", contract.DefaultMaxAttempts, "Retry attempts per page before giving up on a slice")
	rootCmd.PersistentFlags().String("session-gap", "", "Max gap that joins two activities into one session (default 45m)")
	rootCmd.PersistentFlags().String("pad-before", "", "Padding before a session's first activity (default 10m)")
	rootCmd.PersistentFlags().String("pad-after", "", "Padding after a session's last activity (default 15m)")
	rootCmd.PersistentFlags().String("lunch-break", "", "Minimum free gap that counts as a lunch break (default 1h)")
	rootCmd.PersistentFlags().String("country", "", "ISO country code for public holidays (e.g. de, us)")
	rootCmd.PersistentFlags().String("subdivision", "", "Country subdivision for regional holidays")
	rootCmd.PersistentFlags().String("pto", "", "Comma-separated PTO dates (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("work-hours", contract.DefaultWorkHours, "Daily work window, e.g. 09:00-18:00 or 09:00-12:00,13:00-18:00")
	rootCmd.PersistentFlags().Bool("weekend-extra", true, "Count all weekend activity as extra hours")
	rootCmd.PersistentFlags().StringToString("schedule", nil, "Per-weekday window overrides, e.g. --schedule fri=09:00-14:00")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}
}
