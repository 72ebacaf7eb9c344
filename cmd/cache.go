package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/fetchcache"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	cacheDir := viper.GetString("cache-dir")
	if cacheDir == "" {
		cacheDir = contract.GetCacheDirPath()
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if err := fetchcache.InitCaching(backend, connStr, cacheDir); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheConnStr = connStr
	cfg.CacheDir = cacheDir

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by report commands. This avoids evidence source
// validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the fetch cache for remote evidence sources",
	Long: `Manage the per-origin fetch cache that makes repeated runs incremental.

Remote sources (chat search, review API) record which time range has already
been pulled per origin. Later runs fetch only what is missing, so extending a
report by a week costs a week of API calls, not three months.

Supported backends: file (default), SQLite, MySQL, PostgreSQL, or none

Subcommands:
  status - Show cached origins and covered ranges
  clear  - Remove all cached data

Examples:
  # Check cache status
  overtime cache status

  # Clear cache after changing identities or API accounts
  overtime cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached evidence data",
	Long: `Delete every cached origin from the configured backend.

Use this when:
- Remote history was edited or messages were deleted
- The cache may be stale or corrupted
- Switching to a different account or identity

Examples:
  # Clear the default file cache
  overtime cache clear

  # Clear a PostgreSQL cache (set connection string via env variable)
  OVERTIME_CACHE_BACKEND=postgresql OVERTIME_CACHE_DB_CONNECT="..." overtime cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := fetchcache.Clear(fetchcache.GetStore()); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and coverage details",
	Long: `Show detailed information about the fetch cache.

Displays:
- Backend type
- Number of cached origins and total records
- Oldest and newest covered timestamps
- When any origin last fetched

Examples:
  # Check status of the default file cache
  overtime cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := fetchcache.Status(fetchcache.GetStore(), string(cfg.CacheBackend))
		if err != nil {
			contract.LogFatal("Failed to read cache status", err)
		}
		fmt.Printf("Backend:        %s\n", status.Backend)
		fmt.Printf("Origins:        %d\n", status.Origins)
		fmt.Printf("Total records:  %d\n", status.TotalRecords)
		if !status.OldestCovered.IsZero() {
			fmt.Printf("Oldest covered: %s\n", status.OldestCovered.Format(contract.DateTimeFormat))
			fmt.Printf("Newest covered: %s\n", status.NewestCovered.Format(contract.DateTimeFormat))
			fmt.Printf("Last fetched:   %s\n", status.LastFetched.Format(contract.DateTimeFormat))
		}
	},
}
