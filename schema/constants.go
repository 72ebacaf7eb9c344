package schema

// Custom string types for type safety.
type (
	// Source represents the origin system of an evidence record.
	Source string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the storage backend for the fetch cache.
	DatabaseBackend string
)

// All evidence sources supported.
const (
	GitSource      Source = "git"
	ReviewSource   Source = "review"
	CalendarSource Source = "calendar"
	ChatSource     Source = "chat"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	FileBackend       DatabaseBackend = "file" // default: one JSON file per origin
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
