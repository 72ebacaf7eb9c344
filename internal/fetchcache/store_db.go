package fetchcache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver
	_ "modernc.org/sqlite"              // SQLite driver

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

const dbTableName = "fetch_entries"

// DBStore persists cache entries in a relational database. One row per
// origin; the entry itself travels as a JSON blob so the table schema stays
// identical across backends.
type DBStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ Store = &DBStore{} // Compile-time check

// NewDBStore initializes and returns a new DBStore for the backend type.
func NewDBStore(backend schema.DatabaseBackend, connStr string) (*DBStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported database cache backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if _, err := db.Exec(getCreateTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", dbTableName, err)
	}

	return &DBStore{db: db, backend: backend}, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				origin VARCHAR(255) PRIMARY KEY,
				entry_value BLOB NOT NULL
			);
		`, dbTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				origin TEXT PRIMARY KEY,
				entry_value BYTEA NOT NULL
			);
		`, dbTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				origin TEXT PRIMARY KEY,
				entry_value BLOB NOT NULL
			);
		`, dbTableName)
	}
}

// getPlaceholder returns the parameter placeholder for the backend.
func (s *DBStore) getPlaceholder(n int) string {
	switch s.backend {
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("$%d", n)
	default: // SQLite and MySQL
		return "?"
	}
}

// getUpsertQuery returns the UPSERT query for the backend.
func (s *DBStore) getUpsertQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (origin, entry_value) VALUES (?, ?) AS new
			ON DUPLICATE KEY UPDATE entry_value = new.entry_value`, dbTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (origin, entry_value) VALUES ($1, $2)
			ON CONFLICT (origin) DO UPDATE SET entry_value = EXCLUDED.entry_value`, dbTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (origin, entry_value) VALUES (?, ?)`, dbTableName)
	}
}

// Load retrieves the entry for an origin, or nil when none is stored.
func (s *DBStore) Load(origin string) (*schema.CacheEntry, error) {
	query := fmt.Sprintf(`SELECT entry_value FROM %s WHERE origin = %s`, dbTableName, s.getPlaceholder(1))
	var blob []byte
	if err := s.db.QueryRow(query, origin).Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var entry schema.CacheEntry
	if err := json.Unmarshal(blob, &entry); err != nil {
		// A corrupt row is treated as a miss; the next save rewrites it.
		return nil, nil
	}
	return &entry, nil
}

// Save inserts or replaces the entry for an origin. The single-row upsert
// keeps the write atomic per origin on every backend.
func (s *DBStore) Save(entry *schema.CacheEntry) error {
	blob, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(s.getUpsertQuery(), entry.Origin, blob)
	return err
}

// Delete removes the entry for an origin.
func (s *DBStore) Delete(origin string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE origin = %s`, dbTableName, s.getPlaceholder(1))
	_, err := s.db.Exec(query, origin)
	return err
}

// List returns every stored origin name.
func (s *DBStore) List() ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT origin FROM %s`, dbTableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var origins []string
	for rows.Next() {
		var origin string
		if err := rows.Scan(&origin); err != nil {
			return nil, err
		}
		origins = append(origins, origin)
	}
	return origins, rows.Err()
}

// Close closes the underlying DB connection.
func (s *DBStore) Close() error {
	return s.db.Close()
}
