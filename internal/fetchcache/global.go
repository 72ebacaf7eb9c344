package fetchcache

import (
	"fmt"
	"sync"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// Global manager instance for main logic.
var (
	manager   Store
	managerMu sync.RWMutex
	initOnce  sync.Once
	closeOnce sync.Once
)

// OpenStore builds a Store for the configured backend. The file backend is
// the default; "none" disables persistence with an in-memory store.
func OpenStore(backend schema.DatabaseBackend, connStr, cacheDir string) (Store, error) {
	switch backend {
	case schema.FileBackend:
		return NewFileStore(cacheDir)
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewDBStore(backend, connStr)
	case schema.NoneBackend:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be file, sqlite, mysql, postgresql, or none", backend)
	}
}

// InitCaching initializes the global store exactly once, even with
// concurrent calls.
func InitCaching(backend schema.DatabaseBackend, connStr, cacheDir string) error {
	var initErr error
	initOnce.Do(func() {
		store, err := OpenStore(backend, connStr, cacheDir)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize fetch cache: %w", err)
			return
		}
		managerMu.Lock()
		manager = store
		managerMu.Unlock()
	})
	return initErr
}

// GetStore returns the global store, or nil before InitCaching.
func GetStore() Store {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return manager
}

// SetStore replaces the global store. Used by tests.
func SetStore(store Store) {
	managerMu.Lock()
	manager = store
	managerMu.Unlock()
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		managerMu.Lock()
		defer managerMu.Unlock()
		if manager != nil {
			_ = manager.Close()
		}
	})
}
