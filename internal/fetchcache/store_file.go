package fetchcache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

const fileStoreExt = ".json"

// FileStore keeps one JSON document per origin under a directory. It is the
// default backend: no server, inspectable with a text editor.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) pathFor(origin string) string {
	return filepath.Join(s.dir, encodeOrigin(origin)+fileStoreExt)
}

// Load returns the entry for an origin, or nil when no file exists.
func (s *FileStore) Load(origin string) (*schema.CacheEntry, error) {
	data, err := os.ReadFile(s.pathFor(origin))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry schema.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt file is treated as a miss; the next save rewrites it.
		return nil, nil
	}
	return &entry, nil
}

// Save writes the entry through a temp file and renames it into place, so a
// crash mid-write never leaves a truncated document.
func (s *FileStore) Save(entry *schema.CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	target := s.pathFor(entry.Origin)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Delete removes the entry file for an origin.
func (s *FileStore) Delete(origin string) error {
	err := os.Remove(s.pathFor(origin))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns every origin with a stored entry.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var origins []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileStoreExt) || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		origin, err := decodeOrigin(strings.TrimSuffix(name, fileStoreExt))
		if err != nil {
			continue
		}
		origins = append(origins, origin)
	}
	return origins, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// encodeOrigin maps an arbitrary origin string to a safe filename. Origins
// contain user IDs and repo slugs with slashes, so hex is the simple option.
func encodeOrigin(origin string) string {
	return hex.EncodeToString([]byte(origin))
}

func decodeOrigin(name string) (string, error) {
	raw, err := hex.DecodeString(name)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
