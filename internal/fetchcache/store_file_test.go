package fetchcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// TestFileStoreRoundTrip verifies save, load, upsert, list and delete on a
// temp directory, including origins with slashes.
func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	missing, err := store.Load("workspace/repo")
	require.NoError(t, err)
	assert.Nil(t, missing)

	entry := &schema.CacheEntry{
		Origin:       "workspace/repo",
		RawRecords:   []schema.EvidenceRecord{record("pr#1", day(3))},
		CoveredSince: day(1),
		CoveredUntil: day(10),
	}
	require.NoError(t, store.Save(entry))

	loaded, err := store.Load("workspace/repo")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, entry.Origin, loaded.Origin)
	assert.True(t, entry.CoveredSince.Equal(loaded.CoveredSince))
	assert.True(t, entry.CoveredUntil.Equal(loaded.CoveredUntil))
	require.Len(t, loaded.RawRecords, 1)
	assert.Equal(t, "pr#1", loaded.RawRecords[0].ID)

	entry.CoveredUntil = day(20)
	require.NoError(t, store.Save(entry))
	loaded, err = store.Load("workspace/repo")
	require.NoError(t, err)
	assert.True(t, day(20).Equal(loaded.CoveredUntil))

	origins, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"workspace/repo"}, origins)

	require.NoError(t, store.Delete("workspace/repo"))
	require.NoError(t, store.Delete("workspace/repo")) // idempotent
	gone, err := store.Load("workspace/repo")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// TestFileStoreCorruptFileIsMiss verifies a truncated document reads as a
// cache miss instead of an error.
func TestFileStoreCorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(&schema.CacheEntry{Origin: "o"}))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, files[0].Name()), []byte("{trunc"), 0o644))

	entry, err := store.Load("o")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

// TestFileStoreListSkipsForeignFiles verifies stray files in the cache dir
// do not surface as origins.
func TestFileStoreListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(&schema.CacheEntry{Origin: "o"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-1234.json"), []byte("{}"), 0o644))

	origins, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"o"}, origins)
}
