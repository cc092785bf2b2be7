package collapse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collapse.json")
	store := NewFileStore(path)

	_, err := store.Read()
	require.ErrorIs(t, err, ErrNoRecord)
	_, err = store.Revision()
	require.ErrorIs(t, err, ErrNoRecord)

	rec := Record{Timestamp: 1234, Collapsed: true}
	require.NoError(t, store.Write(rec))

	got, err := store.Read()
	require.NoError(t, err)
	require.Equal(t, rec, got)

	rev, err := store.Revision()
	require.NoError(t, err)
	require.False(t, rev.IsZero())
}

func TestFileStoreWriteCreatesStateDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "collapse.json")
	store := NewFileStore(path)
	require.NoError(t, store.Write(Record{Timestamp: 1, Collapsed: false}))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileStoreReplaceLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collapse.json")
	store := NewFileStore(path)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, store.Write(Record{Timestamp: i, Collapsed: i%2 == 0}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "atomic replace must not leak temp files")
	require.Equal(t, "collapse.json", entries[0].Name())
}

func TestFileStoreCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collapse.json")
	require.NoError(t, os.WriteFile(path, []byte("{half a rec"), 0644))

	store := NewFileStore(path)
	_, err := store.Read()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoRecord)

	// The revision is still observable, so pollers can keep backing off.
	_, err = store.Revision()
	require.NoError(t, err)
}

func TestFileStoreRevisionAdvancesAcrossWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collapse.json")
	store := NewFileStore(path)

	require.NoError(t, store.Write(Record{Timestamp: 1}))
	first, err := store.Revision()
	require.NoError(t, err)

	// Coarse mtime granularity on some filesystems; spacing the writes
	// keeps the assertion meaningful.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, store.Write(Record{Timestamp: 2}))
	second, err := store.Revision()
	require.NoError(t, err)

	require.True(t, !second.Before(first), "revision must be monotonically non-decreasing")
}
