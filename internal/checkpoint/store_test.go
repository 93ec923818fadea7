package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"library-downloader/pkg/models"
)

func TestStore_SaveLoadDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cp := &models.ResumeCheckpoint{
		BookID:          7,
		Title:           "Physics for Everyone",
		TotalSizeBytes:  5_000_000,
		DownloadedBytes: 2_621_440,
		CurrentChunk:    40,
		Timestamp:       time.Now(),
	}
	require.NoError(t, store.Save(cp))

	got, err := store.Load(7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, cp.BookID, got.BookID)
	require.Equal(t, cp.TotalSizeBytes, got.TotalSizeBytes)
	require.Equal(t, cp.DownloadedBytes, got.DownloadedBytes)
	require.Equal(t, cp.CurrentChunk, got.CurrentChunk)

	require.NoError(t, store.Delete(7))
	got, err = store.Load(7)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	got, err := store.Load(123)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "book_5.json"), []byte("{not json"), 0o644))

	got, err := store.Load(5)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStore_DeleteMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Delete(42))
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	for _, id := range []int64{3, 11, 27} {
		require.NoError(t, store.Save(&models.ResumeCheckpoint{
			BookID:          id,
			DownloadedBytes: id * 100,
			Timestamp:       time.Now(),
		}))
	}

	// Files that are not checkpoints are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book_99.json"), []byte("{broken"), 0o644))

	checkpoints, err := store.List()
	require.NoError(t, err)
	require.Len(t, checkpoints, 3)

	seen := make(map[int64]int64)
	for _, cp := range checkpoints {
		seen[cp.BookID] = cp.DownloadedBytes
	}
	require.Equal(t, map[int64]int64{3: 300, 11: 1100, 27: 2700}, seen)
}

func TestStore_ListEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	checkpoints, err := store.List()
	require.NoError(t, err)
	require.Empty(t, checkpoints)
}

func TestStore_SaveOverwrites(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cp := &models.ResumeCheckpoint{BookID: 1, TotalSizeBytes: 100, DownloadedBytes: 10}
	require.NoError(t, store.Save(cp))

	cp.DownloadedBytes = 50
	cp.CurrentChunk = 5
	require.NoError(t, store.Save(cp))

	got, err := store.Load(1)
	require.NoError(t, err)
	require.Equal(t, int64(50), got.DownloadedBytes)
	require.Equal(t, int64(5), got.CurrentChunk)
}
