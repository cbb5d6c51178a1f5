package processed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/yt-scribe/internal/errors"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "processed_videos.json"))

	set, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.False(t, store.Contains("abc"))
}

func TestFileStore_LoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_videos.json")
	require.NoError(t, os.WriteFile(path, []byte(`["vid1", "vid2"]`), 0644))

	store := NewFileStore(path)
	set, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, set.Contains("vid1"))
	assert.True(t, store.Contains("vid2"))
	assert.False(t, store.Contains("vid3"))
	assert.Equal(t, []string{"vid1", "vid2"}, store.List())
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_videos.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorage))
	assert.Contains(t, err.Error(), "corrupt")
}

func TestFileStore_MarkProcessedPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "processed_videos.json")

	store := NewFileStore(path)
	_, err := store.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, store.MarkProcessed(ctx, "b"))
	require.NoError(t, store.MarkProcessed(ctx, "a"))
	require.NoError(t, store.MarkProcessed(ctx, "a"))
	assert.True(t, store.Contains("a"))

	// A fresh store sees the durable state
	reloaded := NewFileStore(path)
	set, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.IDs())
}

func TestFileStore_MarkProcessedWriteFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Parent "directory" is a regular file, so the write cannot succeed
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := NewFileStore(filepath.Join(blocker, "processed_videos.json"))
	err := store.MarkProcessed(ctx, "vid1")

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorage))
	assert.False(t, store.Contains("vid1"), "failed write must not mark the id")
	assert.Empty(t, store.List())
}

func TestFileStore_MarkProcessedEmptyID(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "p.json"))

	err := store.MarkProcessed(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))
}
