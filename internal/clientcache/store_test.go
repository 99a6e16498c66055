package clientcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/managed-index/indexctl/internal/gitprobe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	mock := gitprobe.NewMock()
	mock.Branch = "main"
	s := NewStore(dir, mock)
	ctx := context.Background()

	c := Empty("main")
	c.UpdateEntry("a/b.go", FileEntry{Hash: "h1", ChunkCount: 3})

	require.NoError(t, s.Save(ctx, "/ws", c))

	loaded, err := s.Load(ctx, "/ws")
	require.NoError(t, err)
	assert.Equal(t, "main", loaded.GitBranch)
	assert.Equal(t, "h1", loaded.Files["a/b.go"].Hash)
}

func TestStoreLoadMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	mock := gitprobe.NewMock()
	mock.Branch = "main"
	s := NewStore(dir, mock)

	c, err := s.Load(context.Background(), "/ws")
	require.NoError(t, err)
	assert.Equal(t, "main", c.GitBranch)
	assert.Empty(t, c.Files)
}

func TestStoreLoadBranchMismatchReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	mock := gitprobe.NewMock()
	mock.Branch = "feature"
	s := NewStore(dir, mock)
	ctx := context.Background()

	saved := Empty("main")
	saved.UpdateEntry("x.go", FileEntry{Hash: "h"})
	require.NoError(t, s.Save(ctx, "/ws", saved))

	// file on disk is scoped to "main"; current branch is "feature".
	loaded, err := s.Load(ctx, "/ws")
	require.NoError(t, err)
	assert.Equal(t, "feature", loaded.GitBranch)
	assert.Empty(t, loaded.Files)
}

func TestStoreSaveIsAtomicNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	mock := gitprobe.NewMock()
	mock.Branch = "main"
	s := NewStore(dir, mock)

	require.NoError(t, s.Save(context.Background(), "/ws", Empty("main")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(s.path("/ws", "main")), entries[0].Name())
}

func TestCacheShouldIndex(t *testing.T) {
	c := Empty("main")
	assert.True(t, c.ShouldIndex("a.go", "h1"))

	c.UpdateEntry("a.go", FileEntry{Hash: "h1"})
	assert.False(t, c.ShouldIndex("a.go", "h1"))
	assert.True(t, c.ShouldIndex("a.go", "h2"))
}

func TestCacheDeletedFilesTracking(t *testing.T) {
	c := Empty("main")
	c.AddDeleted("a.go")
	c.AddDeleted("a.go")
	assert.Equal(t, []string{"a.go"}, c.DeletedFiles)

	c.RemoveDeleted("a.go")
	assert.Empty(t, c.DeletedFiles)
}

func TestCacheUpdateEntryClearsDeletedRecord(t *testing.T) {
	c := Empty("main")
	c.AddDeleted("a.go")
	c.UpdateEntry("a.go", FileEntry{Hash: "h1"})
	assert.Empty(t, c.DeletedFiles)
	assert.Equal(t, "h1", c.Files["a.go"].Hash)
}
