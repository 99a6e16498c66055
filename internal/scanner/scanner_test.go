package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/managed-index/indexctl/internal/clientcache"
	"github.com/managed-index/indexctl/internal/config"
	"github.com/managed-index/indexctl/internal/gitprobe"
	"github.com/managed-index/indexctl/internal/remote"
)

func testScanner(t *testing.T, handler http.HandlerFunc) (*Scanner, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Chunking = config.ChunkingConfig{MaxChars: 40, MinChars: 1, OverlapLines: 1}
	cfg.Concurrency = config.ConcurrencyConfig{MaxInFlightFiles: 4, BatchSize: 60}

	client := remote.NewClient("tok", func(string) string { return srv.URL })
	mock := gitprobe.NewMock()
	mock.Branch = "main"
	mock.Base = "main"

	return New(*cfg, mock, client, "org1", "proj1"), srv.URL
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScannerEligibleFiltersByExtensionAndIgnorePrefix(t *testing.T) {
	s, _ := testScanner(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	assert.True(t, s.eligible("main.go"))
	assert.True(t, s.eligible("docs/readme.md"))
	assert.False(t, s.eligible("binary.exe"))
	assert.False(t, s.eligible("vendor/lib.go"))
}

func TestScannerScanUploadsNewFiles(t *testing.T) {
	var upserted int
	s, _ := testScanner(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			upserted++
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	mock := s.prober.(*gitprobe.Mock)
	mock.Files = []string{"a.go"}

	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n\nfunc main() {\n  println(\"hello world this is long enough\")\n}\n")

	cache := clientcache.Empty("main")
	result, err := s.Scan(context.Background(), dir, cache, nil, func(*clientcache.Cache) error { return nil }, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Greater(t, upserted, 0)
	assert.Contains(t, cache.Files, "a.go")
}

func TestScannerScanSkipsUnchangedCacheEntries(t *testing.T) {
	called := false
	s, _ := testScanner(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	mock := s.prober.(*gitprobe.Mock)
	mock.Files = []string{"a.go"}

	dir := t.TempDir()
	content := "package main\n"
	writeFile(t, dir, "a.go", content)

	cache := clientcache.Empty("main")
	_, fileHash, err := readAndHash(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	cache.UpdateEntry("a.go", clientcache.FileEntry{Hash: fileHash})

	result, err := s.Scan(context.Background(), dir, cache, nil, func(*clientcache.Cache) error { return nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesProcessed)
	assert.False(t, called)
}

func TestScannerAdoptsManifestEntryWithMatchingHash(t *testing.T) {
	s, _ := testScanner(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called when manifest hash matches")
	})

	mock := s.prober.(*gitprobe.Mock)
	mock.Files = []string{"a.go"}

	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n")
	_, hash, err := readAndHash(filepath.Join(dir, "a.go"))
	require.NoError(t, err)

	manifest := &remote.Manifest{Files: []remote.ManifestEntry{{FilePath: "a.go", FileHash: hash, ChunkCount: 2}}}

	cache := clientcache.Empty("main")
	result, err := s.Scan(context.Background(), dir, cache, manifest, func(*clientcache.Cache) error { return nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesProcessed)
	assert.Equal(t, hash, cache.Files["a.go"].Hash)
}

func TestScannerDetectsBaseBranchDeletions(t *testing.T) {
	var deletedPaths []string
	s, _ := testScanner(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			var body struct {
				FilePaths []string `json:"filePaths"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			deletedPaths = body.FilePaths
		}
		w.WriteHeader(http.StatusOK)
	})

	mock := s.prober.(*gitprobe.Mock)
	mock.Files = []string{} // nothing left on disk

	dir := t.TempDir()
	manifest := &remote.Manifest{Files: []remote.ManifestEntry{{FilePath: "gone.go", FileHash: "x"}}}

	cache := clientcache.Empty("main")
	cache.UpdateEntry("gone.go", clientcache.FileEntry{Hash: "x"})

	_, err := s.Scan(context.Background(), dir, cache, manifest, func(*clientcache.Cache) error { return nil }, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"gone.go"}, deletedPaths)
	assert.NotContains(t, cache.Files, "gone.go")
}
