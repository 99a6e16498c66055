package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/managed-index/indexctl/internal/clientcache"
	"github.com/managed-index/indexctl/internal/config"
	"github.com/managed-index/indexctl/internal/gitprobe"
	"github.com/managed-index/indexctl/internal/remote"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testEngine(t *testing.T, handler http.HandlerFunc) (*Engine, *gitprobe.Mock, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Chunking = config.ChunkingConfig{MaxChars: 40, MinChars: 1, OverlapLines: 1}
	cfg.Watcher.Enabled = false // most tests don't want a live fsnotify watcher

	mock := gitprobe.NewMock()
	client := remote.NewClient("tok", func(string) string { return srv.URL })
	store := clientcache.NewStore(t.TempDir(), mock)

	e := New(*cfg, WithProber(mock), WithRemoteClient(client), WithCacheStore(store))
	return e, mock, srv.URL
}

func TestEngineStartRejectsNonRepo(t *testing.T) {
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mock.Repo = false

	var got State
	_, err := e.Start(context.Background(), Workspace{Path: t.TempDir()}, func(s State) { got = s })
	require.Error(t, err)
	assert.IsType(t, &NotARepoError{}, err)
	assert.Equal(t, StatusError, got.Status)
}

func TestEngineStartScansAndTransitionsToWatching(t *testing.T) {
	var upserts int
	var mu sync.Mutex
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound) // no manifest yet
		case r.Method == http.MethodPut:
			mu.Lock()
			upserts++
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package main\n\nfunc main() {\n  println(\"hello world this is long enough\")\n}\n")
	mock.Files = []string{"a.go"}

	var states []State
	h, err := e.Start(context.Background(), Workspace{Path: dir, OrganizationID: "org1", ProjectID: "proj1"}, func(s State) {
		states = append(states, s)
	})
	require.NoError(t, err)
	require.NotNil(t, h)
	defer h.Dispose(context.Background())

	assert.Greater(t, upserts, 0)
	assert.Equal(t, StatusWatching, states[len(states)-1].Status)
}

func TestEngineStartGoesIdleWhenNothingIndexed(t *testing.T) {
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	mock.Files = nil

	var final State
	h, err := e.Start(context.Background(), Workspace{Path: t.TempDir()}, func(s State) { final = s })
	require.NoError(t, err)
	defer h.Dispose(context.Background())

	assert.Equal(t, StatusIdle, final.Status)
}

func TestEngineSearchOnFeatureBranchExcludesDeletedFiles(t *testing.T) {
	var gotReq remote.SearchRequest
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	mock.Branch = "feature/x"
	mock.Base = "main"
	mock.DiffResult = gitprobe.Diff{Deleted: []string{"u.ts"}}

	_, err := e.Search(context.Background(), Workspace{Path: t.TempDir(), OrganizationID: "org1", ProjectID: "proj1"}, "needle", "")
	require.NoError(t, err)

	assert.Equal(t, "feature/x", gotReq.PreferBranch)
	assert.Equal(t, "main", gotReq.FallbackBranch)
	assert.Equal(t, []string{"u.ts"}, gotReq.ExcludeFiles)
}

func TestEngineSearchOnBaseBranchExcludesNothing(t *testing.T) {
	var gotReq remote.SearchRequest
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`[]`))
	})
	mock.Branch = "main"
	mock.Base = "main"

	_, err := e.Search(context.Background(), Workspace{Path: t.TempDir()}, "needle", "")
	require.NoError(t, err)
	assert.Empty(t, gotReq.ExcludeFiles)
}

func TestEngineStateReportsReScanNeededAfterLiveBranchSwitch(t *testing.T) {
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	dir := t.TempDir()
	mock.Files = nil
	mock.Branch = "main"

	ctx := context.Background()
	ws := Workspace{Path: dir}
	h, err := e.Start(ctx, ws, NoOpOnState)
	require.NoError(t, err)
	defer h.Dispose(ctx)

	// Simulate the user checking out a different branch without
	// restarting the session: the live session's cache still reflects
	// the branch it was started on.
	mock.Branch = "feature/y"

	st := e.State(ctx, ws)
	assert.Equal(t, StatusIdle, st.Status)
	assert.Contains(t, st.Message, "re-scan")
}

func TestEngineClearResetsCacheAndDeletesRemoteBranch(t *testing.T) {
	var deletedBranch bool
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deletedBranch = true
		}
		w.WriteHeader(http.StatusOK)
	})
	dir := t.TempDir()
	mock.Branch = "main"

	ctx := context.Background()
	seeded := clientcache.Empty("main")
	seeded.UpdateEntry("a.go", clientcache.FileEntry{Hash: "x", ChunkCount: 3})
	require.NoError(t, e.cacheStore.Save(ctx, dir, seeded))

	require.NoError(t, e.Clear(ctx, Workspace{Path: dir, OrganizationID: "org1", ProjectID: "proj1"}))
	assert.True(t, deletedBranch)

	reloaded, err := e.cacheStore.Load(ctx, dir)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Files)
}

func TestHandleDisposeIsIdempotent(t *testing.T) {
	e, mock, _ := testEngine(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	mock.Files = nil

	h, err := e.Start(context.Background(), Workspace{Path: t.TempDir()}, NoOpOnState)
	require.NoError(t, err)

	require.NoError(t, h.Dispose(context.Background()))
	require.NoError(t, h.Dispose(context.Background()))
}
