package clientcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/managed-index/indexctl/internal/gitprobe"
)

// CacheIOError wraps a failure to write the cache file. It is informational
// only: Save returns it and callers treat it as "best effort, log and
// continue". Load never returns one; any read failure yields an empty cache.
type CacheIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *CacheIOError) Error() string {
	return "clientcache: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *CacheIOError) Unwrap() error { return e.Err }

// Store loads and saves per-workspace, per-branch Cache files under a
// shared global storage directory.
type Store struct {
	dir    string
	prober gitprobe.Prober
}

// NewStore creates a Store rooted at globalStorageDir. prober is used to
// resolve the current branch when the caller does not already know it.
func NewStore(globalStorageDir string, prober gitprobe.Prober) *Store {
	return &Store{dir: globalStorageDir, prober: prober}
}

// Load reads the cache for workspace's current branch. Any failure to find
// or parse the file (missing, corrupt, or a branch mismatch against the
// record on disk) yields a fresh Empty cache rather than an error: the
// cache is an optimization, never a source of truth.
func (s *Store) Load(ctx context.Context, workspace string) (*Cache, error) {
	branch, err := s.prober.CurrentBranch(ctx, workspace)
	if err != nil {
		return Empty(""), nil
	}

	data, err := os.ReadFile(s.path(workspace, branch))
	if err != nil {
		return Empty(branch), nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return Empty(branch), nil
	}
	if c.GitBranch != branch {
		return Empty(branch), nil
	}
	if c.Files == nil {
		c.Files = make(map[string]FileEntry)
	}
	return &c, nil
}

// Save writes c for workspace atomically: a temp file is written and
// fsynced, then renamed over the final path, so a crash mid-write never
// leaves a truncated cache behind.
func (s *Store) Save(ctx context.Context, workspace string, c *Cache) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &CacheIOError{Op: "mkdir", Path: s.dir, Err: err}
	}

	finalPath := s.path(workspace, c.GitBranch)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return &CacheIOError{Op: "marshal", Path: finalPath, Err: err}
	}

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(finalPath)+".*.tmp")
	if err != nil {
		return &CacheIOError{Op: "create-temp", Path: finalPath, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &CacheIOError{Op: "write", Path: finalPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &CacheIOError{Op: "sync", Path: finalPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &CacheIOError{Op: "close", Path: finalPath, Err: err}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return &CacheIOError{Op: "rename", Path: finalPath, Err: err}
	}

	return nil
}
