// Package clientcache tracks, per workspace and branch, which files have
// already been indexed so that re-scans only touch what actually changed.
package clientcache

// Cache is the on-disk record of what has been indexed for one branch of
// one workspace.
type Cache struct {
	GitBranch    string               `json:"git_branch"`
	DeletedFiles []string             `json:"deleted_files"`
	Files        map[string]FileEntry `json:"files"`
}

// FileEntry records the last known indexed state of a single file.
type FileEntry struct {
	Hash               string `json:"hash"`
	LastIndexedEpochMS int64  `json:"last_indexed_epoch_ms"`
	ChunkCount         int    `json:"chunk_count"`
}

// Empty returns a fresh, empty Cache scoped to branch.
func Empty(branch string) *Cache {
	return &Cache{
		GitBranch: branch,
		Files:     make(map[string]FileEntry),
	}
}

// ShouldIndex reports whether filePath needs (re)indexing: it is unknown to
// the cache, or its content hash no longer matches what was last indexed.
func (c *Cache) ShouldIndex(filePath, hash string) bool {
	entry, ok := c.Files[filePath]
	if !ok {
		return true
	}
	return entry.Hash != hash
}

// UpdateEntry records filePath as indexed with entry's metadata, and clears
// any stale deletion record for the same path.
func (c *Cache) UpdateEntry(filePath string, e FileEntry) {
	if c.Files == nil {
		c.Files = make(map[string]FileEntry)
	}
	c.Files[filePath] = e
	c.RemoveDeleted(filePath)
}

// RemoveEntry drops filePath's indexed-state record.
func (c *Cache) RemoveEntry(filePath string) {
	delete(c.Files, filePath)
}

// AddDeleted records filePath as deleted, unless already recorded.
func (c *Cache) AddDeleted(filePath string) {
	for _, p := range c.DeletedFiles {
		if p == filePath {
			return
		}
	}
	c.DeletedFiles = append(c.DeletedFiles, filePath)
}

// RemoveDeleted clears filePath's deletion record, if any.
func (c *Cache) RemoveDeleted(filePath string) {
	for i, p := range c.DeletedFiles {
		if p == filePath {
			c.DeletedFiles = append(c.DeletedFiles[:i], c.DeletedFiles[i+1:]...)
			return
		}
	}
}
