package clientcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// fileName derives the cache file name for a workspace/branch pair. Hashing
// both components (rather than sanitizing them into a path) sidesteps
// filesystem-unsafe characters in branch names such as "feature/foo".
func fileName(workspace, branch string) string {
	return fmt.Sprintf("managed-index-cache-%s-%s.json", hashString(workspace), hashString(branch))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(workspace, branch string) string {
	return filepath.Join(s.dir, fileName(workspace, branch))
}
