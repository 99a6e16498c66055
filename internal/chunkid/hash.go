// Package chunkid derives stable, branch-scoped identifiers for chunks and
// content hashes for files.
package chunkid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// FileHash returns the SHA-256 hex digest of file content.
func FileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ChunkHash returns the SHA-256 hex digest of a chunk's location identity.
// Content is deliberately not hashed here: relocating a chunk (same text,
// different line range) must produce a new identity.
func ChunkHash(filePath string, startLine, endLine int) string {
	name := fmt.Sprintf("%s-%d-%d", filePath, startLine, endLine)
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

// ChunkID derives a UUIDv5 chunk identifier from a chunk hash, the git
// branch it belongs to, and the organization namespace. Branch is folded
// into the hashed name (not just the UUID namespace) so that the same
// chunk hash on two different branches always yields distinct ids.
func ChunkID(chunkHash, branch string, orgID uuid.UUID) uuid.UUID {
	name := chunkHash + "-" + branch
	sum := sha256.Sum256([]byte(name))
	return uuid.NewSHA1(orgID, []byte(hex.EncodeToString(sum[:])))
}
