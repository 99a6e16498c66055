package scanner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/managed-index/indexctl/internal/chunkid"
	"github.com/managed-index/indexctl/internal/remote"
)

type fileOutcome struct {
	hash       string
	chunkCount int
}

// processFile reads path, chunks it, and upserts the result in batches of at
// most the configured batch size.
func (s *Scanner) processFile(ctx context.Context, workspace, branch string, isBase bool, path string) (fileOutcome, error) {
	data, hash, err := readAndHash(absPath(workspace, path))
	if err != nil {
		return fileOutcome{}, err
	}

	spans := s.chunker.Chunk(string(data))
	chunks := make([]remote.Chunk, 0, len(spans))
	for _, span := range spans {
		chunkHash := chunkid.ChunkHash(path, span.StartLine, span.EndLine)
		id := chunkid.ChunkID(chunkHash, branch, s.orgNamespace)
		chunks = append(chunks, remote.Chunk{
			ID:             id.String(),
			OrganizationID: s.organizationID,
			ProjectID:      s.projectID,
			FilePath:       path,
			CodeChunk:      span.Text,
			StartLine:      span.StartLine,
			EndLine:        span.EndLine,
			ChunkHash:      chunkHash,
			GitBranch:      branch,
			IsBaseBranch:   isBase,
		})
	}

	batchSize := s.cfg.Concurrency.BatchSize
	if batchSize <= 0 {
		batchSize = 60
	}
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.remoteClient.Upsert(ctx, chunks[start:end]); err != nil {
			return fileOutcome{}, err
		}
	}

	return fileOutcome{hash: hash, chunkCount: len(chunks)}, nil
}

// ReindexFile re-chunks and re-uploads a single file for the watcher's
// create/change handling. It deletes the file's previously indexed chunks
// on branch first, so a line-shift in the new content never leaves stale
// chunks addressable on the server.
func (s *Scanner) ReindexFile(ctx context.Context, workspace, branch string, isBase bool, path string) (chunkCount int, fileHash string, err error) {
	if err := s.remoteClient.DeleteFiles(ctx, s.organizationID, s.projectID, branch, []string{path}); err != nil {
		s.log.Warn("pre-reindex delete failed", "path", path, "error", err)
	}

	outcome, err := s.processFile(ctx, workspace, branch, isBase, path)
	if err != nil {
		return 0, "", err
	}
	return outcome.chunkCount, outcome.hash, nil
}

// DeleteFile removes path's chunks from branch's remote index, for the
// watcher's delete handling.
func (s *Scanner) DeleteFile(ctx context.Context, branch, path string) error {
	return s.remoteClient.DeleteFiles(ctx, s.organizationID, s.projectID, branch, []string{path})
}

// Eligible reports whether path matches the scanner's configured
// extension allow-list and isn't under an ignored prefix, for the
// watcher's event filtering.
func (s *Scanner) Eligible(path string) bool {
	return s.eligible(path)
}

func readAndHash(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, chunkid.FileHash(data), nil
}

func absPath(workspace, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}
