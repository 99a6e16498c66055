// Package scanner performs one reconciliation pass of a workspace against a
// client cache and a remote manifest, uploading whatever has changed.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/managed-index/indexctl/internal/chunk"
	"github.com/managed-index/indexctl/internal/clientcache"
	"github.com/managed-index/indexctl/internal/config"
	"github.com/managed-index/indexctl/internal/gitprobe"
	"github.com/managed-index/indexctl/internal/logging"
	"github.com/managed-index/indexctl/internal/remote"
)

// FileIOError wraps a per-file failure encountered mid-scan. It never
// aborts the overall scan: it is recorded in Result.Errors and the scanner
// moves on to the next candidate.
type FileIOError struct {
	FilePath string
	Err      error
}

func (e *FileIOError) Error() string {
	return "scanner: " + e.FilePath + ": " + e.Err.Error()
}

func (e *FileIOError) Unwrap() error { return e.Err }

// ProgressFunc is invoked after each file finishes processing.
type ProgressFunc func(processed, total, chunksIndexed int)

// Result summarizes one completed scan.
type Result struct {
	Success        bool
	FilesProcessed int
	ChunksIndexed  int
	Errors         []error
}

// Scanner reconciles a workspace's file contents against a ClientCache and a
// remote.Manifest, driving the chunker and remote client for whatever has
// changed.
type Scanner struct {
	cfg            config.Config
	prober         gitprobe.Prober
	chunker        *chunk.Chunker
	remoteClient   *remote.Client
	organizationID string
	projectID      string
	orgNamespace   uuid.UUID
	extSet         map[string]struct{}
	ignorePrefixes []string
	log            *logging.Logger
}

// New builds a Scanner. organizationID/projectID identify the tenant on the
// remote service; organizationID is also folded into a deterministic UUID
// namespace used to derive chunk ids (id derivation needs a UUID namespace
// but the wire-level organization_id is a plain string).
func New(cfg config.Config, prober gitprobe.Prober, remoteClient *remote.Client, organizationID, projectID string) *Scanner {
	return &Scanner{
		cfg:            cfg,
		prober:         prober,
		chunker:        chunk.New(chunk.Config{MaxChars: cfg.Chunking.MaxChars, MinChars: cfg.Chunking.MinChars, OverlapLines: cfg.Chunking.OverlapLines}),
		remoteClient:   remoteClient,
		organizationID: organizationID,
		projectID:      projectID,
		orgNamespace:   namespaceFor(organizationID),
		extSet:         config.BuildExtSet(cfg.Extensions.Code, cfg.Extensions.Docs),
		ignorePrefixes: cfg.Extensions.Ignore,
		log:            logging.New("scanner"),
	}
}

func namespaceFor(organizationID string) uuid.UUID {
	sum := sha256.Sum256([]byte(organizationID))
	return uuid.NewSHA1(uuid.Nil, []byte(hex.EncodeToString(sum[:])))
}

func (s *Scanner) eligible(path string) bool {
	for _, prefix := range s.ignorePrefixes {
		if strings.HasPrefix(path, prefix) || strings.Contains(path, "/"+prefix) {
			return false
		}
	}
	_, ok := s.extSet[filepath.Ext(path)]
	return ok
}

// Scan performs one reconciliation pass, mutating cache in place and
// flushing it via flush at the end of the scan and after every 100 file
// updates.
func (s *Scanner) Scan(ctx context.Context, workspace string, cache *clientcache.Cache, manifest *remote.Manifest, flush func(*clientcache.Cache) error, onProgress ProgressFunc) (Result, error) {
	branch, err := s.prober.CurrentBranch(ctx, workspace)
	if err != nil {
		return Result{}, err
	}
	isBase := s.prober.IsBaseBranch(ctx, branch, workspace)

	candidates, deleted, err := s.enumerateCandidates(ctx, workspace, branch, isBase)
	if err != nil {
		return Result{}, err
	}
	for _, d := range deleted {
		cache.AddDeleted(d)
	}

	if isBase {
		s.detectBaseBranchDeletions(ctx, cache, manifest, candidates)
	}

	toIndex := s.reconcile(workspace, cache, manifest, candidates)

	result := Result{Success: true}
	var mu sync.Mutex
	var updateCount int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency.MaxInFlightFiles)

	for _, path := range toIndex {
		path := path
		g.Go(func() error {
			outcome, ferr := s.processFile(gctx, workspace, branch, isBase, path)

			mu.Lock()
			defer mu.Unlock()
			result.FilesProcessed++
			if ferr != nil {
				result.Errors = append(result.Errors, &FileIOError{FilePath: path, Err: ferr})
			} else {
				result.ChunksIndexed += outcome.chunkCount
				cache.UpdateEntry(path, clientcache.FileEntry{
					Hash:               outcome.hash,
					LastIndexedEpochMS: nowEpochMS(),
					ChunkCount:         outcome.chunkCount,
				})
				updateCount++
				if updateCount%100 == 0 {
					if err := flush(cache); err != nil {
						s.log.Warn("cache flush failed mid-scan", "error", err)
					}
				}
			}
			if onProgress != nil {
				onProgress(result.FilesProcessed, len(toIndex), result.ChunksIndexed)
			}
			return nil
		})
	}

	// errgroup's ctx is only cancelled by a returned error; per-file failures
	// are recorded in result.Errors instead of failing the group, so g.Wait
	// only ever reports a cancellation, not per-file errors.
	_ = g.Wait()

	if err := flush(cache); err != nil {
		s.log.Warn("final cache flush failed", "error", err)
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

func nowEpochMS() int64 { return time.Now().UnixMilli() }
