package engine

import (
	"context"
	"path/filepath"
	"time"

	"github.com/managed-index/indexctl/internal/clientcache"
	"github.com/managed-index/indexctl/internal/config"
	"github.com/managed-index/indexctl/internal/watcher"
)

// installWatcher starts a Watcher rooted at ws.Path that drives sess's
// cache and scanner for every debounced batch of filesystem events.
func (e *Engine) installWatcher(ctx context.Context, ws Workspace, sess *session) (*watcher.Watcher, error) {
	extSet := config.BuildExtSet(e.cfg.Extensions.Code, e.cfg.Extensions.Docs)
	debounce := time.Duration(e.cfg.Watcher.DebounceMS) * time.Millisecond
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w, err := watcher.New(ws.Path, extSet, debounce, func(batchCtx context.Context, batch []watcher.Event) {
		e.processBatch(batchCtx, ws, sess, batch)
	})
	if err != nil {
		return nil, err
	}
	w.Start(ctx)
	return w, nil
}

// processBatch applies one debounced batch: deletes first (already
// ordered that way by Watcher.flush), then creates/changes. Per-file
// failures are logged and never abort the batch.
func (e *Engine) processBatch(ctx context.Context, ws Workspace, sess *session, batch []watcher.Event) {
	isBase := e.prober.IsBaseBranch(ctx, sess.branch, ws.Path)

	for _, ev := range batch {
		rel, ok := relPath(ws.Path, ev.FilePath)
		if !ok || !sess.scanner.Eligible(rel) {
			continue
		}

		switch ev.Type {
		case watcher.EventRemove:
			e.handleDelete(ctx, sess, isBase, rel)
		case watcher.EventCreate, watcher.EventWrite:
			e.handleUpsert(ctx, ws, sess, isBase, rel)
		}
	}

	if err := e.cacheStore.Save(ctx, ws.Path, sess.cache); err != nil {
		e.log.Warn("cache flush after watch batch failed", "workspace", ws.Path, "error", err)
	}
}

// handleDelete implements the resolved Open Question for feature-branch
// deletions (DESIGN.md): base-branch deletes are canonical and are
// propagated to the server; feature-branch deletes only update the local
// cache's deleted_files, since the feature branch's chunks for that file
// may never have existed on the server.
func (e *Engine) handleDelete(ctx context.Context, sess *session, isBase bool, path string) {
	sess.cache.RemoveEntry(path)
	if isBase {
		if err := sess.scanner.DeleteFile(ctx, sess.branch, path); err != nil {
			e.log.Warn("watcher: remote delete failed", "path", path, "error", err)
		}
		return
	}
	sess.cache.AddDeleted(path)
}

func (e *Engine) handleUpsert(ctx context.Context, ws Workspace, sess *session, isBase bool, path string) {
	chunkCount, hash, err := sess.scanner.ReindexFile(ctx, ws.Path, sess.branch, isBase, path)
	if err != nil {
		e.log.Warn("watcher: reindex failed", "path", path, "error", err)
		return
	}
	sess.cache.UpdateEntry(path, clientcache.FileEntry{
		Hash:               hash,
		LastIndexedEpochMS: nowEpochMS(),
		ChunkCount:         chunkCount,
	})
}

// relPath converts an absolute fsnotify path into the workspace-relative,
// forward-slash form the cache and scanner use as keys.
func relPath(root, abs string) (string, bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || filepath.IsAbs(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
