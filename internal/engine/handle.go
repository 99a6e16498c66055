package engine

import (
	"context"
	"sync"

	"github.com/managed-index/indexctl/internal/clientcache"
	"github.com/managed-index/indexctl/internal/scanner"
	"github.com/managed-index/indexctl/internal/watcher"
)

// session is the live state for one workspace between Start and dispose:
// its running watcher (nil until the first successful scan installs one),
// the cache handle scans and watch batches mutate, and the cancellation
// that tears both down.
type session struct {
	workspace Workspace
	branch    string
	cache     *clientcache.Cache
	scanner   *scanner.Scanner
	watcher   *watcher.Watcher
	cancel    context.CancelFunc
	onState   OnState
}

// Handle is returned by Start. Disposing it stops the workspace's watcher
// and returns the engine to idle.
type Handle struct {
	engine      *Engine
	path        string
	disposeOnce sync.Once
}

// Dispose stops the watcher (if any), best-effort flushes the cache, and
// emits a terminal idle state. Idempotent.
func (h *Handle) Dispose(ctx context.Context) error {
	var err error
	h.disposeOnce.Do(func() {
		err = h.engine.dispose(ctx, h.path)
	})
	return err
}

func (e *Engine) dispose(ctx context.Context, path string) error {
	e.mu.Lock()
	sess, ok := e.sessions[path]
	if ok {
		delete(e.sessions, path)
	}
	e.mu.Unlock()
	if !ok {
		return nil
	}

	if sess.watcher != nil {
		sess.watcher.Stop()
	}
	if sess.cancel != nil {
		sess.cancel()
	}

	if sess.cache != nil {
		if err := e.cacheStore.Save(ctx, sess.workspace.Path, sess.cache); err != nil {
			e.log.Warn("dispose: cache flush failed", "workspace", path, "error", err)
		}
	}

	if sess.onState != nil {
		sess.onState(State{Status: StatusIdle, Message: "stopped"})
	}
	return nil
}
