// Package watcher monitors a workspace for file changes and delivers them
// to the scanner as debounced, ordered batches.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/managed-index/indexctl/internal/logging"
)

const (
	maxWatchedDirectories = 1000
	maxWatchDepth         = 10
)

var skippedDirNames = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	".indexctl":    {},
}

// Watcher recursively watches root for changes to files matching extSet,
// accumulating them into an ordered queue and delivering the queue to
// onBatch once debounce has elapsed with no further activity.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	extSet   map[string]struct{}
	debounce time.Duration
	onBatch  func(ctx context.Context, batch []Event)

	ctx    context.Context
	cancel context.CancelFunc

	queueMu sync.Mutex
	queue   []Event
	seen    map[string]int // filePath -> index in queue, for collapsing repeats

	timerMu sync.Mutex
	timer   *time.Timer

	dirCountMu sync.Mutex
	dirCount   int

	stopOnce sync.Once
	doneCh   chan struct{}
}

// New builds a Watcher rooted at root, watching files whose extension is in
// extSet, dispatching debounced batches to onBatch.
func New(root string, extSet map[string]struct{}, debounce time.Duration, onBatch func(ctx context.Context, batch []Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		root:     root,
		extSet:   extSet,
		debounce: debounce,
		onBatch:  onBatch,
		seen:     make(map[string]int),
		doneCh:   make(chan struct{}),
	}

	if err := w.addRecursively(root, 0); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins the watch loop in a background goroutine. It returns
// immediately; call Stop to shut down.
func (w *Watcher) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.run()
}

// Stop shuts the watcher down. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		w.fsw.Close()
	})
}

func (w *Watcher) run() {
	log := logging.New("watcher")
	defer close(w.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursively(event.Name, 0); err != nil {
						log.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			et, ok := classify(event)
			if !ok || w.extSet != nil && !w.matchesExt(event.Name) {
				continue
			}

			w.enqueue(Event{Type: et, FilePath: event.Name, Timestamp: time.Now().UnixMilli()})
			w.resetTimer(fireCh)

		case <-fireCh:
			w.flush(log)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

// classify maps an fsnotify op to an Event type. Only write/create/remove
// are of interest; rename is treated as a remove (fsnotify emits a
// matching create for the new name).
func classify(event fsnotify.Event) (EventType, bool) {
	switch {
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		return EventRemove, true
	case event.Op&fsnotify.Create != 0:
		return EventCreate, true
	case event.Op&fsnotify.Write != 0:
		return EventWrite, true
	default:
		return 0, false
	}
}

func (w *Watcher) matchesExt(path string) bool {
	_, ok := w.extSet[filepath.Ext(path)]
	return ok
}

// enqueue appends ev, collapsing a prior entry for the same file so the
// queue only ever holds the latest event per path while preserving the
// position of its first occurrence.
func (w *Watcher) enqueue(ev Event) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()

	if idx, ok := w.seen[ev.FilePath]; ok {
		w.queue[idx] = ev
		return
	}
	w.seen[ev.FilePath] = len(w.queue)
	w.queue = append(w.queue, ev)
}

// flush snapshots the queue, orders deletes before creates/writes, and
// dispatches the batch.
func (w *Watcher) flush(log *logging.Logger) {
	w.queueMu.Lock()
	if len(w.queue) == 0 {
		w.queueMu.Unlock()
		return
	}
	batch := w.queue
	w.queue = nil
	w.seen = make(map[string]int)
	w.queueMu.Unlock()

	ordered := make([]Event, 0, len(batch))
	for _, ev := range batch {
		if ev.Type == EventRemove {
			ordered = append(ordered, ev)
		}
	}
	for _, ev := range batch {
		if ev.Type != EventRemove {
			ordered = append(ordered, ev)
		}
	}

	if w.onBatch == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("watcher batch handler panicked", "recovered", r)
		}
	}()
	w.onBatch(w.ctx, ordered)
}

func (w *Watcher) resetTimer(fireCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		if !w.timer.Stop() {
			select {
			case <-w.timer.C:
			default:
			}
		}
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) addRecursively(root string, depth int) error {
	if depth > maxWatchDepth {
		return fmt.Errorf("watcher: max depth %d exceeded at %s", maxWatchDepth, root)
	}
	if _, skip := skippedDirNames[filepath.Base(root)]; skip {
		return nil
	}

	w.dirCountMu.Lock()
	if w.dirCount >= maxWatchedDirectories {
		count := w.dirCount
		w.dirCountMu.Unlock()
		return fmt.Errorf("watcher: directory limit reached (%d watched, max %d)", count, maxWatchedDirectories)
	}
	w.dirCountMu.Unlock()

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	if err := w.fsw.Add(root); err != nil {
		return fmt.Errorf("watcher: failed to watch %s: %w", root, err)
	}
	w.dirCountMu.Lock()
	w.dirCount++
	w.dirCountMu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, skip := skippedDirNames[entry.Name()]; skip {
			continue
		}
		if err := w.addRecursively(filepath.Join(root, entry.Name()), depth+1); err != nil {
			logging.New("watcher").Warn("skipping subdirectory", "path", entry.Name(), "error", err)
		}
	}
	return nil
}
