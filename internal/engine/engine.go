// Package engine is the orchestrator: the public API an editor host embeds
// to start/stop indexing a workspace, run searches, and observe lifecycle
// state. It ties together git context discovery, the client cache, the
// remote client, the scanner, and the watcher.
package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/managed-index/indexctl/internal/clientcache"
	"github.com/managed-index/indexctl/internal/config"
	"github.com/managed-index/indexctl/internal/gitprobe"
	"github.com/managed-index/indexctl/internal/logging"
	"github.com/managed-index/indexctl/internal/remote"
	"github.com/managed-index/indexctl/internal/scanner"
)

// Workspace identifies one git checkout plus the tenant it indexes
// against. A host embeds one Engine per process and may drive many
// Workspaces (e.g. one per open folder) through it concurrently.
type Workspace struct {
	Path           string
	OrganizationID string
	ProjectID      string
}

// Engine is the top-level entry point. One Engine instance owns every
// active session (one per workspace path) and the shared, stateless
// collaborators (prober, remote client, cache store) they're built from.
type Engine struct {
	cfg          config.Config
	prober       gitprobe.Prober
	cacheStore   *clientcache.Store
	remoteClient *remote.Client
	log          *logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithProber overrides the git prober, e.g. with gitprobe.NewMock in tests.
func WithProber(p gitprobe.Prober) Option {
	return func(e *Engine) { e.prober = p }
}

// WithRemoteClient overrides the remote client, e.g. to point at a test
// server or a fixed token/base-URL pair instead of deriving one from the
// environment.
func WithRemoteClient(c *remote.Client) Option {
	return func(e *Engine) { e.remoteClient = c }
}

// WithCacheStore overrides the client cache store, e.g. to root it at a
// temp directory in tests instead of the host's real global storage dir.
func WithCacheStore(s *clientcache.Store) Option {
	return func(e *Engine) { e.cacheStore = s }
}

// WithGlobalStorageDir builds a default cache Store rooted at dir, using
// whatever prober the Engine has at the point options are applied. Apply
// WithProber first if both are given, since option order matters here.
func WithGlobalStorageDir(dir string) Option {
	return func(e *Engine) { e.cacheStore = clientcache.NewStore(dir, e.prober) }
}

// New builds an Engine from cfg. By default it derives a remote client
// from cfg.Remote.TokenEnvVar's environment value and
// remote.DefaultDeriveBaseURL, a real gitprobe.Prober, and a cache store
// rooted at a per-user indexctl directory; opts override any of these.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		prober:   gitprobe.New(),
		log:      logging.New("engine"),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.remoteClient == nil {
		token := os.Getenv(cfg.Remote.TokenEnvVar)
		timeout := time.Duration(cfg.Remote.TimeoutSec) * time.Second
		e.remoteClient = remote.NewClient(token, remote.DefaultDeriveBaseURL, remote.WithTimeout(timeout))
	}
	if e.cacheStore == nil {
		e.cacheStore = clientcache.NewStore(defaultGlobalStorageDir(), e.prober)
	}
	return e
}

func defaultGlobalStorageDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".indexctl-cache"
	}
	return dir + "/indexctl"
}

// Start validates ws is a git repository, reconciles it against the remote
// manifest via one Scanner pass, and, if anything was indexed and
// cfg.Watcher.Enabled is set, installs a Watcher for incremental updates. onState is invoked synchronously with
// every lifecycle transition; pass NoOpOnState if you don't need them.
func (e *Engine) Start(ctx context.Context, ws Workspace, onState OnState) (*Handle, error) {
	if onState == nil {
		onState = NoOpOnState
	}

	e.dispose(ctx, ws.Path)

	if !e.prober.IsRepo(ctx, ws.Path) {
		err := &NotARepoError{Path: ws.Path}
		onState(State{Status: StatusError, Message: err.Error(), Err: err})
		return nil, err
	}

	branch, err := e.prober.CurrentBranch(ctx, ws.Path)
	if err != nil {
		onState(State{Status: StatusError, Message: "failed to determine current branch: " + err.Error(), Err: err})
		return nil, err
	}

	cache, err := e.cacheStore.Load(ctx, ws.Path)
	if err != nil {
		cache = clientcache.Empty(branch)
	}

	manifest, _, err := e.remoteClient.Manifest(ctx, ws.OrganizationID, ws.ProjectID, branch)
	if err != nil {
		e.log.Warn("manifest fetch failed, scanning without it", "workspace", ws.Path, "error", err)
		manifest = nil
	}

	sc := scanner.New(e.cfg, e.prober, e.remoteClient, ws.OrganizationID, ws.ProjectID)

	onState(State{Status: StatusScanning, Message: "starting scan", GitBranch: branch})

	result, err := sc.Scan(ctx, ws.Path, cache, manifest, e.flushFunc(ws.Path), func(processed, total, chunks int) {
		onState(State{
			Status:    StatusScanning,
			Message:   fmt.Sprintf("Scanning: %d/%d files (%d chunks)", processed, total, chunks),
			GitBranch: branch,
		})
	})
	if err != nil {
		onState(State{Status: StatusError, Message: "scan failed: " + err.Error(), Err: err, GitBranch: branch})
		return nil, err
	}
	if len(result.Errors) > 0 {
		e.log.Warn("scan finished with per-file errors", "workspace", ws.Path, "count", len(result.Errors), "summary", summarizeErrors(result.Errors))
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	sess := &session{
		workspace: ws,
		branch:    branch,
		cache:     cache,
		scanner:   sc,
		cancel:    cancel,
		onState:   onState,
	}

	if result.FilesProcessed > 0 || result.ChunksIndexed > 0 {
		if e.cfg.Watcher.Enabled {
			w, werr := e.installWatcher(sessCtx, ws, sess)
			if werr != nil {
				e.log.Warn("watcher installation failed, continuing without live updates", "workspace", ws.Path, "error", werr)
			} else {
				sess.watcher = w
			}
		}
		onState(State{
			Status:          StatusWatching,
			Message:         "watching for changes",
			GitBranch:       branch,
			TotalFiles:      result.FilesProcessed,
			TotalChunks:     result.ChunksIndexed,
			LastSyncEpochMS: nowEpochMS(),
		})
	} else {
		cancel()
		onState(State{Status: StatusIdle, Message: "no files indexed", GitBranch: branch})
	}

	e.mu.Lock()
	e.sessions[ws.Path] = sess
	e.mu.Unlock()

	return &Handle{engine: e, path: ws.Path}, nil
}

func (e *Engine) flushFunc(workspace string) func(*clientcache.Cache) error {
	return func(c *clientcache.Cache) error {
		return e.cacheStore.Save(context.Background(), workspace, c)
	}
}

// Search resolves ws's current branch, computes the set of locally
// deleted files to mask on a feature branch (empty on a base branch), and
// forwards the query to the remote service.
func (e *Engine) Search(ctx context.Context, ws Workspace, query string, path string) ([]remote.SearchResult, error) {
	branch, err := e.prober.CurrentBranch(ctx, ws.Path)
	if err != nil {
		return nil, err
	}

	base, err := e.prober.BaseBranch(ctx, ws.Path)
	if err != nil {
		base = branch
	}

	exclude := []string{}
	if !e.prober.IsBaseBranch(ctx, branch, ws.Path) {
		diff, derr := e.prober.Diff(ctx, branch, base, ws.Path)
		if derr != nil {
			e.log.Warn("diff failed computing search exclusions, searching without them", "workspace", ws.Path, "error", derr)
		} else if diff.Deleted != nil {
			exclude = diff.Deleted
		}
	}

	return e.remoteClient.Search(ctx, remote.SearchRequest{
		Query:          query,
		OrganizationID: ws.OrganizationID,
		ProjectID:      ws.ProjectID,
		PreferBranch:   branch,
		FallbackBranch: base,
		ExcludeFiles:   exclude,
		Path:           path,
	})
}

// State reports ws's current lifecycle status, derived from the client
// cache and the live session (if any). A running session whose in-memory
// cache still belongs to a branch other than the one currently checked
// out (the user switched branches without restarting the session) reports
// idle with guidance to re-scan, since the watcher is indexing the wrong
// branch's delta.
func (e *Engine) State(ctx context.Context, ws Workspace) State {
	branch, err := e.prober.CurrentBranch(ctx, ws.Path)
	if err != nil {
		return State{Status: StatusError, Message: "failed to determine current branch: " + err.Error(), Err: err}
	}

	e.mu.Lock()
	sess, active := e.sessions[ws.Path]
	e.mu.Unlock()

	if active && sess.cache.GitBranch != branch {
		return State{Status: StatusIdle, Message: "re-scan needed", GitBranch: branch}
	}

	cache, err := e.cacheStore.Load(ctx, ws.Path)
	if err != nil {
		cache = clientcache.Empty(branch)
	}

	totalChunks := 0
	for _, entry := range cache.Files {
		totalChunks += entry.ChunkCount
	}

	if active && sess.watcher != nil {
		return State{
			Status:      StatusWatching,
			Message:     "watching for changes",
			GitBranch:   branch,
			TotalFiles:  len(cache.Files),
			TotalChunks: totalChunks,
		}
	}

	return State{
		Status:      StatusIdle,
		Message:     "idle",
		GitBranch:   branch,
		TotalFiles:  len(cache.Files),
		TotalChunks: totalChunks,
	}
}

// Clear stops any active session for ws, deletes the branch's remote
// index, and resets the local cache for it. This is the "forget
// everything and start over" operation a host exposes as e.g. a
// "Clear index" button.
func (e *Engine) Clear(ctx context.Context, ws Workspace) error {
	e.dispose(ctx, ws.Path)

	branch, err := e.prober.CurrentBranch(ctx, ws.Path)
	if err != nil {
		return err
	}
	if err := e.remoteClient.DeleteBranch(ctx, ws.OrganizationID, ws.ProjectID, branch); err != nil {
		return err
	}
	if err := e.cacheStore.Save(ctx, ws.Path, clientcache.Empty(branch)); err != nil {
		e.log.Warn("clear: cache reset failed", "workspace", ws.Path, "error", err)
	}
	return nil
}

// DeleteBranch removes all server-side indexed data for ws's current
// branch, without touching any active session or the local cache.
func (e *Engine) DeleteBranch(ctx context.Context, ws Workspace) error {
	branch, err := e.prober.CurrentBranch(ctx, ws.Path)
	if err != nil {
		return err
	}
	return e.remoteClient.DeleteBranch(ctx, ws.OrganizationID, ws.ProjectID, branch)
}

// DeleteProject removes all server-side indexed data for ws's project,
// across every branch.
func (e *Engine) DeleteProject(ctx context.Context, ws Workspace) error {
	return e.remoteClient.DeleteProject(ctx, ws.OrganizationID, ws.ProjectID)
}

func nowEpochMS() int64 { return time.Now().UnixMilli() }
