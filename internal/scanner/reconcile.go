package scanner

import (
	"context"
	"sort"

	"github.com/managed-index/indexctl/internal/clientcache"
	"github.com/managed-index/indexctl/internal/remote"
)

// enumerateCandidates returns the files to consider for (re)indexing and,
// for feature branches, the files that diff.deleted reports gone. On a base
// branch every eligible tracked file is a candidate; on a feature branch
// only the diff's added/modified files are.
func (s *Scanner) enumerateCandidates(ctx context.Context, workspace, branch string, isBase bool) (candidates, deletedVsBase []string, err error) {
	if isBase {
		tracked, err := s.prober.TrackedFiles(ctx, workspace)
		if err != nil {
			return nil, nil, err
		}
		var out []string
		for _, f := range tracked {
			if s.eligible(f) {
				out = append(out, f)
			}
		}
		sort.Strings(out)
		return out, nil, nil
	}

	base, err := s.prober.BaseBranch(ctx, workspace)
	if err != nil {
		return nil, nil, err
	}
	diff, err := s.prober.Diff(ctx, branch, base, workspace)
	if err != nil {
		return nil, nil, err
	}

	var out []string
	for _, f := range diff.Added {
		if s.eligible(f) {
			out = append(out, f)
		}
	}
	for _, f := range diff.Modified {
		if s.eligible(f) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out, diff.Deleted, nil
}

// reconcile decides which candidates actually need chunking: skip files
// the cache already has at the same hash, skip files
// the manifest already has at the same hash (adopting the manifest's record
// into the cache instead), and enqueue everything else.
func (s *Scanner) reconcile(workspace string, cache *clientcache.Cache, manifest *remote.Manifest, candidates []string) []string {
	manifestByPath := indexManifest(manifest)

	var toIndex []string
	for _, path := range candidates {
		_, hash, err := readAndHash(absPath(workspace, path))
		if err != nil {
			// Unreadable candidates are surfaced as per-file errors during
			// the upload stage instead, where Result.Errors is populated.
			toIndex = append(toIndex, path)
			continue
		}

		if !cache.ShouldIndex(path, hash) {
			continue
		}

		if entry, ok := manifestByPath[path]; ok && entry.FileHash == hash {
			cache.UpdateEntry(path, clientcache.FileEntry{
				Hash:               hash,
				LastIndexedEpochMS: nowEpochMS(),
				ChunkCount:         entry.ChunkCount,
			})
			continue
		}

		toIndex = append(toIndex, path)
	}
	return toIndex
}

// detectBaseBranchDeletions removes files present in the manifest but
// absent from the live base-branch listing: they are dropped from the
// cache and queued for server-side deletion.
func (s *Scanner) detectBaseBranchDeletions(ctx context.Context, cache *clientcache.Cache, manifest *remote.Manifest, liveFiles []string) {
	if manifest == nil {
		return
	}
	live := make(map[string]struct{}, len(liveFiles))
	for _, f := range liveFiles {
		live[f] = struct{}{}
	}

	var toDelete []string
	for _, entry := range manifest.Files {
		if _, ok := live[entry.FilePath]; !ok {
			toDelete = append(toDelete, entry.FilePath)
			cache.RemoveEntry(entry.FilePath)
		}
	}
	if len(toDelete) == 0 {
		return
	}

	branch := cache.GitBranch
	if err := s.remoteClient.DeleteFiles(ctx, s.organizationID, s.projectID, branch, toDelete); err != nil {
		s.log.Warn("base-branch deletion cleanup failed", "error", err, "files", len(toDelete))
	}
}

func indexManifest(m *remote.Manifest) map[string]remote.ManifestEntry {
	out := make(map[string]remote.ManifestEntry)
	if m == nil {
		return out
	}
	for _, e := range m.Files {
		out[e.FilePath] = e
	}
	return out
}
