package gitprobe

import (
	"context"
	"strings"
)

// Diff computes the set of files added, modified, and deleted on feature
// since it diverged from base. Renames are split into a delete of the old
// path and an add of the new path; copies become an add of the new path.
// Unrecognized status letters are ignored.
func (p *prober) Diff(ctx context.Context, feature, base, workspace string) (Diff, error) {
	mergeBase, err := run(ctx, workspace, "merge-base", "merge-base", base, feature)
	if err != nil {
		return Diff{}, err
	}
	mergeBase = strings.TrimSpace(mergeBase)

	out, err := run(ctx, workspace, "diff --name-status", "diff", "--name-status", mergeBase+".."+feature)
	if err != nil {
		return Diff{}, err
	}

	return parseNameStatus(out), nil
}

// parseNameStatus parses `git diff --name-status` output into a Diff.
// Each line is "{STATUS}\t{path}" or, for renames/copies,
// "{STATUS}\t{oldPath}\t{newPath}". Paths may themselves contain tabs, so
// only the first tab-delimited token is treated as the status.
func parseNameStatus(output string) Diff {
	var diff Diff

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		status := parts[0]
		rest := parts[1:]
		path := strings.Join(rest, "\t")

		switch {
		case strings.HasPrefix(status, "R"):
			if len(rest) >= 2 {
				diff.Deleted = append(diff.Deleted, rest[0])
				diff.Added = append(diff.Added, rest[1])
			}
		case strings.HasPrefix(status, "C"):
			if len(rest) >= 2 {
				diff.Added = append(diff.Added, rest[1])
			} else {
				diff.Added = append(diff.Added, path)
			}
		case status == "A":
			diff.Added = append(diff.Added, path)
		case status == "M":
			diff.Modified = append(diff.Modified, path)
		case status == "D":
			diff.Deleted = append(diff.Deleted, path)
		}
	}

	return diff
}
