package gitprobe

import (
	"context"
	"strings"
)

// Mock is a hand-written fake Prober for tests that don't want to exercise
// a real git binary against a temp repository.
type Mock struct {
	Repo              bool
	Branch            string
	Commit            string
	Remote            string
	Uncommitted       bool
	Files             []string
	DefaultBranch     string
	DefaultBranchErr  error
	Base              string
	DiffResult        Diff
	DiffErr           error
	CurrentBranchErr  error
}

// NewMock returns a Mock with reasonable defaults (repo on "main").
func NewMock() *Mock {
	return &Mock{
		Repo:          true,
		Branch:        "main",
		Commit:        "0000000000000000000000000000000000000000",
		DefaultBranch: "main",
		Base:          "main",
	}
}

func (m *Mock) IsRepo(ctx context.Context, workspace string) bool { return m.Repo }

func (m *Mock) CurrentBranch(ctx context.Context, workspace string) (string, error) {
	if m.CurrentBranchErr != nil {
		return "", m.CurrentBranchErr
	}
	return m.Branch, nil
}

func (m *Mock) CurrentCommit(ctx context.Context, workspace string) (string, error) {
	return m.Commit, nil
}

func (m *Mock) RemoteURL(ctx context.Context, workspace string) (string, error) {
	return m.Remote, nil
}

func (m *Mock) HasUncommitted(ctx context.Context, workspace string) (bool, error) {
	return m.Uncommitted, nil
}

func (m *Mock) TrackedFiles(ctx context.Context, workspace string) ([]string, error) {
	return m.Files, nil
}

func (m *Mock) DefaultBranchFromRemote(ctx context.Context, workspace string) (string, error) {
	if m.DefaultBranchErr != nil {
		return "", m.DefaultBranchErr
	}
	return m.DefaultBranch, nil
}

func (m *Mock) BaseBranch(ctx context.Context, workspace string) (string, error) {
	return m.Base, nil
}

func (m *Mock) IsBaseBranch(ctx context.Context, name string, workspace string) bool {
	for _, b := range []string{"main", "master", "develop", "development"} {
		if strings.EqualFold(b, name) {
			return true
		}
	}
	return m.DefaultBranch != "" && strings.EqualFold(m.DefaultBranch, name)
}

func (m *Mock) Diff(ctx context.Context, feature, base, workspace string) (Diff, error) {
	if m.DiffErr != nil {
		return Diff{}, m.DiffErr
	}
	return m.DiffResult, nil
}
