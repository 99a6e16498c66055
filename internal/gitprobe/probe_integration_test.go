package gitprobe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests exercise the real Prober against real git repositories.
// They run sequentially (no t.Parallel()) to avoid contention over shared
// process/file-descriptor limits.

func TestProberIntegration(t *testing.T) {
	ctx := context.Background()
	p := New()

	t.Run("CurrentBranch on main", func(t *testing.T) {
		dir := createTestGitRepo(t)
		branch, err := p.CurrentBranch(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, "main", branch)
	})

	t.Run("CurrentBranch on feature branch", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "-b", "feature/test")
		branch, err := p.CurrentBranch(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, "feature/test", branch)
	})

	t.Run("CurrentBranch detached HEAD", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "HEAD~0")
		branch, err := p.CurrentBranch(ctx, dir)
		require.NoError(t, err)
		assert.Contains(t, branch, "detached-")
	})

	t.Run("IsRepo false on non-git directory", func(t *testing.T) {
		dir := t.TempDir()
		assert.False(t, p.IsRepo(ctx, dir))
	})

	t.Run("TrackedFiles lists committed files", func(t *testing.T) {
		dir := createTestGitRepo(t)
		files, err := p.TrackedFiles(ctx, dir)
		require.NoError(t, err)
		assert.Contains(t, files, "README.md")
	})

	t.Run("BaseBranch falls back to main", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "-b", "feature/x")
		base, err := p.BaseBranch(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, "main", base)
	})

	t.Run("BaseBranch prefers remote default over main when both verify", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "branch", "canary")
		runGitCmd(t, dir, "update-ref", "refs/remotes/origin/canary", "HEAD")
		runGitCmd(t, dir, "symbolic-ref", "refs/remotes/origin/HEAD", "refs/remotes/origin/canary")

		base, err := p.BaseBranch(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, "canary", base)
	})

	t.Run("Diff reports added file on feature branch", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "-b", "feature/x")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "new.go"), []byte("package x\n"), 0644))
		runGitCmd(t, dir, "add", "new.go")
		runGitCmd(t, dir, "commit", "-m", "add new.go")

		diff, err := p.Diff(ctx, "feature/x", "main", dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"new.go"}, diff.Added)
		assert.Empty(t, diff.Modified)
		assert.Empty(t, diff.Deleted)
	})

	t.Run("Diff reports modified and deleted files", func(t *testing.T) {
		dir := createTestGitRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "gone.go"), []byte("package x\n"), 0644))
		runGitCmd(t, dir, "add", "gone.go")
		runGitCmd(t, dir, "commit", "-m", "add gone.go")

		runGitCmd(t, dir, "checkout", "-b", "feature/y")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\nmore\n"), 0644))
		runGitCmd(t, dir, "add", "README.md")
		require.NoError(t, os.Remove(filepath.Join(dir, "gone.go")))
		runGitCmd(t, dir, "add", "gone.go")
		runGitCmd(t, dir, "commit", "-m", "modify and delete")

		diff, err := p.Diff(ctx, "feature/y", "main", dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"README.md"}, diff.Modified)
		assert.Equal(t, []string{"gone.go"}, diff.Deleted)
	})
}

func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "git init failed")

	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")

	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test\n"), 0644))
	runGitCmd(t, dir, "add", "README.md")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}
