package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// sourceRepo creates a non-bare repository with one commit.
func sourceRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	for _, args := range [][]string{
		{"init", "-q"},
		{"-c", "user.name=test", "-c", "user.email=test@example.com", "commit", "-q", "--allow-empty", "-m", "init"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	return dir
}

func TestClient_CloneFetchRepoint(t *testing.T) {
	requireGit(t)

	src := sourceRepo(t)
	path := filepath.Join(t.TempDir(), "repos", "kb-dk", "site.git")

	c := NewClient(ClientOptions{Timeout: time.Minute})
	ctx := context.Background()

	require.NoError(t, c.CloneMirror(ctx, src, path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsMirror())

	url, err := c.RemoteURL(path)
	require.NoError(t, err)
	assert.Equal(t, src, url)

	require.NoError(t, c.FetchUpdates(ctx, path))

	other := sourceRepo(t)
	require.NoError(t, c.SetRemoteURL(ctx, path, other))

	url, err = c.RemoteURL(path)
	require.NoError(t, err)
	assert.Equal(t, other, url)

	require.NoError(t, c.FetchUpdates(ctx, path))
}

func TestClient_CloneFailure(t *testing.T) {
	requireGit(t)

	c := NewClient(ClientOptions{Timeout: time.Minute})
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	path := filepath.Join(t.TempDir(), "x.git")

	err := c.CloneMirror(context.Background(), missing, path)
	require.Error(t, err)

	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.NotZero(t, gitErr.ExitCode)
	assert.NotEmpty(t, gitErr.Stderr)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestClient_FetchNotARepository(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	err := NewClient(ClientOptions{}).FetchUpdates(context.Background(), dir)

	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.True(t, IsNotRepository(err))
}

func TestClient_MissingExecutable(t *testing.T) {
	c := NewClient(ClientOptions{GitPath: "git-does-not-exist-anywhere"})

	require.Error(t, c.Available())

	err := c.FetchUpdates(context.Background(), t.TempDir())

	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, -1, gitErr.ExitCode)
}

func TestClient_CanceledContext(t *testing.T) {
	requireGit(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(ClientOptions{}).FetchUpdates(ctx, t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_RemoteURLRejectsNonMirror(t *testing.T) {
	requireGit(t)

	src := sourceRepo(t)

	_, err := NewClient(ClientOptions{}).RemoteURL(filepath.Join(src, ".git"))
	require.ErrorIs(t, err, ErrNotMirror)
}

// TestClient_TimeoutKillsHelpers runs a stand-in git that leaves a child
// holding its output open, the way ssh does under a stalled fetch.
func TestClient_TimeoutKillsHelpers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	script := filepath.Join(t.TempDir(), "git")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 30 &\nsleep 30\n"), 0o755))

	c := NewClient(ClientOptions{GitPath: script, Timeout: 300 * time.Millisecond})

	start := time.Now()
	err := c.FetchUpdates(context.Background(), t.TempDir())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, WaitDelay, "git helpers kept the command alive")
	assert.NotEmpty(t, Hint(err))
}
