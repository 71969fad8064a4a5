// Package git runs the git executable for bare mirror maintenance.
//
// Only three operations are needed: clone --mirror, fetch and
// remote set-url. Each one runs under its own timeout and a non-zero exit is
// returned as a *GitError carrying the exit code and output.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/kb-dk/github-cloner/internal/encoding"
)

// DefaultRemote is the remote a mirror clone creates.
const DefaultRemote = "origin"

// WaitDelay bounds how long a canceled git may hold its output pipes open
// through processes that outlived the kill.
const WaitDelay = 5 * time.Second

// ClientOptions configures a Client.
type ClientOptions struct {
	// GitPath is the git executable; "git" looks it up on PATH.
	GitPath string

	// Timeout bounds every single invocation. Zero means no limit.
	Timeout time.Duration

	Logger *slog.Logger
}

// Client wraps git operations on bare mirrors.
type Client struct {
	GitPath string
	Timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a new git client
func NewClient(opts ClientOptions) *Client {
	gitPath := opts.GitPath
	if gitPath == "" {
		gitPath = "git"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		GitPath: gitPath,
		Timeout: opts.Timeout,
		logger:  logger,
	}
}

// Command creates a git command running in dir. Prompts are disabled so a
// missing credential fails instead of waiting on a terminal. When ctx ends
// the process group of git is killed.
func (c *Client) Command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.WaitDelay = WaitDelay
	setProcAttr(cmd)

	return cmd
}

// run executes one git command and converts failures to *GitError.
func (c *Client) run(ctx context.Context, dir string, args ...string) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	output, err := c.Command(ctx, dir, args...).CombinedOutput()

	c.logger.Debug("git",
		slog.Any("args", SanitizeArgs(args)),
		slog.String("dir", dir),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("ok", err == nil),
	)

	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}

	return NewGitError(args, string(output), err)
}

// CloneMirror runs "git clone --mirror url path", creating the parent
// directory of path first.
func (c *Client) CloneMirror(ctx context.Context, url, path string) error {
	if err := encoding.EnsureParentDir(path); err != nil {
		return err
	}

	return c.run(ctx, filepath.Dir(path), "clone", "--mirror", url, path)
}

// FetchUpdates runs "git fetch" inside the mirror. A mirror clone fetches
// every ref, so no refspec is given.
func (c *Client) FetchUpdates(ctx context.Context, path string) error {
	return c.run(ctx, path, "fetch")
}

// SetRemoteURL points the mirror's origin at url.
func (c *Client) SetRemoteURL(ctx context.Context, path, url string) error {
	return c.run(ctx, path, "remote", "set-url", DefaultRemote, url)
}

// RemoteURL reads origin's URL from the mirror's config file without
// running git. A config that is not a bare mirror of origin yields
// ErrNotMirror.
func (c *Client) RemoteURL(path string) (string, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return "", err
	}

	if !cfg.IsMirror() {
		return "", fmt.Errorf("%s: %w", path, ErrNotMirror)
	}

	remote, ok := cfg.Remotes[DefaultRemote]
	if !ok || remote.URL == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoRemote)
	}

	return remote.URL, nil
}

// Available reports whether the git executable can be found.
func (c *Client) Available() error {
	if _, err := exec.LookPath(c.GitPath); err != nil {
		return fmt.Errorf("git executable %q not found: %w", c.GitPath, err)
	}

	return nil
}

var (
	// ErrNoRemote means the mirror config has no usable origin.
	ErrNoRemote = errors.New("no origin remote configured")

	// ErrNotMirror means the directory holds a repository that is not a
	// bare mirror clone.
	ErrNotMirror = errors.New("not a bare mirror repository")
)
