package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Common error messages from git
const (
	errMsgNotRepository    = "not a git repository"
	errMsgAuthFailed       = "Authentication failed"
	errMsgPermissionDenied = "Permission denied"
	errMsgRepoNotFound     = "Repository not found"
	errMsgAlreadyExists    = "already exists and is not an empty directory"
)

// GitError is returned when a git process exits unsuccessfully or cannot
// be started.
type GitError struct {
	Args     []string
	ExitCode int
	Stderr   string
	err      error
}

func (e *GitError) Error() string {
	cmd := "git " + strings.Join(SanitizeArgs(e.Args), " ")

	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.err != nil {
		msg = e.err.Error()
	}

	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s: exit status %d: %s", cmd, e.ExitCode, msg)
	}

	return fmt.Sprintf("%s: %s", cmd, msg)
}

func (e *GitError) Unwrap() error {
	return e.err
}

// IsNotRepository checks if the error indicates not a git repository
func IsNotRepository(err error) bool {
	return containsError(err, errMsgNotRepository)
}

// IsAuthRequired checks if the error indicates authentication is required
func IsAuthRequired(err error) bool {
	return containsError(err, errMsgAuthFailed) || containsError(err, errMsgPermissionDenied)
}

// IsRepoNotFound checks if the remote reported the repository as missing
func IsRepoNotFound(err error) bool {
	return containsError(err, errMsgRepoNotFound)
}

// IsAlreadyExists checks if a clone target was already occupied
func IsAlreadyExists(err error) bool {
	return containsError(err, errMsgAlreadyExists)
}

// Hint suggests what to check for a failed git invocation, or returns ""
// when the failure is not recognized.
func Hint(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "git timed out; raise --git-timeout for large repositories"
	case IsAuthRequired(err):
		return "authentication failed; check the SSH key or credentials for this host"
	case IsRepoNotFound(err):
		return "repository not found; it may be private, renamed or deleted"
	case IsNotRepository(err):
		return "the mirror directory is not a git repository; move it aside to re-clone"
	case IsAlreadyExists(err):
		return "the mirror path is occupied by a non-empty directory"
	default:
		return ""
	}
}

// containsError checks if the error contains a specific message
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return strings.Contains(strings.ToLower(gitErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}

// NewGitError creates a GitError from command output and error
func NewGitError(args []string, stderr string, err error) *GitError {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &GitError{
		Args:     args,
		ExitCode: exitCode,
		Stderr:   stderr,
		err:      err,
	}
}
