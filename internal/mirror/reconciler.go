package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kb-dk/github-cloner/internal/encoding"
	"github.com/kb-dk/github-cloner/internal/git"
	"github.com/kb-dk/github-cloner/internal/model"
)

// State is the local state of a mirror path.
type State int

const (
	StateAbsent State = iota
	StatePresent
)

func (s State) String() string {
	if s == StatePresent {
		return "present"
	}

	return "absent"
}

// Git is the subset of git the reconciler drives. *git.Client implements it.
type Git interface {
	CloneMirror(ctx context.Context, url, path string) error
	FetchUpdates(ctx context.Context, path string) error
	SetRemoteURL(ctx context.Context, path, url string) error
	RemoteURL(path string) (string, error)
}

var _ Git = (*git.Client)(nil)

// Outcome is the result of reconciling one repository.
type Outcome struct {
	Repository model.Repository
	Path       string
	Action     model.Action
	Err        error
	Duration   time.Duration
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.Action == model.ActionFailed
}

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	// RepointRemote makes an update compare origin's URL with the listed
	// clone URL and rewrite it when they differ.
	RepointRemote bool

	Logger *slog.Logger
}

// Reconciler clones absent mirrors and updates present ones.
type Reconciler struct {
	git     Git
	repoint bool
	logger  *slog.Logger
	locks   *PathLocks
}

// NewReconciler creates a reconciler driving g.
func NewReconciler(g Git, opts ReconcilerOptions) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		git:     g,
		repoint: opts.RepointRemote,
		logger:  logger,
		locks:   NewPathLocks(),
	}
}

// Probe derives the state of path from the filesystem.
func Probe(path string) (State, error) {
	kind, err := encoding.StatPath(path)
	if err != nil {
		return StateAbsent, fmt.Errorf("stat %s: %w", path, err)
	}

	switch kind {
	case encoding.PathMissing:
		return StateAbsent, nil
	case encoding.PathDir:
		return StatePresent, nil
	default:
		return StateAbsent, fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
}

// MirrorPath returns <dest>/<kind>/<owner>/<identifier>.git.
func MirrorPath(dest string, owner model.Owner, kind model.CollectionKind, repo model.Repository) string {
	return filepath.Join(dest, kind.PathSegment(), owner.Name, repo.DirName())
}

// Reconcile brings the mirror at path in line with repo. It never returns
// an error; failures are reported in the Outcome.
func (r *Reconciler) Reconcile(ctx context.Context, repo model.Repository, path string) Outcome {
	unlock := r.locks.Lock(path)
	defer unlock()

	start := time.Now()
	out := Outcome{Repository: repo, Path: path}

	state, err := Probe(path)
	if err != nil {
		out.Action, out.Err = model.ActionFailed, err
		out.Duration = time.Since(start)

		return out
	}

	switch state {
	case StateAbsent:
		out.Action, out.Err = model.ActionCloned, r.git.CloneMirror(ctx, repo.CloneURL, path)
	case StatePresent:
		out.Action, out.Err = model.ActionUpdated, r.update(ctx, repo, path)
	}

	if out.Err != nil {
		out.Action = model.ActionFailed
	}

	out.Duration = time.Since(start)

	r.logger.Debug("reconciled",
		slog.String("path", path),
		slog.String("state", state.String()),
		slog.String("action", string(out.Action)),
		slog.Duration("duration", out.Duration),
	)

	return out
}

// update fetches into an existing mirror. A directory holding some other
// kind of repository is left alone.
func (r *Reconciler) update(ctx context.Context, repo model.Repository, path string) error {
	current, readErr := r.git.RemoteURL(path)
	if errors.Is(readErr, git.ErrNotMirror) {
		return readErr
	}

	if r.repoint {
		if readErr != nil {
			r.logger.Debug("cannot read origin url, resetting it",
				slog.String("path", path),
				slog.String("error", readErr.Error()),
			)
		}

		if readErr != nil || current != repo.CloneURL {
			if err := r.git.SetRemoteURL(ctx, path, repo.CloneURL); err != nil {
				return err
			}

			if readErr == nil {
				r.logger.Info("origin url changed",
					slog.String("path", path),
					slog.String("from", git.SanitizeURL(current)),
					slog.String("to", git.SanitizeURL(repo.CloneURL)),
				)
			}
		}
	}

	return r.git.FetchUpdates(ctx, path)
}
