package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/kb-dk/github-cloner/internal/config"
	"github.com/kb-dk/github-cloner/internal/git"
	"github.com/kb-dk/github-cloner/internal/mapper"
	"github.com/kb-dk/github-cloner/internal/mirror"
	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/kb-dk/github-cloner/internal/remote"
	"github.com/kb-dk/github-cloner/internal/store"
	"golang.org/x/sync/errgroup"
)

// summaryWidth is how many runes of a description the progress line shows.
const summaryWidth = 60

// Lister lists the raw items of one owner collection.
type Lister interface {
	ListAll(ctx context.Context, owner model.Owner, kind model.CollectionKind) ([]model.RawItem, error)
}

// Reconciler brings one local mirror in line with its remote.
type Reconciler interface {
	Reconcile(ctx context.Context, repo model.Repository, path string) mirror.Outcome
}

// MetadataWriter writes the sidecar files of a mirror.
type MetadataWriter interface {
	Write(path string, repo model.Repository) error
}

var (
	_ Lister         = (*remote.Lister)(nil)
	_ Reconciler     = (*mirror.Reconciler)(nil)
	_ MetadataWriter = (*mirror.MetadataWriter)(nil)
)

// FleetOptions configures a Fleet.
type FleetOptions struct {
	Config     config.Config
	Lister     Lister
	Reconciler Reconciler
	Metadata   MetadataWriter
	Journal    store.Store
	Logger     *slog.Logger

	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

// Fleet runs mirror passes over a set of targets.
type Fleet struct {
	cfg        config.Config
	lister     Lister
	reconciler Reconciler
	metadata   MetadataWriter
	journal    store.Store
	logger     *slog.Logger
	out        *progress
	locks      *mirror.PathLocks
}

// NewFleet creates a Fleet. Lister and Reconciler are required; the other
// collaborators have defaults.
func NewFleet(opts FleetOptions) (*Fleet, error) {
	if opts.Lister == nil {
		return nil, errors.New("fleet: lister is required")
	}

	if opts.Reconciler == nil && !opts.Config.DryRun {
		return nil, errors.New("fleet: reconciler is required")
	}

	f := &Fleet{
		cfg:        opts.Config,
		lister:     opts.Lister,
		reconciler: opts.Reconciler,
		metadata:   opts.Metadata,
		journal:    opts.Journal,
		logger:     opts.Logger,
		out:        newProgress(opts.Out),
		locks:      mirror.NewPathLocks(),
	}

	if f.metadata == nil {
		f.metadata = mirror.NewMetadataWriter()
	}

	if f.journal == nil {
		f.journal = store.Discard
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	if f.cfg.Parallel < 1 {
		f.cfg.Parallel = 1
	}

	return f, nil
}

// run is the state of one Run call.
type run struct {
	id      string
	started time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	summary Summary
}

func (r *run) add(fn func(s *Summary)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(&r.summary)
}

// Run processes targets in order, each target's kinds in order. The
// returned error is non-nil only when ctx ends the run early; per
// repository and per pass failures are in the Summary.
func (f *Fleet) Run(ctx context.Context, targets []model.Target) (*Summary, error) {
	r := &run{
		id:      uuid.NewString(),
		started: time.Now(),
	}
	r.logger = f.logger.With(slog.String("run_id", r.id))
	r.summary = Summary{RunID: r.id, DryRun: f.cfg.DryRun}

	if !f.cfg.DryRun {
		if err := f.journal.StartRun(model.Run{ID: r.id, StartedAt: r.started}); err != nil {
			r.logger.Warn("journal unavailable", slog.String("error", err.Error()))
		}
	}

	r.logger.Info("run started",
		slog.Int("targets", len(targets)),
		slog.String("dest", f.cfg.Dest),
		slog.Int("parallel", f.cfg.Parallel),
		slog.Bool("dry_run", f.cfg.DryRun),
	)

	var runErr error

targets:
	for _, target := range targets {
		for _, kind := range target.Kinds {
			if err := ctx.Err(); err != nil {
				runErr = err
				break targets
			}

			f.pass(ctx, r, target.Owner, kind)
		}
	}

	if runErr == nil {
		runErr = ctx.Err()
	}

	r.summary.Duration = time.Since(r.started)

	if !f.cfg.DryRun {
		if err := f.journal.FinishRun(r.summary.journalRun(r.started)); err != nil {
			r.logger.Warn("failed to finish journal run", slog.String("error", err.Error()))
		}
	}

	r.logger.Info("run finished",
		slog.Int("cloned", r.summary.Cloned),
		slog.Int("updated", r.summary.Updated),
		slog.Int("failed", r.summary.Failed),
		slog.Int("skipped", r.summary.Skipped),
		slog.Int("listing_failures", r.summary.ListingFailures),
		slog.Duration("duration", r.summary.Duration),
	)

	summary := r.summary

	return &summary, runErr
}

// pass handles one owner/kind combination.
func (f *Fleet) pass(ctx context.Context, r *run, owner model.Owner, kind model.CollectionKind) {
	logger := r.logger.With(slog.String("owner", owner.String()), slog.String("kind", kind.String()))
	label := kind.PathSegment() + "/" + owner.Name

	items, err := f.lister.ListAll(ctx, owner, kind)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		if owner.Kind == model.OwnerOrg && kind == model.KindGist && remote.IsNotFound(err) {
			logger.Warn("organizations have no gist listing, skipping")
			return
		}

		logger.Error("listing failed", slog.String("error", err.Error()))
		f.out.warn(label, err)

		r.add(func(s *Summary) {
			s.ListingFailures++
			s.Errors = append(s.Errors, fmt.Errorf("list %s: %w", label, err))
		})

		return
	}

	repos, mapErr := mapper.Map(items, kind)
	if mapErr != nil {
		var merr *multierror.Error
		if errors.As(mapErr, &merr) {
			for _, e := range merr.Errors {
				logger.Warn("skipping item", slog.String("error", e.Error()))
			}

			r.add(func(s *Summary) {
				s.Skipped += len(merr.Errors)
				for _, e := range merr.Errors {
					s.Errors = append(s.Errors, fmt.Errorf("map %s: %w", label, e))
				}
			})
		}
	}

	logger.Debug("listed", slog.Int("items", len(items)), slog.Int("repositories", len(repos)))

	var (
		g    errgroup.Group
		seen = make(map[string]bool, len(repos))
	)

	g.SetLimit(f.cfg.Parallel)

	for _, repo := range repos {
		if ctx.Err() != nil {
			break
		}

		if seen[repo.Identifier] {
			logger.Warn("duplicate identifier in listing", slog.String("identifier", repo.Identifier))
			r.add(func(s *Summary) { s.Skipped++ })

			continue
		}

		seen[repo.Identifier] = true

		g.Go(func() error {
			f.mirrorOne(ctx, r, logger, owner, kind, repo)
			return nil
		})
	}

	_ = g.Wait()
}

// mirrorOne reconciles a single repository, writes its metadata and
// journals the outcome.
func (f *Fleet) mirrorOne(ctx context.Context, r *run, logger *slog.Logger, owner model.Owner, kind model.CollectionKind, repo model.Repository) {
	path := mirror.MirrorPath(f.cfg.Dest, owner, kind, repo)
	label := kind.PathSegment() + "/" + owner.Name + "/" + repo.Identifier

	if f.cfg.DryRun {
		f.plan(r, label, path)
		return
	}

	f.out.item(label, repo.Summary(summaryWidth))

	// The sidecars belong to the mirror, so the path stays locked until
	// they are written.
	unlock := f.locks.Lock(path)
	defer unlock()

	started := time.Now()
	outcome := f.reconciler.Reconcile(ctx, repo, path)

	rec := model.MirrorRecord{
		RunID:      r.id,
		Owner:      owner.Name,
		OwnerKind:  owner.Kind,
		Kind:       kind,
		Identifier: repo.Identifier,
		CloneURL:   repo.CloneURL,
		Path:       path,
		Action:     outcome.Action,
		StartedAt:  started,
	}

	var errs []error

	if outcome.Failed() {
		logger.Warn("mirror failed",
			slog.String("identifier", repo.Identifier),
			slog.String("path", path),
			slog.String("error", outcome.Err.Error()),
		)
		f.out.warn(label, outcome.Err)

		errs = append(errs, fmt.Errorf("%s: %w", label, outcome.Err))
		rec.Error = outcome.Err.Error()
	} else if err := f.metadata.Write(path, repo); err != nil {
		logger.Warn("metadata not written",
			slog.String("identifier", repo.Identifier),
			slog.String("error", err.Error()),
		)
		f.out.warn(label, err)

		errs = append(errs, fmt.Errorf("%s: %w", label, err))
		rec.Error = err.Error()
	}

	rec.FinishedAt = time.Now()

	if err := f.journal.RecordOutcome(rec); err != nil {
		logger.Warn("failed to journal outcome",
			slog.String("identifier", repo.Identifier),
			slog.String("error", err.Error()),
		)
	}

	r.add(func(s *Summary) {
		s.count(outcome.Action)
		s.Errors = append(s.Errors, errs...)
	})
}

// plan reports what a real run would do with path.
func (f *Fleet) plan(r *run, label, path string) {
	state, err := mirror.Probe(path)
	if err != nil {
		f.out.warn(label, err)

		r.add(func(s *Summary) {
			s.Failed++
			s.Errors = append(s.Errors, fmt.Errorf("%s: %w", label, err))
		})

		return
	}

	action := model.ActionCloned
	verb := "clone"

	if state == mirror.StatePresent {
		action, verb = model.ActionUpdated, "update"
	}

	f.out.plan(verb, label, path)
	r.add(func(s *Summary) { s.count(action) })
}

// progress serializes progress lines so parallel workers never interleave
// within a line.
type progress struct {
	mu sync.Mutex
	w  io.Writer

	add  lipgloss.Style
	fail lipgloss.Style
	dim  lipgloss.Style
}

func newProgress(w io.Writer) *progress {
	if w == nil {
		w = io.Discard
	}

	renderer := lipgloss.NewRenderer(w)

	return &progress{
		w:    w,
		add:  renderer.NewStyle().Foreground(lipgloss.Color("10")),
		fail: renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		dim:  renderer.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (p *progress) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *progress) item(label, summary string) {
	p.printf("%s %s - %s\n", p.add.Render("+"), label, summary)
}

func (p *progress) warn(label string, err error) {
	p.printf("%s %s: %v\n", p.fail.Render("!"), label, err)

	if hint := git.Hint(err); hint != "" {
		p.printf("  %s\n", p.dim.Render(hint))
	}
}

func (p *progress) plan(verb, label, path string) {
	p.printf("%-6s %s %s\n", verb, label, p.dim.Render("-> "+path))
}
