package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kb-dk/github-cloner/internal/auth"
	"github.com/kb-dk/github-cloner/internal/config"
	"github.com/kb-dk/github-cloner/internal/core"
	"github.com/kb-dk/github-cloner/internal/git"
	"github.com/kb-dk/github-cloner/internal/mirror"
	"github.com/kb-dk/github-cloner/internal/remote"
	"github.com/kb-dk/github-cloner/internal/store"
	"github.com/spf13/cobra"
)

// failuresError is returned when the run finished but some of it failed.
// The details were already printed as warnings.
type failuresError struct {
	summary *core.Summary
}

func (e *failuresError) Error() string {
	return fmt.Sprintf("%d repositories failed, %d listings failed, %d items skipped",
		e.summary.Failed, e.summary.ListingFailures, e.summary.Skipped)
}

func (e *failuresError) Unwrap() error {
	return e.summary.Err()
}

// loadConfig layers defaults, environment and command line flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return config.Config{}, err
	}

	if cfg.Dest, err = expandPath(cfg.Dest); err != nil {
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func runMirror(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ValidateTargets(); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.JSONLogs)

	token, err := auth.NewGitHubResolver(cfg.Token).Resolve()
	if err != nil {
		return err
	}

	if token.Anonymous() {
		logger.Warn("no GitHub token found, listing public data with anonymous rate limits")
	} else {
		logger.Debug("token resolved", slog.String("source", token.Name))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fleet, closeFleet, err := buildFleet(ctx, cmd, cfg, token.Token, logger)
	if err != nil {
		return err
	}
	defer closeFleet()

	summary, runErr := fleet.Run(ctx, cfg.Targets())

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	core.PrintSummary(cmd.OutOrStdout(), summary)

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}

	if summary.Err() != nil {
		return &failuresError{summary: summary}
	}

	return nil
}

// buildFleet wires the GitHub client, git, journal and fleet for cfg. The
// returned func closes the journal.
func buildFleet(ctx context.Context, cmd *cobra.Command, cfg config.Config, token string, logger *slog.Logger) (*core.Fleet, func(), error) {
	client, err := remote.NewGitHubClient(ctx, remote.ClientOptions{
		BaseURL: cfg.APIURL,
		Token:   token,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	lister := remote.NewLister(client, remote.ListerOptions{
		PageSize:          cfg.PerPage,
		StrictContentType: cfg.StrictContentType,
		Logger:            logger,
	})

	gitClient := git.NewClient(git.ClientOptions{
		GitPath: cfg.GitPath,
		Timeout: cfg.GitTimeout,
		Logger:  logger,
	})

	if !cfg.DryRun {
		if err := gitClient.Available(); err != nil {
			return nil, nil, err
		}
	}

	journal := store.Discard
	if !cfg.DryRun {
		journal, err = store.Open(cfg.JournalDriver, cfg.JournalFile())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open journal: %w", err)
		}
	}

	closeJournal := func() {
		if err := journal.Close(); err != nil {
			logger.Warn("failed to close journal", slog.String("error", err.Error()))
		}
	}

	fleet, err := core.NewFleet(core.FleetOptions{
		Config:     cfg,
		Lister:     lister,
		Reconciler: mirror.NewReconciler(gitClient, mirror.ReconcilerOptions{RepointRemote: cfg.RepointRemote, Logger: logger}),
		Metadata:   mirror.NewMetadataWriter(),
		Journal:    journal,
		Logger:     logger,
		Out:        cmd.OutOrStdout(),
	})
	if err != nil {
		closeJournal()
		return nil, nil, err
	}

	return fleet, closeJournal, nil
}
