package cmd

import (
	"fmt"
	"strings"

	"github.com/kb-dk/github-cloner/internal/config"
	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addMirrorFlags adds the flags of the mirror command. Defaults shown in
// help come from config.Default; only flags given on the command line
// override the environment.
func addMirrorFlags(cmd *cobra.Command) {
	def := config.Default()

	// Targets
	cmd.Flags().StringArray("org", nil, "Organization to mirror (repeatable)")
	cmd.Flags().StringArray("user", nil, "User to mirror (repeatable)")
	cmd.Flags().StringSlice("kinds", []string{"repos", "gists"}, "Collections to mirror: repos, gists")
	cmd.Flags().String("dest", def.Dest, "Root directory of the mirror tree")

	// API
	cmd.Flags().String("api-url", def.APIURL, "GitHub API base URL")
	cmd.Flags().Int("per-page", def.PerPage, fmt.Sprintf("Items per listing page (1-%d)", config.MaxPerPage))
	cmd.Flags().Duration("http-timeout", def.HTTPTimeout, "Timeout of a single API request")
	cmd.Flags().String("token", "", "GitHub token (overrides GITHUB_TOKEN and GH_TOKEN)")
	cmd.Flags().Bool("no-strict-content-type", false, "Accept API responses without a JSON content type")

	// Git
	cmd.Flags().String("git", def.GitPath, "git executable")
	cmd.Flags().Duration("git-timeout", def.GitTimeout, "Timeout of a single git clone or fetch")
	cmd.Flags().Bool("no-repoint", false, "Do not rewrite origin of existing mirrors")

	// Operation mode
	cmd.Flags().Int("parallel", def.Parallel, fmt.Sprintf("Repositories mirrored at once (1-%d)", config.MaxParallel))
	cmd.Flags().Bool("dry-run", false, "Show what would be cloned or updated without doing it")

	addJournalFlags(cmd)

	// Logging
	cmd.Flags().String("log-level", def.LogLevel, "Log level: debug, info, warn, error")
	cmd.Flags().Bool("json", false, "Output logs in JSON format")
}

// addJournalFlags adds the flags shared by commands that open the journal.
func addJournalFlags(cmd *cobra.Command) {
	cmd.Flags().String("journal", "", "Journal file (default <dest>/.github-cloner.<driver>)")
	cmd.Flags().String("journal-driver", config.DriverBolt, "Journal backend: bolt, sqlite, none")
}

// applyFlags copies every flag set on the command line into cfg.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error

	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}

		err = applyFlag(flags, f.Name, cfg)
	})

	return err
}

func applyFlag(flags *pflag.FlagSet, name string, cfg *config.Config) error {
	var err error

	switch name {
	case "org":
		cfg.Orgs, err = flags.GetStringArray(name)
	case "user":
		cfg.Users, err = flags.GetStringArray(name)
	case "kinds":
		var values []string
		if values, err = flags.GetStringSlice(name); err == nil {
			cfg.Kinds, err = model.ParseCollectionKinds(trimAll(values))
		}
	case "dest":
		var dest string
		if dest, err = flags.GetString(name); err == nil {
			cfg.Dest, err = expandPath(dest)
		}
	case "api-url":
		cfg.APIURL, err = flags.GetString(name)
	case "per-page":
		cfg.PerPage, err = flags.GetInt(name)
	case "http-timeout":
		cfg.HTTPTimeout, err = flags.GetDuration(name)
	case "token":
		cfg.Token, err = flags.GetString(name)
	case "no-strict-content-type":
		var lenient bool
		lenient, err = flags.GetBool(name)
		cfg.StrictContentType = !lenient
	case "git":
		cfg.GitPath, err = flags.GetString(name)
	case "git-timeout":
		cfg.GitTimeout, err = flags.GetDuration(name)
	case "no-repoint":
		var off bool
		off, err = flags.GetBool(name)
		cfg.RepointRemote = !off
	case "parallel":
		cfg.Parallel, err = flags.GetInt(name)
	case "dry-run":
		cfg.DryRun, err = flags.GetBool(name)
	case "journal":
		var journal string
		if journal, err = flags.GetString(name); err == nil {
			cfg.JournalPath, err = expandPath(journal)
		}
	case "journal-driver":
		cfg.JournalDriver, err = flags.GetString(name)
	case "log-level":
		cfg.LogLevel, err = flags.GetString(name)
	case "json":
		cfg.JSONLogs, err = flags.GetBool(name)
	}

	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
