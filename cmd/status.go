package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kb-dk/github-cloner/internal/encoding"
	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/kb-dk/github-cloner/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest run recorded in the journal",
	Long: `Show the latest mirror run from the journal and the repositories
that failed in it.

Examples:
  github-cloner status --dest /srv/git
  github-cloner status --journal /var/lib/mirror/journal.sqlite --journal-driver sqlite
  github-cloner status --dest /srv/git --all --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// statusReport is the --json form of the status command.
type statusReport struct {
	Run     model.Run            `json:"run"`
	Records []model.MirrorRecord `json:"records"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	asJSON, _ := cmd.Flags().GetBool("json")

	path := cfg.JournalFile()
	if !encoding.DirExists(cfg.Dest) && cfg.JournalPath == "" {
		return fmt.Errorf("destination %s does not exist", cfg.Dest)
	}

	journal, err := store.OpenExisting(cfg.JournalDriver, path)
	if errors.Is(err, store.ErrNoJournal) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No journal at %s.\n", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	return printStatus(cmd.OutOrStdout(), journal, all, asJSON)
}

func printStatus(w io.Writer, journal store.Store, all, asJSON bool) error {
	run, ok, err := journal.LatestRun()
	if err != nil {
		return err
	}

	if !ok {
		_, _ = fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	records, err := journal.Records(run.ID)
	if err != nil {
		return err
	}

	if !all {
		records = failedOnly(records)
	}

	if asJSON {
		if records == nil {
			records = []model.MirrorRecord{}
		}

		return encoding.WriteJSON(w, statusReport{Run: run, Records: records})
	}

	renderer := lipgloss.NewRenderer(w)
	headerStyle := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	failStyle := renderer.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle := renderer.NewStyle().Foreground(lipgloss.Color("10"))

	finished := "still running or interrupted"
	if run.Finished() {
		finished = run.FinishedAt.Local().Format(time.DateTime) +
			" (" + run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String() + ")"
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Run"), run.ID)
	_, _ = fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "Finished: %s\n", finished)
	_, _ = fmt.Fprintf(w, "Cloned %d, updated %d, failed %s, skipped %d, listing errors %d\n\n",
		run.Cloned, run.Updated, failStyle.Render(strconv.Itoa(run.Failed)), run.Skipped, run.ListingFailures)

	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, okStyle.Render("No failed repositories."))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(renderer.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("KIND", "OWNER", "NAME", "ACTION", "ERROR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return renderer.NewStyle()
		})

	for _, rec := range records {
		t.Row(rec.Kind.PathSegment(), rec.Owner, rec.Identifier, string(rec.Action), model.FirstLine(rec.Error, 80))
	}

	_, _ = fmt.Fprintln(w, t.Render())

	return nil
}

func failedOnly(records []model.MirrorRecord) []model.MirrorRecord {
	var out []model.MirrorRecord

	for _, rec := range records {
		if rec.Action == model.ActionFailed || rec.Error != "" {
			out = append(out, rec)
		}
	}

	return out
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("dest", ".", "Root directory of the mirror tree")
	statusCmd.Flags().Bool("all", false, "List every repository of the run, not only failures")
	statusCmd.Flags().Bool("json", false, "Print the run as JSON")
	addJournalFlags(statusCmd)
}
