package core

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-multierror"
	"github.com/kb-dk/github-cloner/internal/model"
)

// Summary is the result of a Run.
type Summary struct {
	RunID  string
	DryRun bool

	Cloned          int
	Updated         int
	Failed          int
	Skipped         int
	ListingFailures int

	Duration time.Duration

	// Errors holds one entry per failed repository, skipped item, metadata
	// failure and failed listing, in the order they happened.
	Errors []error
}

// Processed is the number of repositories that reached the reconciler.
func (s *Summary) Processed() int {
	return s.Cloned + s.Updated + s.Failed
}

// Err aggregates every recorded failure into a *multierror.Error, or nil
// when the run was clean.
func (s *Summary) Err() error {
	var result *multierror.Error

	for _, err := range s.Errors {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func (s *Summary) count(action model.Action) {
	switch action {
	case model.ActionCloned:
		s.Cloned++
	case model.ActionUpdated:
		s.Updated++
	case model.ActionFailed:
		s.Failed++
	case model.ActionSkipped:
		s.Skipped++
	}
}

func (s *Summary) journalRun(started time.Time) model.Run {
	return model.Run{
		ID:              s.RunID,
		StartedAt:       started,
		FinishedAt:      started.Add(s.Duration),
		Cloned:          s.Cloned,
		Updated:         s.Updated,
		Failed:          s.Failed,
		Skipped:         s.Skipped,
		ListingFailures: s.ListingFailures,
	}
}

// PrintSummary renders the closing banner of a run.
func PrintSummary(w io.Writer, s *Summary) {
	renderer := lipgloss.NewRenderer(w)

	var (
		title  = renderer.NewStyle().Bold(true)
		ok     = renderer.NewStyle().Foreground(lipgloss.Color("10"))
		bad    = renderer.NewStyle().Foreground(lipgloss.Color("9"))
		muted  = renderer.NewStyle().Foreground(lipgloss.Color("8"))
		banner = renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
	)

	cloned, updated := "Cloned", "Updated"
	if s.DryRun {
		cloned, updated = "To clone", "To update"
	}

	failedStyle := ok
	if s.Failed > 0 || s.ListingFailures > 0 {
		failedStyle = bad
	}

	heading := "Mirror complete"
	if s.DryRun {
		heading = "Dry run complete"
	}

	rows := []string{
		title.Render(heading) + " " + muted.Render(s.RunID),
		"",
		fmt.Sprintf("%-16s %s", cloned+":", ok.Render(strconv.Itoa(s.Cloned))),
		fmt.Sprintf("%-16s %s", updated+":", ok.Render(strconv.Itoa(s.Updated))),
		fmt.Sprintf("%-16s %s", "Failed:", failedStyle.Render(strconv.Itoa(s.Failed))),
		fmt.Sprintf("%-16s %d", "Skipped:", s.Skipped),
		fmt.Sprintf("%-16s %s", "Listing errors:", failedStyle.Render(strconv.Itoa(s.ListingFailures))),
		fmt.Sprintf("%-16s %s", "Duration:", s.Duration.Round(time.Millisecond)),
	}

	_, _ = fmt.Fprintln(w, banner.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}
