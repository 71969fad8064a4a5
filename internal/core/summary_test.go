package core

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_Err(t *testing.T) {
	s := &Summary{}
	assert.NoError(t, s.Err())

	first, second := errors.New("first"), errors.New("second")
	s.Errors = []error{first, second}

	err := s.Err()

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, second)
}

func TestSummary_Count(t *testing.T) {
	s := &Summary{}
	for _, a := range []model.Action{model.ActionCloned, model.ActionUpdated, model.ActionUpdated, model.ActionFailed, model.ActionSkipped} {
		s.count(a)
	}

	assert.Equal(t, 1, s.Cloned)
	assert.Equal(t, 2, s.Updated)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 4, s.Processed())

	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.RunID, s.Duration = "r", time.Minute

	run := s.journalRun(started)
	assert.Equal(t, "r", run.ID)
	assert.Equal(t, started.Add(time.Minute), run.FinishedAt)
	assert.Equal(t, 2, run.Updated)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer

	PrintSummary(&buf, &Summary{RunID: "run-1", Cloned: 3, Updated: 5, Failed: 1, Duration: 1500 * time.Millisecond})

	out := buf.String()
	assert.Contains(t, out, "Mirror complete")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Cloned:")
	assert.Contains(t, out, "1.5s")

	buf.Reset()
	PrintSummary(&buf, &Summary{DryRun: true, Cloned: 2})
	assert.Contains(t, buf.String(), "Dry run complete")
	assert.Contains(t, buf.String(), "To clone:")
}
