package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, driver string) Store {
	t.Helper()

	s, err := Open(driver, filepath.Join(t.TempDir(), "journal", "test."+driver))
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close journal: %v", err)
		}
	})

	return s
}

func testRecord(runID, id string, action model.Action, at time.Time) model.MirrorRecord {
	return model.MirrorRecord{
		RunID:      runID,
		Owner:      "kb-dk",
		OwnerKind:  model.OwnerOrg,
		Kind:       model.KindRepository,
		Identifier: id,
		CloneURL:   "git@github.com:kb-dk/" + id + ".git",
		Path:       "/srv/repos/kb-dk/" + id + ".git",
		Action:     action,
		StartedAt:  at,
		FinishedAt: at.Add(time.Second),
	}
}

func TestStore_Journal(t *testing.T) {
	for _, driver := range []string{DriverBolt, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			s := openTestStore(t, driver)

			_, ok, err := s.LatestRun()
			require.NoError(t, err)
			assert.False(t, ok)

			t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			first := model.Run{ID: "run-1", StartedAt: t0}
			require.NoError(t, s.StartRun(first))

			failed := testRecord("run-1", "b", model.ActionFailed, t0)
			failed.Error = "git clone: exit status 128"

			require.NoError(t, s.RecordOutcome(testRecord("run-1", "a", model.ActionCloned, t0)))
			require.NoError(t, s.RecordOutcome(failed))
			require.NoError(t, s.RecordOutcome(testRecord("run-1", "c", model.ActionUpdated, t0)))

			first.FinishedAt = t0.Add(time.Minute)
			first.Cloned, first.Failed, first.Updated = 1, 1, 1
			require.NoError(t, s.FinishRun(first))

			second := model.Run{ID: "run-2", StartedAt: t0.Add(time.Hour)}
			require.NoError(t, s.StartRun(second))

			latest, ok, err := s.LatestRun()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "run-2", latest.ID)
			assert.False(t, latest.Finished())

			records, err := s.Records("run-1")
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, "a", records[0].Identifier)
			assert.Equal(t, "b", records[1].Identifier)
			assert.Equal(t, "c", records[2].Identifier)
			assert.Equal(t, model.ActionFailed, records[1].Action)
			assert.Equal(t, "git clone: exit status 128", records[1].Error)
			assert.Equal(t, model.OwnerOrg, records[1].OwnerKind)
			assert.True(t, t0.Equal(records[0].StartedAt))

			none, err := s.Records("run-2")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStore_FinishUnknownRun(t *testing.T) {
	for _, driver := range []string{DriverBolt, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			s := openTestStore(t, driver)
			require.Error(t, s.FinishRun(model.Run{ID: "missing"}))
		})
	}
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	for _, driver := range []string{DriverBolt, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "journal."+driver)

			s, err := Open(driver, path)
			require.NoError(t, err)
			require.NoError(t, s.StartRun(model.Run{ID: "run-1", StartedAt: time.Now()}))
			require.NoError(t, s.Close())

			s, err = Open(driver, path)
			require.NoError(t, err)
			defer s.Close()

			run, ok, err := s.LatestRun()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "run-1", run.ID)
		})
	}
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open(DriverNone, "/nonexistent/never/created")
	require.NoError(t, err)
	assert.Equal(t, Discard, s)
	require.NoError(t, s.RecordOutcome(model.MirrorRecord{}))

	_, ok, err := s.LatestRun()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Open("postgres", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
}

func TestOpenExisting_MissingJournalCreatesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")

	for _, driver := range []string{DriverBolt, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			_, err := OpenExisting(driver, filepath.Join(dir, "j."+driver))
			require.ErrorIs(t, err, ErrNoJournal)

			_, statErr := os.Stat(dir)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestOpenExisting_ReadsWrittenJournal(t *testing.T) {
	for _, driver := range []string{DriverBolt, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "j."+driver)
			t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			w, err := Open(driver, path)
			require.NoError(t, err)
			require.NoError(t, w.StartRun(model.Run{ID: "run-1", StartedAt: t0}))
			require.NoError(t, w.RecordOutcome(testRecord("run-1", "a", model.ActionCloned, t0)))
			require.NoError(t, w.Close())

			r, err := OpenExisting(driver, path)
			require.NoError(t, err)
			defer r.Close()

			run, ok, err := r.LatestRun()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "run-1", run.ID)

			records, err := r.Records("run-1")
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "a", records[0].Identifier)
		})
	}
}

func TestOpenExisting_BoltIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "j.bolt")

	w, err := Open(DriverBolt, path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenExisting(DriverBolt, path)
	require.NoError(t, err)
	defer r.Close()

	require.Error(t, r.StartRun(model.Run{ID: "run-1"}))
}

func TestOpenExisting_RejectsNone(t *testing.T) {
	_, err := OpenExisting(DriverNone, "x")
	require.Error(t, err)
}
