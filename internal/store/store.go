package store

import (
	"errors"
	"fmt"

	"github.com/kb-dk/github-cloner/internal/encoding"
	"github.com/kb-dk/github-cloner/internal/model"
	"github.com/kb-dk/github-cloner/internal/store/sqlite"
)

// Journal drivers.
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverNone   = "none"
)

// Store is the run journal.
type Store interface {
	// StartRun records the beginning of a run.
	StartRun(run model.Run) error
	// RecordOutcome appends the outcome for one repository.
	RecordOutcome(rec model.MirrorRecord) error
	// FinishRun stores the final counts of a run.
	FinishRun(run model.Run) error
	// LatestRun returns the most recently started run. ok is false when the
	// journal is empty.
	LatestRun() (run model.Run, ok bool, err error)
	// Records returns the records of a run in the order they were written.
	Records(runID string) ([]model.MirrorRecord, error)
	Close() error
}

var (
	_ Store = (*Bolt)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = Discard
)

// Open opens the journal at path with the named driver, creating the file
// and its parent directory when needed.
func Open(driver, path string) (Store, error) {
	if driver == DriverNone {
		return Discard, nil
	}

	if err := encoding.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	switch driver {
	case DriverBolt, "":
		return NewBolt(path)
	case DriverSQLite:
		return sqlite.New(path)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}
}

// ErrNoJournal is returned by OpenExisting when nothing exists at the path.
var ErrNoJournal = errors.New("no journal found")

// OpenExisting opens a journal for reading. Unlike Open it never creates
// the file or its directory; bolt journals are opened read-only.
func OpenExisting(driver, path string) (Store, error) {
	if driver == DriverNone {
		return nil, fmt.Errorf("no journal to read with driver %q", DriverNone)
	}

	kind, err := encoding.StatPath(path)
	if err != nil {
		return nil, fmt.Errorf("checking journal %s: %w", path, err)
	}

	switch kind {
	case encoding.PathMissing:
		return nil, fmt.Errorf("%s: %w", path, ErrNoJournal)
	case encoding.PathDir:
		return nil, fmt.Errorf("journal %s is a directory", path)
	}

	switch driver {
	case DriverBolt, "":
		return OpenBoltReadOnly(path)
	case DriverSQLite:
		return sqlite.New(path)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}
}

// Discard is a Store that keeps nothing.
var Discard Store = discard{}

type discard struct{}

func (discard) StartRun(model.Run) error                     { return nil }
func (discard) RecordOutcome(model.MirrorRecord) error       { return nil }
func (discard) FinishRun(model.Run) error                    { return nil }
func (discard) LatestRun() (model.Run, bool, error)          { return model.Run{}, false, nil }
func (discard) Records(string) ([]model.MirrorRecord, error) { return nil, nil }
func (discard) Close() error                                 { return nil }
