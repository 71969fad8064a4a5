// Package sqlite provides the SQLite run journal.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kb-dk/github-cloner/internal/encoding"
	"github.com/kb-dk/github-cloner/internal/model"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store is a run journal kept in a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens or creates the database at dbPath and applies pending
// migrations.
func New(dbPath string) (*Store, error) {
	if err := encoding.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't handle multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := NewMigrator(db).MigrateUp(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) StartRun(run model.Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at
	`, run.ID, formatTime(run.StartedAt))
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	return nil
}

func (s *Store) FinishRun(run model.Run) error {
	res, err := s.db.Exec(`
		UPDATE runs
		SET finished_at = ?, cloned = ?, updated = ?, failed = ?, skipped = ?, listing_failures = ?
		WHERE id = ?
	`, formatTime(run.FinishedAt), run.Cloned, run.Updated, run.Failed, run.Skipped, run.ListingFailures, run.ID)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}

	return nil
}

func (s *Store) RecordOutcome(rec model.MirrorRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO records (run_id, owner, owner_kind, kind, identifier, clone_url, path, action, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID, rec.Owner, int(rec.OwnerKind), int(rec.Kind), rec.Identifier, rec.CloneURL,
		rec.Path, string(rec.Action), rec.Error, formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.Key(), err)
	}

	return nil
}

func (s *Store) LatestRun() (model.Run, bool, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, cloned, updated, failed, skipped, listing_failures
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, false, nil
	}

	if err != nil {
		return model.Run{}, false, err
	}

	return run, true, nil
}

func (s *Store) Records(runID string) ([]model.MirrorRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, owner, owner_kind, kind, identifier, clone_url, path, action, error, started_at, finished_at
		FROM records
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []model.MirrorRecord

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanRun(row scanner) (model.Run, error) {
	var (
		run               model.Run
		started, finished string
	)

	if err := row.Scan(&run.ID, &started, &finished, &run.Cloned, &run.Updated, &run.Failed, &run.Skipped, &run.ListingFailures); err != nil {
		return model.Run{}, err
	}

	var err error

	if run.StartedAt, err = parseTime(started); err != nil {
		return model.Run{}, err
	}

	if run.FinishedAt, err = parseTime(finished); err != nil {
		return model.Run{}, err
	}

	return run, nil
}

func scanRecord(row scanner) (model.MirrorRecord, error) {
	var (
		rec               model.MirrorRecord
		ownerKind, kind   int
		action            string
		started, finished string
	)

	if err := row.Scan(&rec.RunID, &rec.Owner, &ownerKind, &kind, &rec.Identifier, &rec.CloneURL,
		&rec.Path, &action, &rec.Error, &started, &finished); err != nil {
		return model.MirrorRecord{}, fmt.Errorf("scanning record: %w", err)
	}

	rec.OwnerKind = model.OwnerKind(ownerKind)
	rec.Kind = model.CollectionKind(kind)
	rec.Action = model.Action(action)

	var err error

	if rec.StartedAt, err = parseTime(started); err != nil {
		return model.MirrorRecord{}, err
	}

	if rec.FinishedAt, err = parseTime(finished); err != nil {
		return model.MirrorRecord{}, err
	}

	return rec, nil
}
