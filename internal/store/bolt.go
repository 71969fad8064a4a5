package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/kb-dk/github-cloner/internal/encoding"
	"github.com/kb-dk/github-cloner/internal/model"
	"go.etcd.io/bbolt"
)

const (
	boltBucketRuns    = "runs"    // key: run id -> Run JSON
	boltBucketRecords = "records" // sub-bucket per run id, key: sequence -> MirrorRecord JSON
	boltBucketMeta    = "meta"    // key: "latest" -> run id

	boltKeyLatest = "latest"
)

// Bolt is a Store backed by a bbolt file.
type Bolt struct {
	storage *bbolt.DB
}

// NewBolt opens or creates the bbolt journal at path.
func NewBolt(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{boltBucketRuns, boltBucketRecords, boltBucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Bolt{storage: instance}, nil
}

// OpenBoltReadOnly opens an existing bbolt journal without write access.
// Writes on the returned store fail.
func OpenBoltReadOnly(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}

	return &Bolt{storage: instance}, nil
}

func (b *Bolt) Close() error {
	return b.storage.Close()
}

func (b *Bolt) StartRun(run model.Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}

	data, err := encoding.ToJSON(run)
	if err != nil {
		return err
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(boltBucketRuns)).Put([]byte(run.ID), data); err != nil {
			return err
		}

		if _, err := tx.Bucket([]byte(boltBucketRecords)).CreateBucketIfNotExists([]byte(run.ID)); err != nil {
			return err
		}

		return tx.Bucket([]byte(boltBucketMeta)).Put([]byte(boltKeyLatest), []byte(run.ID))
	})
}

func (b *Bolt) FinishRun(run model.Run) error {
	data, err := encoding.ToJSON(run)
	if err != nil {
		return err
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(boltBucketRuns))
		if runs.Get([]byte(run.ID)) == nil {
			return fmt.Errorf("run %s not found", run.ID)
		}

		return runs.Put([]byte(run.ID), data)
	})
}

func (b *Bolt) RecordOutcome(rec model.MirrorRecord) error {
	data, err := encoding.ToJSON(rec)
	if err != nil {
		return err
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		records, err := tx.Bucket([]byte(boltBucketRecords)).CreateBucketIfNotExists([]byte(rec.RunID))
		if err != nil {
			return err
		}

		seq, err := records.NextSequence()
		if err != nil {
			return err
		}

		return records.Put(sequenceKey(seq), data)
	})
}

func (b *Bolt) LatestRun() (model.Run, bool, error) {
	var (
		run   model.Run
		found bool
	)

	err := b.storage.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket([]byte(boltBucketMeta))
		if meta == nil {
			return nil
		}

		id := meta.Get([]byte(boltKeyLatest))
		if id == nil {
			return nil
		}

		data := tx.Bucket([]byte(boltBucketRuns)).Get(id)
		if data == nil {
			return nil
		}

		r, err := encoding.ParseJSON[model.Run](data)
		if err != nil {
			return err
		}

		run, found = *r, true

		return nil
	})

	return run, found, err
}

func (b *Bolt) Records(runID string) ([]model.MirrorRecord, error) {
	var records []model.MirrorRecord

	err := b.storage.View(func(tx *bbolt.Tx) error {
		recordsBucket := tx.Bucket([]byte(boltBucketRecords))
		if recordsBucket == nil {
			return nil
		}

		bucket := recordsBucket.Bucket([]byte(runID))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(_, v []byte) error {
			rec, err := encoding.ParseJSON[model.MirrorRecord](v)
			if err != nil {
				return err
			}

			records = append(records, *rec)

			return nil
		})
	})

	return records, err
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	return key
}
