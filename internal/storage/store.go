// Package storage keeps a history of benchmark runs in a bbolt database.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

const (
	// BucketRuns holds reports keyed by start time and id, so cursor order
	// is chronological.
	BucketRuns = "runs"
	// BucketIndex maps a run id to its key in BucketRuns.
	BucketIndex = "index"
)

// ErrNotFound is returned when a run id is not in the history.
var ErrNotFound = errors.New("run not found")

// Store is a run history backed by a single bbolt file.
type Store struct {
	db   *bbolt.DB
	path string
}

// DefaultPath returns ~/.flowbench/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flowbench", "history.db"), nil
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{BucketRuns, BucketIndex} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func runKey(r *bench.Report) []byte {
	return []byte(fmt.Sprintf("%020d_%s", r.StartTime.UnixNano(), r.ID))
}

// Save stores a report. Saving the same id again replaces it.
func (s *Store) Save(r *bench.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("report must have an id")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(BucketRuns))
		index := tx.Bucket([]byte(BucketIndex))

		if old := index.Get([]byte(r.ID)); old != nil {
			if err := runs.Delete(old); err != nil {
				return err
			}
		}

		key := runKey(r)
		if err := runs.Put(key, data); err != nil {
			return err
		}
		return index.Put([]byte(r.ID), key)
	})
}

// List returns up to limit reports, newest first. A limit of zero or less
// returns every report.
func (s *Store) List(limit int) ([]*bench.Report, error) {
	var reports []*bench.Report

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BucketRuns)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(reports) >= limit {
				break
			}
			var r bench.Report
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("corrupt history entry %s: %w", k, err)
			}
			reports = append(reports, &r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Get returns the report with the given id.
func (s *Store) Get(id string) (*bench.Report, error) {
	var r bench.Report
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(BucketIndex)).Get([]byte(id))
		if key == nil {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		v := tx.Bucket([]byte(BucketRuns)).Get(key)
		if v == nil {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(v, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a report from the history.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		index := tx.Bucket([]byte(BucketIndex))
		key := index.Get([]byte(id))
		if key == nil {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		if err := tx.Bucket([]byte(BucketRuns)).Delete(key); err != nil {
			return err
		}
		return index.Delete([]byte(id))
	})
}
