// Package store persists parsed datasets in an embedded bbolt database.
// Each dataset is written twice in one transaction: the full record under
// "datasets" and a small listing entry under "index".
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/brettadin/Anything-SpecApp/internal/parser"
)

var (
	bucketDatasets = []byte("datasets")
	bucketIndex    = []byte("index")
)

// ErrNotFound is returned when no dataset matches an id.
var ErrNotFound = errors.New("dataset not found")

// ErrAmbiguous is returned when an id prefix matches more than one dataset.
var ErrAmbiguous = errors.New("dataset id prefix is ambiguous")

// Dataset is a stored parse result. Result.Rows holds the downsampled rows;
// RowCount is the row count before downsampling.
type Dataset struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	Path         string         `json:"path,omitempty"`
	Description  string         `json:"description,omitempty"`
	Size         int64          `json:"size"`
	UploadedAt   time.Time      `json:"uploadedAt"`
	Result       *parser.Result `json:"result"`
	RowCount     int            `json:"rowCount"`
	Preview      []parser.Row   `json:"preview"`
	SampleStride int            `json:"sampleStride"`
}

// Entry is the listing view of a dataset.
type Entry struct {
	ID         string        `json:"id"`
	Filename   string        `json:"filename"`
	Format     parser.Format `json:"format"`
	RowCount   int           `json:"rowCount"`
	Size       int64         `json:"size"`
	UploadedAt time.Time     `json:"uploadedAt"`
}

func (d *Dataset) entry() Entry {
	e := Entry{ID: d.ID, Filename: d.Filename, RowCount: d.RowCount, Size: d.Size, UploadedAt: d.UploadedAt}
	if d.Result != nil {
		e.Format = d.Result.DetectedFormat
	}
	return e
}

// NewDataset downsamples res for storage and wraps it in a Dataset.
func NewDataset(filename string, size int64, res *parser.Result, maxPoints, previewRows int) *Dataset {
	sample := res.Downsample(maxPoints, previewRows)
	stored := *res
	stored.Rows = sample.Rows
	return &Dataset{
		Filename:     filename,
		Size:         size,
		Result:       &stored,
		RowCount:     sample.OriginalCount,
		Preview:      sample.Preview,
		SampleStride: sample.Stride,
	}
}

// Store is a bbolt-backed dataset store.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketDatasets, bucketIndex} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes d, assigning an ID and upload time when they are unset.
func (s *Store) Save(d *Dataset) error {
	if d == nil || d.Result == nil {
		return fmt.Errorf("nil dataset")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	full, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	idx, err := json.Marshal(d.entry())
	if err != nil {
		return fmt.Errorf("marshal index entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketDatasets).Put([]byte(d.ID), full); err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Put([]byte(d.ID), idx)
	})
}

// resolve finds the full key for id, which may be a unique prefix.
func resolve(b *bolt.Bucket, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	if v := b.Get([]byte(id)); v != nil {
		return []byte(id), nil
	}
	var match []byte
	c := b.Cursor()
	prefix := []byte(id)
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
		}
		match = append([]byte(nil), k...)
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// Get loads a dataset by id or unique id prefix.
func (s *Store) Get(id string) (*Dataset, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDatasets)
		key, err := resolve(b, id)
		if err != nil {
			return err
		}
		// bbolt slices are only valid inside the transaction
		raw = append([]byte(nil), b.Get(key)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	var d Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &d, nil
}

// List returns every dataset entry, newest first.
func (s *Store) List() ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIndex).ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode index entry: %w", err)
			}
			out = append(out, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// Delete removes a dataset by id or unique id prefix and returns its full id.
func (s *Store) Delete(id string) (string, error) {
	var deleted string
	err := s.db.Update(func(tx *bolt.Tx) error {
		key, err := resolve(tx.Bucket(bucketDatasets), id)
		if err != nil {
			return err
		}
		deleted = string(key)
		if err := tx.Bucket(bucketDatasets).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Delete(key)
	})
	return deleted, err
}
