// Package store implements the sorted key/value abstraction the four
// index files are built on: exact and leading-key range lookup, backed
// by go.etcd.io/bbolt, with atomic publish via temp-path-then-rename so
// a cancelled or crashed build never leaves a partial file visible at
// its final path.
package store

import (
	"bytes"
	"os"

	bolt "go.etcd.io/bbolt"

	"github.com/hpcc-systems/Medley/errors"
)

// rowsBucket is the single bucket every index uses. Rows are stored as
// bucket keys with an empty value: bbolt's own key uniqueness gives
// duplicate-row dedup for free, and a sorted-key bucket already supports
// the range scans the query engine needs.
var rowsBucket = []byte("rows")

// Writer accumulates rows into a bbolt database at a temporary path and
// publishes them to their final path only on an explicit Publish call.
type Writer struct {
	db       *bolt.DB
	tmpPath  string
	destPath string
}

// NewWriter opens a fresh database at destPath+".tmp", truncating any
// stale temp file left by a previous crashed build.
func NewWriter(destPath string) (*Writer, error) {
	tmpPath := destPath + ".tmp"
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "store: removing stale temp file %s", tmpPath)
	}

	db, err := bolt.Open(tmpPath, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIndexIO, "store: opening %s: %v", tmpPath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rowsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(errors.ErrIndexIO, "store: creating bucket in %s: %v", tmpPath, err)
	}

	return &Writer{db: db, tmpPath: tmpPath, destPath: destPath}, nil
}

// Put writes one row. key is the full leading-key-plus-payload encoding;
// writing the same key twice within a build overwrites silently, which
// is exactly the dedup behaviour the index writer relies on.
func (w *Writer) Put(key []byte) error {
	err := w.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rowsBucket).Put(key, nil)
	})
	if err != nil {
		return errors.Wrapf(errors.ErrIndexIO, "store: writing row: %v", err)
	}
	return nil
}

// PutBatch writes many rows inside a single bbolt transaction, which is
// far cheaper than one transaction per row for a large build.
func (w *Writer) PutBatch(keys [][]byte) error {
	err := w.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rowsBucket)
		for _, k := range keys {
			if err := b.Put(k, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(errors.ErrIndexIO, "store: writing batch: %v", err)
	}
	return nil
}

// Publish closes the temp database and atomically renames it into place
// at destPath. After Publish returns successfully, readers opening
// destPath see either the complete new contents or, if Publish was never
// reached, whatever was there before.
func (w *Writer) Publish() error {
	if err := w.db.Close(); err != nil {
		return errors.Wrapf(errors.ErrIndexIO, "store: closing %s: %v", w.tmpPath, err)
	}
	if err := os.Rename(w.tmpPath, w.destPath); err != nil {
		return errors.Wrapf(errors.ErrIndexIO, "store: publishing %s -> %s: %v", w.tmpPath, w.destPath, err)
	}
	return nil
}

// Abort closes and removes the temp database without publishing it.
func (w *Writer) Abort() error {
	_ = w.db.Close()
	if err := os.Remove(w.tmpPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "store: removing aborted temp file %s", w.tmpPath)
	}
	return nil
}

// Reader reads rows out of a published, immutable index file.
type Reader struct {
	db *bolt.DB
}

// OpenReader opens path read-only. A missing file is reported as
// errors.ErrMissingIndex so query-side callers can distinguish "no
// index built yet" from other I/O failures.
func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrMissingIndex, "store: %s", path)
		}
		return nil, errors.Wrapf(errors.ErrIndexIO, "store: stat %s: %v", path, err)
	}
	db, err := bolt.Open(path, 0o400, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIndexIO, "store: opening %s: %v", path, err)
	}
	return &Reader{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}

// ScanPrefix visits every key with the given leading-key prefix, in
// ascending order, calling visit with the full row key (prefix included)
// each time. It stops and returns visit's error the first time visit
// returns a non-nil error.
func (r *Reader) ScanPrefix(prefix []byte, visit func(key []byte) error) error {
	return r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(rowsBucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := visit(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountPrefix is ScanPrefix plus a row counter: it returns how many rows
// carry the given leading-key prefix without materializing them.
func (r *Reader) CountPrefix(prefix []byte) (int, error) {
	count := 0
	err := r.ScanPrefix(prefix, func([]byte) error {
		count++
		return nil
	})
	return count, err
}
