// Package snapshot encodes a full copy of the live records into a bbolt file.
//
// Layout: one bucket per table with record id as key and the JSON record as
// value, plus a meta bucket holding last_pulled_at as 8 big-endian bytes.
// A client loads the file and continues with a regular pull from last_pulled_at.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/deltasync/pkg/api"
)

var (
	bucketMeta      = []byte("meta")
	keyLastPulledAt = []byte("last_pulled_at")
)

// ErrInvalidSnapshot indicates that the file is not a snapshot
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is every live record per table and the checkpoint it corresponds to
type Snapshot struct {
	Tables       map[string][]api.Record
	LastPulledAt int64
}

// WriteFile writes the snapshot to a new bbolt file at path, replacing any existing file
func WriteFile(path string, snap *Snapshot) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove old snapshot: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}

	if err := fill(db, snap); err != nil {
		db.Close()
		return err
	}

	return db.Close()
}

// Write streams the snapshot as a bbolt file into w.
// The file is built in a temporary directory and removed afterwards.
func Write(w io.Writer, snap *Snapshot) (int64, error) {
	dir, err := os.MkdirTemp("", "deltasync-snapshot-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snapshot.db")
	if err := WriteFile(path, snap); err != nil {
		return 0, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return 0, fmt.Errorf("failed to reopen snapshot: %w", err)
	}
	defer db.Close()

	var n int64
	err = db.View(func(tx *bbolt.Tx) error {
		var err error
		n, err = tx.WriteTo(w)
		return err
	})
	if err != nil {
		return n, fmt.Errorf("failed to stream snapshot: %w", err)
	}

	return n, nil
}

// ReadFile loads a snapshot written by WriteFile or Write
func ReadFile(path string) (*Snapshot, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer db.Close()

	snap := &Snapshot{Tables: make(map[string][]api.Record)}

	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("%w: meta bucket not found", ErrInvalidSnapshot)
		}
		ts := meta.Get(keyLastPulledAt)
		if len(ts) != 8 {
			return fmt.Errorf("%w: last_pulled_at not found", ErrInvalidSnapshot)
		}
		snap.LastPulledAt = int64(binary.BigEndian.Uint64(ts))

		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if bytes.Equal(name, bucketMeta) {
				return nil
			}

			records := []api.Record{}
			err := b.ForEach(func(k, v []byte) error {
				var rec api.Record
				dec := json.NewDecoder(bytes.NewReader(v))
				dec.UseNumber()
				if err := dec.Decode(&rec); err != nil {
					return fmt.Errorf("failed to decode %s/%s: %w", name, k, err)
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}

			snap.Tables[string(name)] = records
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

func fill(db *bbolt.DB, snap *Snapshot) error {
	return db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create meta bucket: %w", err)
		}

		ts := make([]byte, 8)
		binary.BigEndian.PutUint64(ts, uint64(snap.LastPulledAt))
		if err := meta.Put(keyLastPulledAt, ts); err != nil {
			return fmt.Errorf("failed to save last_pulled_at: %w", err)
		}

		for table, records := range snap.Tables {
			if table == string(bucketMeta) {
				return fmt.Errorf("table name %q is reserved", table)
			}

			b, err := tx.CreateBucket([]byte(table))
			if err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", table, err)
			}

			for _, rec := range records {
				id := rec.ID()
				if id == "" {
					return fmt.Errorf("record without id in %s", table)
				}

				data, err := json.Marshal(rec)
				if err != nil {
					return fmt.Errorf("failed to encode %s/%s: %w", table, id, err)
				}

				if err := b.Put([]byte(id), data); err != nil {
					return fmt.Errorf("failed to save %s/%s: %w", table, id, err)
				}
			}
		}

		return nil
	})
}
