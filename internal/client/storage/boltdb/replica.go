package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.etcd.io/bbolt"

	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/snapshot"
	"github.com/iudanet/deltasync/pkg/api"
)

// GetRecord retrieves a record by table and id
func (s *Storage) GetRecord(ctx context.Context, table, id string) (*storage.LocalRecord, error) {
	var rec *storage.LocalRecord

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tableBucket(tx, table)
		if bucket == nil {
			return storage.ErrRecordNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRecordNotFound
		}

		var err error
		rec, err = decodeLocal(data)
		return err
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// PutRecord stores or replaces a record
func (s *Storage) PutRecord(ctx context.Context, table string, rec storage.LocalRecord) error {
	id := rec.Record.ID()
	if id == "" {
		return errors.New("record id is empty")
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket, err := createTableBucket(tx, table)
		if err != nil {
			return err
		}
		return putLocal(bucket, id, rec)
	})
}

// RemoveRecord deletes a record from the replica
func (s *Storage) RemoveRecord(ctx context.Context, table, id string) error {
	return s.update(func(tx *bbolt.Tx) error {
		bucket := tableBucket(tx, table)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(id))
	})
}

// ListRecords returns all records of a table, including pending deletions
func (s *Storage) ListRecords(ctx context.Context, table string) ([]storage.LocalRecord, error) {
	records := []storage.LocalRecord{}

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tableBucket(tx, table)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(_, v []byte) error {
			rec, err := decodeLocal(v)
			if err != nil {
				return err
			}
			records = append(records, *rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}

	return records, nil
}

// PendingChanges collects records with local changes grouped by table
func (s *Storage) PendingChanges(ctx context.Context) (api.Changes, error) {
	changes := api.Changes{}

	err := s.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTables).ForEachBucket(func(name []byte) error {
			var tc api.TableChanges

			err := tx.Bucket(bucketTables).Bucket(name).ForEach(func(k, v []byte) error {
				rec, err := decodeLocal(v)
				if err != nil {
					return err
				}

				switch rec.Status {
				case storage.StatusCreated:
					tc.Created = append(tc.Created, rec.Record)
				case storage.StatusUpdated:
					tc.Updated = append(tc.Updated, rec.Record)
				case storage.StatusDeleted:
					tc.Deleted = append(tc.Deleted, string(k))
				}
				return nil
			})
			if err != nil {
				return err
			}

			if len(tc.Created)+len(tc.Updated)+len(tc.Deleted) == 0 {
				return nil
			}

			changes[string(name)] = api.TableChanges{
				Created: nonNil(tc.Created),
				Updated: nonNil(tc.Updated),
				Deleted: nonNilIDs(tc.Deleted),
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect pending changes: %w", err)
	}

	return changes, nil
}

// ApplyPull merges server changes into the replica and moves the checkpoint
func (s *Storage) ApplyPull(ctx context.Context, changes api.Changes, serverTimestamp int64) (storage.ApplyStats, error) {
	var stats storage.ApplyStats

	err := s.update(func(tx *bbolt.Tx) error {
		stats = storage.ApplyStats{}

		for table, tc := range changes {
			bucket, err := createTableBucket(tx, table)
			if err != nil {
				return err
			}

			for _, remote := range slices.Concat(tc.Created, tc.Updated) {
				id := remote.ID()
				if id == "" {
					return fmt.Errorf("pulled %s record without id", table)
				}

				if local := bucket.Get([]byte(id)); local != nil {
					rec, err := decodeLocal(local)
					if err != nil {
						return err
					}
					if rec.Status.Pending() {
						// локальное изменение уйдет следующим push
						stats.KeptLocal++
						continue
					}
				}

				if err := putLocal(bucket, id, storage.LocalRecord{Record: remote, Status: storage.StatusSynced}); err != nil {
					return err
				}
				stats.Applied++
			}

			for _, id := range tc.Deleted {
				if bucket.Get([]byte(id)) == nil {
					continue
				}
				if err := bucket.Delete([]byte(id)); err != nil {
					return fmt.Errorf("failed to remove %s/%s: %w", table, id, err)
				}
				stats.Removed++
			}
		}

		return putCheckpoint(tx, serverTimestamp)
	})
	if err != nil {
		return storage.ApplyStats{}, fmt.Errorf("failed to apply pull: %w", err)
	}

	return stats, nil
}

// MarkSynced resets pushed records to synced and drops pushed deletions
func (s *Storage) MarkSynced(ctx context.Context, pushed api.Changes) error {
	return s.update(func(tx *bbolt.Tx) error {
		for table, tc := range pushed {
			bucket := tableBucket(tx, table)
			if bucket == nil {
				continue
			}

			for _, sent := range slices.Concat(tc.Created, tc.Updated) {
				id := sent.ID()
				data := bucket.Get([]byte(id))
				if data == nil {
					continue
				}
				rec, err := decodeLocal(data)
				if err != nil {
					return err
				}
				if rec.Status == storage.StatusDeleted {
					continue
				}
				rec.Status = storage.StatusSynced
				if err := putLocal(bucket, id, *rec); err != nil {
					return err
				}
			}

			for _, id := range tc.Deleted {
				if err := bucket.Delete([]byte(id)); err != nil {
					return fmt.Errorf("failed to drop %s/%s: %w", table, id, err)
				}
			}
		}
		return nil
	})
}

// LoadSnapshot replaces all tables with the snapshot content and sets its checkpoint
func (s *Storage) LoadSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	return s.update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketTables); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to reset tables: %w", err)
		}
		if _, err := tx.CreateBucket(bucketTables); err != nil {
			return fmt.Errorf("failed to create tables bucket: %w", err)
		}

		for table, records := range snap.Tables {
			bucket, err := createTableBucket(tx, table)
			if err != nil {
				return err
			}
			for _, rec := range records {
				if err := putLocal(bucket, rec.ID(), storage.LocalRecord{Record: rec, Status: storage.StatusSynced}); err != nil {
					return err
				}
			}
		}

		return putCheckpoint(tx, snap.LastPulledAt)
	})
}

func tableBucket(tx *bbolt.Tx, table string) *bbolt.Bucket {
	return tx.Bucket(bucketTables).Bucket([]byte(table))
}

func createTableBucket(tx *bbolt.Tx, table string) (*bbolt.Bucket, error) {
	if table == "" {
		return nil, errors.New("table name is empty")
	}
	bucket, err := tx.Bucket(bucketTables).CreateBucketIfNotExists([]byte(table))
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket for %s: %w", table, err)
	}
	return bucket, nil
}

func putLocal(bucket *bbolt.Bucket, id string, rec storage.LocalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", id, err)
	}
	if err := bucket.Put([]byte(id), data); err != nil {
		return fmt.Errorf("failed to save record %s: %w", id, err)
	}
	return nil
}

// decodeLocal сохраняет числа как json.Number, чтобы не терять точность int64
func decodeLocal(data []byte) (*storage.LocalRecord, error) {
	var rec storage.LocalRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

func nonNil(records []api.Record) []api.Record {
	if records == nil {
		return []api.Record{}
	}
	return records
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
