package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var keyLastPulledAt = []byte("last_pulled_at")

// GetLastPulledAt retrieves the checkpoint of the last successful pull
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastPulledAt(ctx context.Context) (int64, error) {
	var checkpoint int64

	err := s.view(func(tx *bbolt.Tx) error {
		checkpoint = getCheckpoint(tx)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get last pulled at: %w", err)
	}

	return checkpoint, nil
}

func getCheckpoint(tx *bbolt.Tx) int64 {
	data := tx.Bucket(bucketMeta).Get(keyLastPulledAt)
	if len(data) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(data))
}

func putCheckpoint(tx *bbolt.Tx, checkpoint int64) error {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(checkpoint))

	if err := tx.Bucket(bucketMeta).Put(keyLastPulledAt, data); err != nil {
		return fmt.Errorf("failed to save last pulled at: %w", err)
	}
	return nil
}
