package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/deltasync/pkg/api"
)

// PullResult is the outcome of a pull.
// Raw is set only for a turbo first sync and holds Response encoded as JSON,
// byte for byte what json.Encoder writes for Response.
type PullResult struct {
	Response *api.PullResponse
	Raw      json.RawMessage
}

// Pull returns every change with checkpoint < last_modified <= server_timestamp
// for every registered table.
//
// server_timestamp is taken from the clock watermark before any table is read,
// so a change committed while the pull runs is either included or newer than
// the returned timestamp. checkpoint == 0 is a first sync: all records are
// reported as created and tombstones as deleted. turbo is honoured only on a
// first sync.
func (s *Service) Pull(ctx context.Context, checkpoint int64, turbo bool) (*PullResult, error) {
	if checkpoint < 0 {
		return nil, &ValidationError{Field: api.ParamLastPulledAt, Reason: "must not be negative"}
	}

	firstSync := checkpoint == 0
	serverTimestamp := s.clock.Watermark()

	tables := s.registry.Tables()
	changes := make(api.Changes, len(tables))

	for _, t := range tables {
		records, err := s.store.ChangedSince(ctx, t.Schema, checkpoint, serverTimestamp)
		if err != nil {
			return nil, &StorageError{Op: "pull " + t.Schema.Name, Err: err}
		}

		changes[t.Schema.Name] = encodeChanges(t.Codec, ClassifyRecords(records, checkpoint, firstSync))
	}

	result := &PullResult{
		Response: &api.PullResponse{
			Changes:         changes,
			ServerTimestamp: serverTimestamp,
		},
	}

	if turbo && firstSync {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(result.Response); err != nil {
			return nil, fmt.Errorf("failed to encode turbo payload: %w", err)
		}
		result.Raw = buf.Bytes()
	}

	s.logger.Debug("Pull completed",
		"last_pulled_at", checkpoint,
		"server_timestamp", serverTimestamp,
		"turbo", result.Raw != nil,
	)

	return result, nil
}
