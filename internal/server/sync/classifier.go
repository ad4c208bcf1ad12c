package sync

import "github.com/iudanet/deltasync/internal/models"

// Classify splits the records of one table into created, updated and deleted
// relative to the client's checkpoint.
//
// A tombstone is reported by id only. A live record is created when this is
// the client's first sync or when the server first persisted it strictly after
// the checkpoint; otherwise it is updated.
func Classify[R models.Syncable](records []R, checkpoint int64, firstSync bool) (created, updated []R, deleted []string) {
	created = []R{}
	updated = []R{}
	deleted = []string{}

	for _, r := range records {
		switch {
		case r.SyncDeleted():
			deleted = append(deleted, r.SyncID())
		case firstSync || r.SyncCreatedAt() > checkpoint:
			created = append(created, r)
		default:
			updated = append(updated, r)
		}
	}

	return created, updated, deleted
}

// ClassifyRecords is Classify for store records
func ClassifyRecords(records []models.Record, checkpoint int64, firstSync bool) models.TableChanges {
	created, updated, deleted := Classify(records, checkpoint, firstSync)
	return models.TableChanges{Created: created, Updated: updated, Deleted: deleted}
}
