package repository

import (
	"context"
	"fmt"

	"github.com/mvallespi/dupscan/internal/models"
	"github.com/mvallespi/dupscan/internal/store"
)

var _ store.RecordStore = (*MongoStore)(nil)

// MongoStore is a RecordStore backed by the records collection, for
// deployments where the JSON file is not the system of record. Writes go
// straight to Mongo, so Persist is a no-op.
type MongoStore struct {
	records *RecordsRepository
}

func NewMongoStore(repo *MongoRepository) *MongoStore {
	return &MongoStore{records: NewRecordsRepository(repo)}
}

func (s *MongoStore) Upsert(ctx context.Context, record models.ProjectRecord) error {
	if record.SubmissionID == "" {
		return fmt.Errorf("record has no submission id")
	}
	return s.records.UpsertRecord(ctx, record)
}

func (s *MongoStore) AllRecords(ctx context.Context) ([]models.ProjectRecord, error) {
	return s.records.AllRecords(ctx)
}

func (s *MongoStore) Persist(ctx context.Context) error {
	return nil
}
