package repository

import (
	"context"
	"sort"

	"github.com/mvallespi/dupscan/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

const recordsCollection = "project_records"

// RecordsRepository mirrors processed project records into Mongo so runs
// can be inspected or rebuilt without the JSON store file.
type RecordsRepository struct {
	repo *MongoRepository
}

func NewRecordsRepository(repo *MongoRepository) *RecordsRepository {
	return &RecordsRepository{repo: repo}
}

func (r *RecordsRepository) UpsertRecord(ctx context.Context, record models.ProjectRecord) error {
	filter := bson.M{"submissionId": record.SubmissionID}
	return r.repo.ReplaceOne(ctx, recordsCollection, filter, record)
}

func (r *RecordsRepository) AllRecords(ctx context.Context) ([]models.ProjectRecord, error) {
	cursor, err := r.repo.FindMany(ctx, recordsCollection, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.ProjectRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmissionID < records[j].SubmissionID
	})
	return records, nil
}

func (r *RecordsRepository) CountRecords(ctx context.Context) (int64, error) {
	return r.repo.CountDocuments(ctx, recordsCollection, bson.M{})
}
