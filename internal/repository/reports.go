package repository

import (
	"context"
	"time"

	"github.com/mvallespi/dupscan/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "similarity_reports"

// ReportDoc wraps a generated report with its insertion time so the
// latest one can be fetched without parsing the generado field.
type ReportDoc struct {
	CreatedAt time.Time     `bson:"createdAt"`
	Report    models.Report `bson:"report"`
}

type ReportsRepository struct {
	repo *MongoRepository
}

func NewReportsRepository(repo *MongoRepository) *ReportsRepository {
	return &ReportsRepository{repo: repo}
}

func (r *ReportsRepository) InsertReport(ctx context.Context, report models.Report) error {
	doc := ReportDoc{
		CreatedAt: time.Now().UTC(),
		Report:    report,
	}
	return r.repo.InsertOne(ctx, reportsCollection, doc)
}

func (r *ReportsRepository) LatestReport(ctx context.Context) (*ReportDoc, error) {
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})
	var doc ReportDoc
	if err := r.repo.FindOne(ctx, reportsCollection, bson.M{}, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
