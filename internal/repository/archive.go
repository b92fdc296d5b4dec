package repository

import (
	"context"

	"github.com/mvallespi/dupscan/internal/models"
)

// Archive is the optional Mongo mirror used by serve mode. The JSON
// store stays authoritative; this is a queryable copy.
type Archive struct {
	records *RecordsRepository
	reports *ReportsRepository
}

func NewArchive(repo *MongoRepository) *Archive {
	return &Archive{
		records: NewRecordsRepository(repo),
		reports: NewReportsRepository(repo),
	}
}

func (a *Archive) MirrorRecords(ctx context.Context, records []models.ProjectRecord) error {
	for _, record := range records {
		if err := a.records.UpsertRecord(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) InsertReport(ctx context.Context, report *models.Report) error {
	return a.reports.InsertReport(ctx, *report)
}

func (a *Archive) LatestReport(ctx context.Context) (*ReportDoc, error) {
	return a.reports.LatestReport(ctx)
}
