package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mvallespi/dupscan/internal/models"
)

// MemStore is an in-memory RecordStore for tests and dry runs
type MemStore struct {
	mu      sync.Mutex
	records map[string]models.ProjectRecord
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]models.ProjectRecord)}
}

func (m *MemStore) Upsert(_ context.Context, record models.ProjectRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.SubmissionID] = record
	return nil
}

func (m *MemStore) AllRecords(_ context.Context) ([]models.ProjectRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]models.ProjectRecord, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmissionID < records[j].SubmissionID
	})
	return records, nil
}

func (m *MemStore) Persist(_ context.Context) error {
	return nil
}
