// Package store persists project fingerprints across independent runs.
// hashes_database.json is the system of record: every analysis pass reads the
// whole store, which is what lets a submission processed today match one
// processed months ago.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mvallespi/dupscan/internal/models"
)

// StoreVersion tags the persisted schema
const StoreVersion = "1.0"

// RecordStore is the persistence seam of the engine. The batch runner only
// talks to this interface, so tests run on an in-memory store and deployments
// can swap the JSON file for Mongo.
type RecordStore interface {
	Upsert(ctx context.Context, record models.ProjectRecord) error
	AllRecords(ctx context.Context) ([]models.ProjectRecord, error)
	Persist(ctx context.Context) error
}

// storeFile is the JSON wire shape of hashes_database.json
type storeFile struct {
	Version     string                          `json:"version"`
	LastUpdated time.Time                       `json:"ultima_actualizacion"`
	TotalCount  int                             `json:"total_proyectos"`
	Projects    map[string]models.ProjectRecord `json:"proyectos"`
}

// FileStore is the JSON-file implementation of RecordStore. A single mutex
// serializes writers; workers hand records to one upsert loop.
type FileStore struct {
	path string

	mu   sync.Mutex
	data storeFile
}

// Open loads the store at path. A missing file yields a fresh empty store; an
// unparsable file is a soft failure: the corruption is logged prominently and
// an empty store returned, accepting the documented loss of prior baselines.
func Open(path string) *FileStore {
	s := &FileStore{path: path, data: freshStore()}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read hash store, starting empty")
		}
		return s
	}

	var parsed storeFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Warn().Err(err).Str("path", path).
			Msg("Hash store is corrupt, starting empty; prior cross-session baseline is lost until re-persisted")
		return s
	}
	if parsed.Projects == nil {
		parsed.Projects = make(map[string]models.ProjectRecord)
	}
	for id, rec := range parsed.Projects {
		rec.SubmissionID = id
		parsed.Projects[id] = rec
	}
	s.data = parsed

	log.Debug().Str("path", path).Int("records", len(parsed.Projects)).Msg("Hash store loaded")
	return s
}

func freshStore() storeFile {
	return storeFile{
		Version:  StoreVersion,
		Projects: make(map[string]models.ProjectRecord),
	}
}

// Upsert inserts or overwrites the record keyed by submission id
func (s *FileStore) Upsert(_ context.Context, record models.ProjectRecord) error {
	if record.SubmissionID == "" {
		return fmt.Errorf("record has no submission id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-processing unchanged content keeps the prior record byte-identical,
	// original processing timestamp included.
	if prev, ok := s.data.Projects[record.SubmissionID]; ok && sameContent(prev, record) {
		record.ProcessedAt = prev.ProcessedAt
	}

	s.data.Projects[record.SubmissionID] = record
	s.data.TotalCount = len(s.data.Projects)
	s.data.LastUpdated = time.Now()
	return nil
}

func sameContent(a, b models.ProjectRecord) bool {
	if a.ProjectHash != b.ProjectHash || a.TotalFiles != b.TotalFiles ||
		a.TotalLines != b.TotalLines || len(a.Files) != len(b.Files) {
		return false
	}
	for path, digest := range a.Files {
		if b.Files[path] != digest {
			return false
		}
	}
	return true
}

// AllRecords returns a snapshot of every persisted record, current session
// and prior ones, sorted by submission id for deterministic analysis output.
func (s *FileStore) AllRecords(_ context.Context) ([]models.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]models.ProjectRecord, 0, len(s.data.Projects))
	for _, rec := range s.data.Projects {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmissionID < records[j].SubmissionID
	})
	return records, nil
}

// Len reports the number of stored records
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.Projects)
}

// Persist writes the full store back to disk. The write goes to a temp file
// in the target directory followed by an atomic rename, so a crash mid-write
// never leaves a truncated store behind.
func (s *FileStore) Persist(_ context.Context) error {
	s.mu.Lock()
	s.data.TotalCount = len(s.data.Projects)
	payload, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode hash store: %w", err)
	}

	return writeAtomic(s.path, payload)
}

func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// WriteJSON serializes v with the same crash-safe pattern the store uses.
// The report writer shares it.
func WriteJSON(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, payload)
}
