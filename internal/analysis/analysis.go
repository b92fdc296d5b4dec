// Package analysis derives duplication findings from the full hash store:
// identical-project groups, partial-overlap pairs and globally most-duplicated
// files. Everything here is a pure function of the record snapshot, recomputed
// from scratch on every pass; nothing is incremental and nothing mutates the
// store.
package analysis

import (
	"context"
	"sort"
	"sync"

	"github.com/mvallespi/dupscan/internal/models"
)

const (
	// MinSharedFiles is the absolute noise floor for partial-copy pairs.
	// Two submissions sharing only one or two files are not reported, even
	// when that makes the pair 100% of a tiny project.
	MinSharedFiles = 3

	// TopFileLimit caps the most-duplicated-files ranking
	TopFileLimit = 5
)

// Result holds the three derivations of one analysis pass
type Result struct {
	Groups   []models.IdenticalGroup
	Pairs    []models.PartialCopy
	TopFiles []models.TopFile
}

// Run executes a full analysis pass over all records. A nil pool runs the
// pairwise phase sequentially; either path produces identical output.
func Run(ctx context.Context, records []models.ProjectRecord, pool *WorkerPool) Result {
	return Result{
		Groups:   IdenticalGroups(records),
		Pairs:    PartialOverlaps(ctx, records, pool),
		TopFiles: TopDuplicatedFiles(records, TopFileLimit),
	}
}

// comparableRecords drops submissions with zero fingerprint-eligible files.
// They are vacuously dissimilar: no group membership, no pairs, no error.
func comparableRecords(records []models.ProjectRecord) []models.ProjectRecord {
	kept := make([]models.ProjectRecord, 0, len(records))
	for _, rec := range records {
		if len(rec.Files) > 0 {
			kept = append(kept, rec)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].SubmissionID < kept[j].SubmissionID
	})
	return kept
}

// IdenticalGroups partitions records by project digest and keeps every
// partition of size two or more.
func IdenticalGroups(records []models.ProjectRecord) []models.IdenticalGroup {
	byDigest := make(map[string][]models.ProjectRecord)
	for _, rec := range comparableRecords(records) {
		byDigest[rec.ProjectHash] = append(byDigest[rec.ProjectHash], rec)
	}

	groups := make([]models.IdenticalGroup, 0)
	for digest, members := range byDigest {
		if len(members) < 2 {
			continue
		}
		ids := make([]string, 0, len(members))
		for _, rec := range members {
			ids = append(ids, rec.SubmissionID)
		}
		sort.Strings(ids)
		groups = append(groups, models.IdenticalGroup{
			ProjectHash: digest,
			Members:     ids,
			Percentage:  100,
			FileCount:   members[0].TotalFiles,
			TotalLines:  members[0].TotalLines,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ProjectHash < groups[j].ProjectHash
	})
	return groups
}

// PartialOverlaps reports every unordered pair of non-identical submissions
// sharing at least MinSharedFiles distinct file digests. Overlap is a set
// intersection over distinct digests: a project carrying the same content
// under five names still contributes one digest, so the percentage can never
// exceed 100.
func PartialOverlaps(ctx context.Context, records []models.ProjectRecord, pool *WorkerPool) []models.PartialCopy {
	eligible := comparableRecords(records)
	if len(eligible) < 2 {
		return []models.PartialCopy{}
	}

	var pairs []models.PartialCopy
	if pool == nil {
		pairs = overlapRows(eligible, 0, 1)
	} else {
		pairs = overlapParallel(ctx, eligible, pool)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Members[0] != pairs[j].Members[0] {
			return pairs[i].Members[0] < pairs[j].Members[0]
		}
		return pairs[i].Members[1] < pairs[j].Members[1]
	})
	return pairs
}

// overlapRows compares record i against every j > i, for i congruent to
// start modulo stride. With stride 1 this is the plain sequential pass; the
// parallel path partitions rows across workers with distinct start offsets.
func overlapRows(records []models.ProjectRecord, start, stride int) []models.PartialCopy {
	pairs := make([]models.PartialCopy, 0)
	for i := start; i < len(records); i += stride {
		for j := i + 1; j < len(records); j++ {
			if pair, ok := overlap(records[i], records[j]); ok {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

type overlapJob struct {
	records []models.ProjectRecord
	start   int
	stride  int
	out     chan<- []models.PartialCopy
	wg      *sync.WaitGroup
}

func (j *overlapJob) Execute(ctx context.Context) error {
	defer j.wg.Done()
	pairs := overlapRows(j.records, j.start, j.stride)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.out <- pairs:
		return nil
	}
}

func overlapParallel(ctx context.Context, records []models.ProjectRecord, pool *WorkerPool) []models.PartialCopy {
	workers := pool.Size()
	out := make(chan []models.PartialCopy, workers)
	var wg sync.WaitGroup

	submitted := 0
	for w := 0; w < workers; w++ {
		job := &overlapJob{records: records, start: w, stride: workers, out: out, wg: &wg}
		wg.Add(1)
		if err := pool.Submit(job); err != nil {
			wg.Done()
			continue
		}
		submitted++
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	pairs := make([]models.PartialCopy, 0)
	for chunk := range out {
		pairs = append(pairs, chunk...)
	}

	if submitted < workers {
		// Pool shut down mid-run; fall back so the output stays complete.
		select {
		case <-ctx.Done():
		default:
			return overlapRows(records, 0, 1)
		}
	}
	return pairs
}

// overlap computes the shared-file view of one unordered pair. Pairs whose
// project digests match are excluded here: those are identical groups and
// reporting them twice would double-count.
func overlap(a, b models.ProjectRecord) (models.PartialCopy, bool) {
	if a.ProjectHash == b.ProjectHash {
		return models.PartialCopy{}, false
	}

	setA := a.DistinctDigests()
	setB := b.DistinctDigests()

	shared := make([]string, 0)
	for digest := range setA {
		if _, ok := setB[digest]; ok {
			shared = append(shared, digest)
		}
	}
	if len(shared) < MinSharedFiles {
		return models.PartialCopy{}, false
	}

	minTotal := min(len(setA), len(setB))
	percentage := float64(len(shared)) / float64(minTotal) * 100

	files := make([]models.CopiedFile, 0, len(shared))
	for _, digest := range shared {
		files = append(files, models.CopiedFile{
			Name:   sharedFileName(digest, a, b),
			Digest: digest,
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].Digest < files[j].Digest
	})

	return models.PartialCopy{
		Members:     []string{a.SubmissionID, b.SubmissionID},
		SharedFiles: files,
		Percentage:  percentage,
		SharedCount: len(shared),
	}, true
}

// sharedFileName picks a stable display name for a shared digest: the
// lexicographically smallest path carrying it in either project.
func sharedFileName(digest string, records ...models.ProjectRecord) string {
	name := ""
	for _, rec := range records {
		for path, d := range rec.Files {
			if d != digest {
				continue
			}
			if name == "" || path < name {
				name = path
			}
		}
	}
	return name
}

// TopDuplicatedFiles builds the reverse index digest -> submissions and ranks
// digests appearing in two or more distinct submissions by occurrence count,
// ties broken by digest ascending.
func TopDuplicatedFiles(records []models.ProjectRecord, limit int) []models.TopFile {
	submissionsByDigest := make(map[string]map[string]struct{})
	nameByDigest := make(map[string]string)

	for _, rec := range comparableRecords(records) {
		for path, digest := range rec.Files {
			if submissionsByDigest[digest] == nil {
				submissionsByDigest[digest] = make(map[string]struct{})
			}
			submissionsByDigest[digest][rec.SubmissionID] = struct{}{}
			if name, ok := nameByDigest[digest]; !ok || path < name {
				nameByDigest[digest] = path
			}
		}
	}

	top := make([]models.TopFile, 0)
	for digest, submissions := range submissionsByDigest {
		if len(submissions) < 2 {
			continue
		}
		ids := make([]string, 0, len(submissions))
		for id := range submissions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		top = append(top, models.TopFile{
			Name:        nameByDigest[digest],
			Digest:      digest,
			Submissions: ids,
			Occurrences: len(ids),
		})
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].Occurrences != top[j].Occurrences {
			return top[i].Occurrences > top[j].Occurrences
		}
		return top[i].Digest < top[j].Digest
	})

	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top
}
