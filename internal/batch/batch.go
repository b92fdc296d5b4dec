// Package batch orchestrates a full processing run: extract every submission,
// fingerprint it, upsert into the hash store, then analyze the whole store
// and emit the similarity report.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mvallespi/dupscan/internal/analysis"
	"github.com/mvallespi/dupscan/internal/config"
	"github.com/mvallespi/dupscan/internal/consolidate"
	"github.com/mvallespi/dupscan/internal/extract"
	"github.com/mvallespi/dupscan/internal/fingerprint"
	"github.com/mvallespi/dupscan/internal/models"
	"github.com/mvallespi/dupscan/internal/repository"
	"github.com/mvallespi/dupscan/internal/store"
)

// Runner wires the engine together. Store, tracker and archive are injected;
// tracker and archive may be nil (plain batch runs need neither Redis nor
// Mongo).
type Runner struct {
	cfg     *config.Config
	store   store.RecordStore
	pool    *analysis.WorkerPool
	tracker *StatusTracker
	archive *repository.Archive
}

func NewRunner(
	cfg *config.Config,
	recordStore store.RecordStore,
	pool *analysis.WorkerPool,
	tracker *StatusTracker,
	archive *repository.Archive,
) *Runner {
	return &Runner{
		cfg:     cfg,
		store:   recordStore,
		pool:    pool,
		tracker: tracker,
		archive: archive,
	}
}

// scanOptions resolves the configured conversion mode
func (r *Runner) scanOptions() (extract.ScanOptions, string) {
	switch r.cfg.Mode {
	case config.ModeJavaOnly:
		return extract.ScanOptions{Extensions: extract.JavaOnlyExtensions, IncludeTests: r.cfg.IncludeTests},
			"Solo archivos .java"
	case config.ModeCustom:
		return extract.ScanOptions{Extensions: extract.ParseExtensions(r.cfg.Extensions), IncludeTests: r.cfg.IncludeTests},
			"Personalizado"
	default:
		return extract.ScanOptions{Extensions: extract.FullProjectExtensions, IncludeTests: r.cfg.IncludeTests},
			"Proyecto completo"
	}
}

// ListSubmissions enumerates the student directories under the submissions
// root, sorted by name. An empty dir falls back to the configured root.
func (r *Runner) ListSubmissions(dir string) ([]models.Submission, error) {
	if dir == "" {
		dir = r.cfg.SubmissionsDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read submissions dir %s: %w", dir, err)
	}
	subs := make([]models.Submission, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		subs = append(subs, models.Submission{
			ID:   entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}
	return subs, nil
}

type submissionOutcome struct {
	record *models.ProjectRecord
	result models.ProcessResult
}

type submissionJob struct {
	runner     *Runner
	submission models.Submission
	out        chan<- submissionOutcome
}

func (j *submissionJob) Execute(ctx context.Context) error {
	outcome := j.runner.processSubmission(j.submission)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.out <- outcome:
		return nil
	}
}

// Run executes one full batch: process every submission in parallel, perform
// all upserts from this single loop, persist, analyze the whole store and
// write the report. Per-submission failures degrade to a recorded status and
// never abort the run.
func (r *Runner) Run(ctx context.Context, runID, dir string) (*models.Report, []models.ProcessResult, error) {
	r.tracker.Set(ctx, runID, models.StepExtracting)

	subs, err := r.ListSubmissions(dir)
	if err != nil {
		r.tracker.Set(ctx, runID, models.StepFailed)
		return nil, nil, err
	}
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		r.tracker.Set(ctx, runID, models.StepFailed)
		return nil, nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	if dir == "" {
		dir = r.cfg.SubmissionsDir
	}
	log.Info().Int("submissions", len(subs)).Str("dir", dir).Msg("Batch started")
	r.tracker.Set(ctx, runID, models.StepFingerprinting)

	outcomes := r.processAll(ctx, subs)

	// Single-writer discipline: workers only produce records, every upsert
	// happens here.
	results := make([]models.ProcessResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		results = append(results, outcome.result)
		if outcome.record == nil {
			continue
		}
		if err := r.store.Upsert(ctx, *outcome.record); err != nil {
			log.Error().Err(err).Str("submission", outcome.result.SubmissionID).Msg("Failed to upsert record")
		}
	}

	if err := r.store.Persist(ctx); err != nil {
		r.tracker.Set(ctx, runID, models.StepFailed)
		return nil, results, fmt.Errorf("failed to persist hash store: %w", err)
	}

	r.tracker.Set(ctx, runID, models.StepAnalyzing)

	report, err := r.Analyze(ctx)
	if err != nil {
		r.tracker.Set(ctx, runID, models.StepFailed)
		return nil, results, err
	}

	if r.archive != nil {
		r.mirror(ctx, report)
	}

	r.tracker.Set(ctx, runID, models.StepCompleted)

	ok, failed := 0, 0
	for _, res := range results {
		if res.Status == models.ProcessOK {
			ok++
		} else {
			failed++
		}
	}
	log.Info().
		Int("ok", ok).
		Int("failed", failed).
		Int("identicalGroups", report.TotalIdentical).
		Int("partialCopies", report.TotalPartial).
		Msg("Batch completed")

	return report, results, nil
}

func (r *Runner) processAll(ctx context.Context, subs []models.Submission) []submissionOutcome {
	if len(subs) == 0 {
		return nil
	}

	out := make(chan submissionOutcome, len(subs))
	submitted := 0
	for _, sub := range subs {
		job := &submissionJob{runner: r, submission: sub, out: out}
		if r.pool == nil {
			job.Execute(ctx)
			submitted++
			continue
		}
		if err := r.pool.Submit(job); err != nil {
			log.Error().Err(err).Str("submission", sub.ID).Msg("Failed to submit job")
			continue
		}
		submitted++
	}

	outcomes := make([]submissionOutcome, 0, submitted)
	for len(outcomes) < submitted {
		select {
		case <-ctx.Done():
			return outcomes
		case outcome := <-out:
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}

// Analyze re-derives every finding from the full store contents, current
// session plus all prior ones, and writes the report.
func (r *Runner) Analyze(ctx context.Context) (*models.Report, error) {
	records, err := r.store.AllRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot hash store: %w", err)
	}

	result := analysis.Run(ctx, records, r.pool)
	report := analysis.BuildReport(len(records), result)

	if err := analysis.WriteReport(r.cfg.ReportPath(), report); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return report, nil
}

// ProcessOne handles a single submission outside a batch (stream-driven
// arrivals): fingerprint, upsert, persist. Analysis is deferred to the next
// analyze call.
func (r *Runner) ProcessOne(ctx context.Context, sub models.Submission) (models.ProcessResult, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return models.ProcessResult{}, fmt.Errorf("failed to create output dir: %w", err)
	}

	outcome := r.processSubmission(sub)
	if outcome.record == nil {
		return outcome.result, fmt.Errorf("submission %s: %s", sub.ID, outcome.result.Detail)
	}
	if err := r.store.Upsert(ctx, *outcome.record); err != nil {
		return outcome.result, err
	}
	if err := r.store.Persist(ctx); err != nil {
		return outcome.result, err
	}
	return outcome.result, nil
}

// processSubmission runs the per-submission pipeline: locate archive,
// extract, scan, decode, fingerprint, consolidate.
func (r *Runner) processSubmission(sub models.Submission) submissionOutcome {
	skip := func(detail string) submissionOutcome {
		log.Warn().Str("submission", sub.ID).Msg(detail)
		return submissionOutcome{result: models.ProcessResult{
			SubmissionID: sub.ID, Status: models.ProcessSkipped, Detail: detail,
		}}
	}
	fail := func(err error) submissionOutcome {
		log.Error().Err(err).Str("submission", sub.ID).Msg("Failed to process submission")
		return submissionOutcome{result: models.ProcessResult{
			SubmissionID: sub.ID, Status: models.ProcessFailed, Detail: err.Error(),
		}}
	}

	archivePath := sub.Archive
	if archivePath == "" {
		found, err := extract.FindArchive(sub.Path)
		if errors.Is(err, extract.ErrNoArchive) {
			return skip("No zip archive in submission")
		}
		if err != nil {
			return fail(err)
		}
		archivePath = found
	}

	tempDir, err := os.MkdirTemp("", "dupscan-*")
	if err != nil {
		return fail(fmt.Errorf("failed to create temp dir: %w", err))
	}
	defer os.RemoveAll(tempDir)

	root, err := extract.Extract(archivePath, tempDir)
	if err != nil {
		return fail(err)
	}
	projectType := extract.DetectProjectType(root)

	opts, modeName := r.scanOptions()
	files, err := extract.Scan(root, opts)
	if err != nil {
		return fail(err)
	}
	if len(files) == 0 {
		return skip("No files matched the selected extensions")
	}

	decoded := make([]models.DecodedFile, 0, len(files))
	normalized := make([]fingerprint.NormalizedFile, 0, len(files))
	digests := make(map[string]string)
	for _, file := range files {
		content, err := fingerprint.Decode(file.Raw)
		if err != nil {
			// Undecodable file: excluded from consolidation and
			// fingerprinting, batch continues.
			log.Warn().
				Str("submission", sub.ID).
				Str("file", file.RelativePath).
				Msg("File not decodable, excluded")
			continue
		}
		decoded = append(decoded, models.DecodedFile{
			RelativePath: file.RelativePath,
			Content:      content,
			Extension:    file.Extension,
		})
		if fingerprint.Eligible(file.Extension) {
			norm := fingerprint.NormalizeText(content)
			normalized = append(normalized, fingerprint.NormalizedFile{Path: file.RelativePath, Content: norm})
			digests[file.RelativePath] = fingerprint.FileDigest(norm)
		}
	}

	meta := consolidate.Metadata{
		SubmissionID: sub.ID,
		ProjectName:  filepath.Base(root),
		ProjectType:  projectType,
		ModeName:     modeName,
	}
	outPath := filepath.Join(r.cfg.OutputDir, sub.ID+".txt")
	stats, err := consolidate.GenerateFile(outPath, meta, decoded)
	if err != nil {
		return fail(err)
	}

	record := &models.ProjectRecord{
		SubmissionID: sub.ID,
		ProcessedAt:  time.Now(),
		ProjectHash:  fingerprint.ProjectDigest(normalized),
		Files:        digests,
		TotalFiles:   stats.TotalFiles,
		TotalLines:   stats.TotalLines,
	}

	log.Debug().
		Str("submission", sub.ID).
		Int("files", stats.TotalFiles).
		Int("fingerprinted", len(digests)).
		Str("projectType", projectType).
		Msg("Submission processed")

	return submissionOutcome{
		record: record,
		result: models.ProcessResult{
			SubmissionID: sub.ID,
			Status:       models.ProcessOK,
			TotalFiles:   stats.TotalFiles,
			TotalLines:   stats.TotalLines,
		},
	}
}

func (r *Runner) mirror(ctx context.Context, report *models.Report) {
	records, err := r.store.AllRecords(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to snapshot store for Mongo mirror")
		return
	}
	if err := r.archive.MirrorRecords(ctx, records); err != nil {
		log.Warn().Err(err).Msg("Failed to mirror records to Mongo")
	}
	if err := r.archive.InsertReport(ctx, report); err != nil {
		log.Warn().Err(err).Msg("Failed to archive report to Mongo")
	}
}
