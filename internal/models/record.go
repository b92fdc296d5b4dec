package models

import (
	"time"
)

type Step string

const (
	StepIdle           Step = "idle"
	StepExtracting     Step = "extracting"
	StepFingerprinting Step = "fingerprinting"
	StepAnalyzing      Step = "analyzing"
	StepCompleted      Step = "completed"
	StepFailed         Step = "failed"
)

// ProjectRecord is the persisted fingerprint of one submission.
// JSON field names are the wire contract of hashes_database.json and must not
// change; bson tags feed the optional Mongo mirror.
type ProjectRecord struct {
	SubmissionID string            `json:"-" bson:"submissionId"`
	ProcessedAt  time.Time         `json:"fecha_procesado" bson:"processedAt"`
	ProjectHash  string            `json:"hash_proyecto" bson:"projectHash"`
	Files        map[string]string `json:"archivos" bson:"files"`
	TotalFiles   int               `json:"total_archivos" bson:"totalFiles"`
	TotalLines   int               `json:"total_lineas" bson:"totalLines"`
}

// EligibleFileCount is the number of fingerprinted files. It can be smaller
// than TotalFiles, which also counts consolidated config files.
func (r *ProjectRecord) EligibleFileCount() int {
	return len(r.Files)
}

// DistinctDigests returns the set of distinct file digests. Similarity is
// computed over this set, never over the raw file list: a project holding the
// same content under two names contributes one digest, which is what keeps
// overlap percentages bounded by 100.
func (r *ProjectRecord) DistinctDigests() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Files))
	for _, digest := range r.Files {
		set[digest] = struct{}{}
	}
	return set
}

// AnalyzeRequest represents a request to run a batch analysis
type AnalyzeRequest struct {
	SubmissionsDir string `json:"submissionsDir,omitempty"`
}

// AnalyzeResponse represents the response from the analyze endpoint
type AnalyzeResponse struct {
	Step  Step   `json:"step"`
	RunID string `json:"runId"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
