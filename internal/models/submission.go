package models

// Submission represents one student delivery waiting to be processed
type Submission struct {
	ID      string `json:"submissionId"`
	Path    string `json:"path"`
	Archive string `json:"archive,omitempty"`
}

// SourceFile is a single file captured from an extracted submission.
// RelativePath always uses forward slashes so digests are stable across
// platforms.
type SourceFile struct {
	RelativePath string
	Raw          []byte
	Extension    string
}

// DecodedFile is a SourceFile whose bytes survived the codec chain
type DecodedFile struct {
	RelativePath string
	Content      string
	Extension    string
}

type ProcessStatus string

const (
	ProcessOK      ProcessStatus = "ok"
	ProcessSkipped ProcessStatus = "skipped"
	ProcessFailed  ProcessStatus = "failed"
)

// ProcessResult records the per-submission outcome of a batch run.
// A failed submission never aborts the batch.
type ProcessResult struct {
	SubmissionID string        `json:"submissionId"`
	Status       ProcessStatus `json:"status"`
	Detail       string        `json:"detail,omitempty"`
	TotalFiles   int           `json:"totalFiles"`
	TotalLines   int           `json:"totalLines"`
}
