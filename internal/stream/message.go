package stream

import (
	"fmt"

	"github.com/mvallespi/dupscan/internal/models"
)

// StreamMessage is a raw entry read from the submissions stream.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission extracts a submission from a stream entry. Producers push
// entries with a submissionId and the directory (or zip) path to process.
func ParseSubmission(msg *StreamMessage) (models.Submission, error) {
	id := msg.Fields["submissionId"]
	if id == "" {
		return models.Submission{}, fmt.Errorf("message %s missing submissionId", msg.ID)
	}
	path := msg.Fields["path"]
	if path == "" {
		return models.Submission{}, fmt.Errorf("message %s missing path", msg.ID)
	}
	return models.Submission{
		ID:      id,
		Path:    path,
		Archive: msg.Fields["archive"],
	}, nil
}
