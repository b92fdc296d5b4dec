package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmission(t *testing.T) {
	sub, err := ParseSubmission(&StreamMessage{
		ID: "1-0",
		Fields: map[string]string{
			"submissionId": "ana",
			"path":         "/entregas/ana",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", sub.ID)
	assert.Equal(t, "/entregas/ana", sub.Path)
	assert.Empty(t, sub.Archive)
}

func TestParseSubmission_ExplicitArchive(t *testing.T) {
	sub, err := ParseSubmission(&StreamMessage{
		ID: "1-0",
		Fields: map[string]string{
			"submissionId": "ana",
			"path":         "/entregas/ana",
			"archive":      "/entregas/ana/entrega.zip",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/entregas/ana/entrega.zip", sub.Archive)
}

func TestParseSubmission_MissingFields(t *testing.T) {
	_, err := ParseSubmission(&StreamMessage{ID: "1-0", Fields: map[string]string{"path": "/x"}})
	require.Error(t, err)

	_, err = ParseSubmission(&StreamMessage{ID: "1-0", Fields: map[string]string{"submissionId": "ana"}})
	require.Error(t, err)
}
