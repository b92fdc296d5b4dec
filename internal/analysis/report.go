package analysis

import (
	"time"

	"github.com/mvallespi/dupscan/internal/models"
	"github.com/mvallespi/dupscan/internal/store"
)

// BuildReport serializes an analysis result into the report schema. Pure
// mapping; it never touches the hash store.
func BuildReport(totalProjects int, result Result) *models.Report {
	return &models.Report{
		Generated:      time.Now(),
		TotalProjects:  totalProjects,
		TotalIdentical: len(result.Groups),
		TotalPartial:   len(result.Pairs),
		Identical:      result.Groups,
		Partial:        result.Pairs,
		TopFiles:       result.TopFiles,
	}
}

// WriteReport persists the report with the store's crash-safe write pattern
func WriteReport(path string, report *models.Report) error {
	return store.WriteJSON(path, report)
}
