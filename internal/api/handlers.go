package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mvallespi/dupscan/internal/batch"
	"github.com/mvallespi/dupscan/internal/config"
	"github.com/mvallespi/dupscan/internal/models"
	"github.com/mvallespi/dupscan/internal/repository"
	"github.com/rs/zerolog/log"
)

// Handler holds dependencies for handlers
type Handler struct {
	cfg        *config.Config
	runner     *batch.Runner
	tracker    *batch.StatusTracker
	archive    *repository.Archive
	runSem     chan struct{} // Semaphore for bounded concurrency
	runTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	runner *batch.Runner,
	tracker *batch.StatusTracker,
	archive *repository.Archive,
) *Handler {
	sem := make(chan struct{}, cfg.MaxConcurrentRuns)

	return &Handler{
		cfg:        cfg,
		runner:     runner,
		tracker:    tracker,
		archive:    archive,
		runSem:     sem,
		runTimeout: cfg.RunTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Analyze accepts a batch run, returns 202 and processes in the background.
func (h *Handler) Analyze(c *gin.Context) {
	// The body is optional; an empty POST runs with the configured directory.
	var req models.AnalyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "Invalid request body",
				Code:  "INVALID_REQUEST",
			})
			return
		}
	}

	dir := h.cfg.SubmissionsDir
	if req.SubmissionsDir != "" {
		dir = req.SubmissionsDir
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Submissions directory not found",
			Code:  "SUBMISSIONS_DIR_NOT_FOUND",
		})
		return
	}

	// Acquire semaphore (bounded concurrency)
	ctx := c.Request.Context()
	select {
	case h.runSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	runID := uuid.New().String()
	h.tracker.Set(ctx, runID, models.StepIdle)

	// Return 202 Accepted immediately
	c.JSON(http.StatusAccepted, models.AnalyzeResponse{
		Step:  models.StepIdle,
		RunID: runID,
	})

	// Process asynchronously
	go h.processRun(runID, req.SubmissionsDir)
}

// processRun executes a batch run in the background
func (h *Handler) processRun(runID, dir string) {
	defer func() { <-h.runSem }() // Release semaphore

	ctx, cancel := context.WithTimeout(context.Background(), h.runTimeout)
	defer cancel()

	report, _, err := h.runner.Run(ctx, runID, dir)
	if err != nil {
		log.Error().Err(err).Str("runId", runID).Msg("Batch run failed")
		return
	}

	log.Debug().
		Str("runId", runID).
		Int("projects", report.TotalProjects).
		Msg("Batch run completed successfully")
}

// Status reports the current step of a run
func (h *Handler) Status(c *gin.Context) {
	runID := c.Param("runId")
	if runID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "runId is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	step, err := h.tracker.Get(c.Request.Context(), runID)
	if err != nil {
		log.Error().Err(err).Str("runId", runID).Msg("Failed to read run status")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to read run status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Step:  step,
		RunID: runID,
	})
}

// Report serves the most recent similarity report. The local JSON file is
// authoritative; the Mongo archive is the fallback when it is absent.
func (h *Handler) Report(c *gin.Context) {
	path := h.cfg.ReportPath()
	if _, err := os.Stat(path); err == nil {
		c.File(path)
		return
	}

	if h.archive != nil {
		doc, err := h.archive.LatestReport(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusOK, doc.Report)
			return
		}
	}

	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error: "No report has been generated yet",
		Code:  "REPORT_NOT_FOUND",
	})
}
