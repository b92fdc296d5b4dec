package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mvallespi/dupscan/internal/models"
)

const statusKeyPrefix = "dupscan:run_status:"

var validSteps = map[models.Step]bool{
	models.StepIdle:           true,
	models.StepExtracting:     true,
	models.StepFingerprinting: true,
	models.StepAnalyzing:      true,
	models.StepCompleted:      true,
	models.StepFailed:         true,
}

// StatusTracker publishes run progress to Redis so API clients can poll it.
// A nil tracker is a no-op; batch runs work without Redis.
type StatusTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatusTracker(client *redis.Client, ttl time.Duration) *StatusTracker {
	return &StatusTracker{client: client, ttl: ttl}
}

func (t *StatusTracker) Set(ctx context.Context, runID string, step models.Step) {
	if t == nil || t.client == nil {
		return
	}
	if !validSteps[step] {
		log.Error().Str("step", string(step)).Msg("Refusing to publish unknown run step")
		return
	}

	key := statusKeyPrefix + runID
	if err := t.client.Set(ctx, key, string(step), t.ttl).Err(); err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("runId", runID).
			Msg("Failed to update run status in Redis")
		return
	}

	log.Trace().
		Str("runId", runID).
		Str("step", string(step)).
		Msg("Run status updated")
}

// Get reads the current step of a run. Unknown runs report StepIdle.
func (t *StatusTracker) Get(ctx context.Context, runID string) (models.Step, error) {
	if t == nil || t.client == nil {
		return models.StepIdle, fmt.Errorf("status tracking is not enabled")
	}

	val, err := t.client.Get(ctx, statusKeyPrefix+runID).Result()
	if err == redis.Nil {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read run status: %w", err)
	}
	return models.Step(val), nil
}
