package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared"
)

// PurgeJobsHandler removes terminal jobs past the retention window.
// Runs daily from the scheduler.
type PurgeJobsHandler struct {
	jobs generation.Repository
}

func NewPurgeJobsHandler(jobs generation.Repository) *PurgeJobsHandler {
	return &PurgeJobsHandler{jobs: jobs}
}

func (h *PurgeJobsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.PurgeJobsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 30
	}

	cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)
	purged, err := h.jobs.PurgeTerminalBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge terminal jobs: %w", err)
	}

	log.Info().
		Int64("purged", purged).
		Int("retention_days", payload.RetentionDays).
		Msg("Terminal job purge completed")
	return nil
}

// SweepStuckJobsHandler fails jobs that never left pending. A job
// stuck for over an hour lost its queue task (worker crash, Redis
// flush); failing it gives the client a terminal answer.
type SweepStuckJobsHandler struct {
	jobs generation.Repository
}

func NewSweepStuckJobsHandler(jobs generation.Repository) *SweepStuckJobsHandler {
	return &SweepStuckJobsHandler{jobs: jobs}
}

const stuckPendingAge = time.Hour

func (h *SweepStuckJobsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	stuck, err := h.jobs.ListStuckPending(ctx, stuckPendingAge)
	if err != nil {
		return fmt.Errorf("list stuck jobs: %w", err)
	}

	for _, job := range stuck {
		if err := h.jobs.MarkFailed(ctx, job.ID, "job never picked up by a worker"); err != nil {
			log.Error().Err(err).Str("job_id", job.ID.String()).Msg("Failed to fail stuck job")
			continue
		}
		log.Warn().Str("job_id", job.ID.String()).Msg("Stuck pending job failed by sweep")
	}

	if len(stuck) > 0 {
		log.Info().Int("count", len(stuck)).Msg("Stuck job sweep completed")
	}
	return nil
}
