package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared"
)

// CancelJobHandler is the queue-side arm of cancellation. The API
// already flips the row; this handler covers the case where the API's
// row update raced a worker that was about to start, and records the
// reason.
type CancelJobHandler struct {
	jobs generation.Repository
}

func NewCancelJobHandler(jobs generation.Repository) *CancelJobHandler {
	return &CancelJobHandler{jobs: jobs}
}

func (h *CancelJobHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.CancelJobPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal job:cancel payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", payload.JobID, asynq.SkipRetry)
	}

	updated, err := h.jobs.Cancel(ctx, jobID)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}

	log.Info().
		Str("job_id", payload.JobID).
		Str("reason", payload.Reason).
		Bool("row_updated", updated).
		Msg("Cancellation notification processed")
	return nil
}
