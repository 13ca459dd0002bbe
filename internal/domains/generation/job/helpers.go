package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"powerwrite-backend/internal/domains/generation"
)

// isCancelled checks the job row between stages. The row is the
// authoritative cancellation signal.
func isCancelled(ctx context.Context, jobs generation.Repository, jobID uuid.UUID) (bool, error) {
	job, err := jobs.GetByID(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("poll job status: %w", err)
	}
	return job.Status == generation.StatusCancelled, nil
}

// stopIfCancelled resolves a status-transition conflict: when the job
// was cancelled under us, stop quietly; otherwise surface the error.
func stopIfCancelled(ctx context.Context, jobs generation.Repository, jobID uuid.UUID, err error) error {
	if !errors.Is(err, generation.ErrStatusConflict) {
		return err
	}

	cancelled, pollErr := isCancelled(ctx, jobs, jobID)
	if pollErr != nil {
		return pollErr
	}
	if cancelled {
		log.Info().Str("job_id", jobID.String()).Msg("Job cancelled, worker stopping")
		return nil
	}
	return err
}

// failJob records the failure on the job row and skips asynq retries:
// the row already tells the user what happened.
func failJob(ctx context.Context, jobs generation.Repository, jobID uuid.UUID, cause error) error {
	log.Error().Err(cause).Str("job_id", jobID.String()).Msg("Job failed")
	if err := jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("Failed to record job failure")
	}
	return fmt.Errorf("%v: %w", cause, asynq.SkipRetry)
}
