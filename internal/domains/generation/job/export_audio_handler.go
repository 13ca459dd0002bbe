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

// ExportAudioHandler builds the narration script artifact the speech
// pipeline consumes, one pass over the book's chapters.
type ExportAudioHandler struct {
	jobs    generation.Repository
	books   generation.BookReader
	storage generation.Uploader
}

func NewExportAudioHandler(jobs generation.Repository, books generation.BookReader, storage generation.Uploader) *ExportAudioHandler {
	return &ExportAudioHandler{
		jobs:    jobs,
		books:   books,
		storage: storage,
	}
}

func (h *ExportAudioHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.JobTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal export:audio payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", payload.JobID, asynq.SkipRetry)
	}

	job, err := h.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job.Status.IsTerminal() {
		return nil
	}

	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusPending, generation.StatusRendering); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	book, err := h.books.GetBookContent(ctx, job.BookID)
	if err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("load book content: %w", err))
	}

	if cancelled, err := isCancelled(ctx, h.jobs, jobID); err != nil {
		return err
	} else if cancelled {
		log.Info().Str("job_id", payload.JobID).Msg("Audio export cancelled during render")
		return nil
	}

	script := RenderNarrationScript(*book)
	if err := h.jobs.UpdateProgress(ctx, jobID, generation.ProgressUpdate{
		Progress: 80, CurrentChapter: -1, TotalChapters: -1, CurrentFrame: -1, TotalFrames: -1,
	}); err != nil {
		log.Error().Err(err).Str("job_id", payload.JobID).Msg("Progress write failed")
	}

	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusRendering, generation.StatusStitching); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	url, err := h.storage.Upload(ctx, job.ArtifactKey(), script, "application/ssml+xml")
	if err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("upload audio artifact: %w", err))
	}

	if err := h.jobs.SetOutput(ctx, jobID, url); err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("record output url: %w", err))
	}
	if err := h.jobs.UpdateProgress(ctx, jobID, generation.ProgressUpdate{
		Progress: 100, CurrentChapter: -1, TotalChapters: -1, CurrentFrame: -1, TotalFrames: -1,
	}); err != nil {
		log.Error().Err(err).Str("job_id", payload.JobID).Msg("Final progress write failed")
	}

	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusStitching, generation.StatusCompleted); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	log.Info().Str("job_id", payload.JobID).Str("output", url).Msg("Audio export completed")
	return nil
}
