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

// ExportVideoHandler renders a book into the narrated-storyboard
// format the web player consumes: one timed frame per chapter segment,
// stitched into a single artifact and uploaded to object storage.
type ExportVideoHandler struct {
	jobs    generation.Repository
	books   generation.BookReader
	storage generation.Uploader
}

func NewExportVideoHandler(jobs generation.Repository, books generation.BookReader, storage generation.Uploader) *ExportVideoHandler {
	return &ExportVideoHandler{
		jobs:    jobs,
		books:   books,
		storage: storage,
	}
}

func (h *ExportVideoHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.JobTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal export:video payload")
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
		log.Info().Str("job_id", payload.JobID).Str("status", string(job.Status)).
			Msg("Job already terminal, skipping")
		return nil
	}

	// pending -> rendering. A lost race means cancellation won.
	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusPending, generation.StatusRendering); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	book, err := h.books.GetBookContent(ctx, job.BookID)
	if err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("load book content: %w", err))
	}

	// Render one frame per chapter, writing progress after each so the
	// client poll shows movement and cancellation is honored between
	// frames.
	frames := make([]Frame, 0, len(book.Chapters))
	total := len(book.Chapters)
	for i, ch := range book.Chapters {
		if cancelled, err := isCancelled(ctx, h.jobs, jobID); err != nil {
			return err
		} else if cancelled {
			log.Info().Str("job_id", payload.JobID).Msg("Video export cancelled during render")
			return nil
		}

		frames = append(frames, RenderFrame(*book, ch))

		// Rendering covers the first 80% of the bar.
		if err := h.jobs.UpdateProgress(ctx, jobID, generation.ProgressUpdate{
			Progress:       (i + 1) * 80 / total,
			CurrentChapter: -1,
			TotalChapters:  -1,
			CurrentFrame:   i + 1,
			TotalFrames:    total,
		}); err != nil {
			log.Error().Err(err).Str("job_id", payload.JobID).Msg("Progress write failed")
		}
	}

	// rendering -> stitching.
	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusRendering, generation.StatusStitching); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	artifact := StitchFrames(*book, frames)
	url, err := h.storage.Upload(ctx, job.ArtifactKey(), artifact, "text/vtt")
	if err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("upload video artifact: %w", err))
	}

	if err := h.jobs.SetOutput(ctx, jobID, url); err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("record output url: %w", err))
	}
	if err := h.jobs.UpdateProgress(ctx, jobID, generation.ProgressUpdate{
		Progress: 100, CurrentChapter: -1, TotalChapters: -1, CurrentFrame: -1, TotalFrames: -1,
	}); err != nil {
		log.Error().Err(err).Str("job_id", payload.JobID).Msg("Final progress write failed")
	}

	// stitching -> completed.
	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusStitching, generation.StatusCompleted); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	log.Info().Str("job_id", payload.JobID).Str("output", url).Msg("Video export completed")
	return nil
}
