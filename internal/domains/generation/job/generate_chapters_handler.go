package job

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"powerwrite-backend/internal/domains/generation"
)

// ChapterProvider is the AI facade slice the chapter worker consumes.
type ChapterProvider interface {
	GenerateChapter(ctx context.Context, modelID, prompt string) (string, string, error)
}

// CreditDebiter charges per-chapter generation credits.
type CreditDebiter interface {
	DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

var chapterCreditCost = decimal.NewFromInt(1)

// GenerateChaptersHandler writes a book chapter by chapter. Parallel
// mode runs fixed-size batches of provider calls concurrently;
// sequential mode is a batch size of one. Cancellation is checked
// between batches, never mid-call.
type GenerateChaptersHandler struct {
	jobs      generation.Repository
	writer    generation.ChapterWriter
	provider  ChapterProvider
	credits   CreditDebiter
	batchSize int
}

func NewGenerateChaptersHandler(
	jobs generation.Repository,
	writer generation.ChapterWriter,
	provider ChapterProvider,
	credits CreditDebiter,
	batchSize int,
) *GenerateChaptersHandler {
	if batchSize < 1 {
		batchSize = 3
	}
	return &GenerateChaptersHandler{
		jobs:      jobs,
		writer:    writer,
		provider:  provider,
		credits:   credits,
		batchSize: batchSize,
	}
}

func (h *GenerateChaptersHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload generation.ChapterBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal generate:chapters payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", payload.JobID, asynq.SkipRetry)
	}
	if len(payload.ChapterIDs) != len(payload.Outline.Chapters) {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf(
			"chapter id count %d does not match outline chapter count %d",
			len(payload.ChapterIDs), len(payload.Outline.Chapters)))
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

	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusPending, generation.StatusRendering); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	batchSize := h.batchSize
	if payload.Mode == string(generation.ModeSequential) {
		batchSize = 1
	}

	userID, _ := uuid.Parse(payload.UserID)
	total := len(payload.Outline.Chapters)
	done := 0

	for start := 0; start < total; start += batchSize {
		if cancelled, err := isCancelled(ctx, h.jobs, jobID); err != nil {
			return err
		} else if cancelled {
			log.Info().Str("job_id", payload.JobID).Int("chapters_done", done).
				Msg("Chapter generation cancelled")
			return nil
		}

		end := start + batchSize
		if end > total {
			end = total
		}

		if err := h.runBatch(ctx, payload, start, end); err != nil {
			return failJob(ctx, h.jobs, jobID, err)
		}
		done = end

		// Charge for the batch and publish progress. Generation covers
		// the first 95%; assembly takes the rest.
		if userID != uuid.Nil {
			cost := chapterCreditCost.Mul(decimal.NewFromInt(int64(end - start)))
			if err := h.credits.DebitCredits(ctx, userID, cost); err != nil {
				log.Warn().Err(err).Str("user_id", payload.UserID).Msg("Chapter credit debit failed")
			}
		}
		if err := h.jobs.UpdateProgress(ctx, jobID, generation.ProgressUpdate{
			Progress:       done * 95 / total,
			CurrentChapter: done,
			TotalChapters:  total,
			CurrentFrame:   -1,
			TotalFrames:    -1,
		}); err != nil {
			log.Error().Err(err).Str("job_id", payload.JobID).Msg("Progress write failed")
		}
	}

	// Assembly stage: flip the book to completed.
	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusRendering, generation.StatusStitching); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	bookID, err := uuid.Parse(payload.BookID)
	if err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("invalid book id %q", payload.BookID))
	}
	if err := h.writer.MarkBookCompleted(ctx, bookID); err != nil {
		return failJob(ctx, h.jobs, jobID, fmt.Errorf("mark book completed: %w", err))
	}

	if err := h.jobs.UpdateProgress(ctx, jobID, generation.ProgressUpdate{
		Progress: 100, CurrentChapter: total, TotalChapters: total, CurrentFrame: -1, TotalFrames: -1,
	}); err != nil {
		log.Error().Err(err).Str("job_id", payload.JobID).Msg("Final progress write failed")
	}
	if err := h.jobs.UpdateStatusIf(ctx, jobID, generation.StatusStitching, generation.StatusCompleted); err != nil {
		return stopIfCancelled(ctx, h.jobs, jobID, err)
	}

	log.Info().Str("job_id", payload.JobID).Int("chapters", total).Msg("Book generation completed")
	return nil
}

// runBatch generates chapters [start, end) concurrently and persists
// each one as it lands. The first error wins; later chapters in a
// failed batch may still have been written, which is fine because the
// job is marked failed and the rows are drafts.
func (h *GenerateChaptersHandler) runBatch(ctx context.Context, payload generation.ChapterBatchPayload, start, end int) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i := start; i < end; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			ch := payload.Outline.Chapters[idx]
			prompt := generation.BuildChapterPrompt(payload.Outline, ch, "")

			content, _, err := h.provider.GenerateChapter(ctx, payload.ModelID, prompt)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("generate chapter %d: %w", ch.Number, err)
				}
				mu.Unlock()
				return
			}

			chapterID, err := uuid.Parse(payload.ChapterIDs[idx])
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("invalid chapter id %q", payload.ChapterIDs[idx])
				}
				mu.Unlock()
				return
			}

			wordCount := len(strings.Fields(content))
			if err := h.writer.SaveChapterContent(ctx, chapterID, content, wordCount); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("save chapter %d: %w", ch.Number, err)
				}
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}
