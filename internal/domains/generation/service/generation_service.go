package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/domains/outline"
	"powerwrite-backend/internal/shared"
)

// OutlineProvider is the AI facade slice this service consumes.
type OutlineProvider interface {
	GenerateOutline(ctx context.Context, modelID, prompt string) (*outline.BookOutline, string, error)
}

// BookGateway is the book-service slice this service consumes: row
// creation for generation runs and ownership lookups for export
// authorization.
type BookGateway interface {
	CreateGeneratedBook(ctx context.Context, userID uuid.UUID, input generation.OutlineInput) (bookID uuid.UUID, chapterIDs []uuid.UUID, err error)
	GetBookAccess(ctx context.Context, bookID uuid.UUID) (*generation.BookAccess, error)
}

// CreditDebiter charges generation credits. Implemented by the user
// service.
type CreditDebiter interface {
	DebitCredits(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// outlineCreditCost is charged per synchronous outline generation.
// Chapter credits are charged by the worker as chapters complete.
var outlineCreditCost = decimal.NewFromInt(1)

// GenerationService implements generation.Service.
type GenerationService struct {
	jobs     generation.Repository
	provider OutlineProvider
	books    BookGateway
	credits  CreditDebiter
	enqueuer Enqueuer
}

func NewGenerationService(
	jobs generation.Repository,
	provider OutlineProvider,
	books BookGateway,
	credits CreditDebiter,
	enqueuer Enqueuer,
) generation.Service {
	return &GenerationService{
		jobs:     jobs,
		provider: provider,
		books:    books,
		credits:  credits,
		enqueuer: enqueuer,
	}
}

func (s *GenerationService) GenerateOutline(ctx context.Context, actor shared.Actor, req generation.GenerateOutlineRequest) (*outline.BookOutline, string, error) {
	prompt := generation.BuildOutlinePrompt(req.Config, req.ReferenceBooks)

	result, modelUsed, err := s.provider.GenerateOutline(ctx, req.ModelID, prompt)
	if err != nil {
		return nil, "", err
	}

	// Demo usage is free; paid accounts are charged after a successful
	// provider round trip so failed calls cost nothing.
	if !actor.IsDemo {
		if id, parseErr := uuid.Parse(actor.ID); parseErr == nil {
			if err := s.credits.DebitCredits(ctx, id, outlineCreditCost); err != nil {
				log.Printf("[Generation] Credit debit failed for user %s: %v", actor.ID, err)
			}
		}
	}

	log.Printf("[Generation] Outline generated for %q (%d chapters, model %s)",
		result.Title, len(result.Chapters), modelUsed)
	return result, modelUsed, nil
}

func (s *GenerationService) StartBookGeneration(ctx context.Context, actor shared.Actor, req generation.GenerateBookRequest) (*generation.GenerationJob, error) {
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}

	// 1. Create the book and empty chapter rows up front so the client
	// can navigate to the book while generation runs.
	bookID, chapterIDs, err := s.books.CreateGeneratedBook(ctx, userID, req.Outline)
	if err != nil {
		return nil, fmt.Errorf("create book for generation: %w", err)
	}

	// 2. Create the job row the client polls.
	job := &generation.GenerationJob{
		ID:            uuid.New(),
		BookID:        bookID,
		UserID:        userID,
		Kind:          generation.KindChapters,
		Status:        generation.StatusPending,
		TotalChapters: len(req.Outline.Chapters),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	// 3. Enqueue the chapter-batch task carrying the full brief.
	mode := req.Mode
	if mode == "" {
		mode = generation.ModeParallel
	}
	ids := make([]string, len(chapterIDs))
	for i, id := range chapterIDs {
		ids[i] = id.String()
	}
	payload, err := json.Marshal(generation.ChapterBatchPayload{
		JobID:      job.ID.String(),
		BookID:     bookID.String(),
		UserID:     userID.String(),
		ModelID:    req.ModelID,
		Mode:       string(mode),
		Outline:    req.Outline,
		ChapterIDs: ids,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chapter batch payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeGenerateChapters, payload)
	_, err = s.enqueuer.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueGeneration),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Hour),
	)
	if err != nil {
		// The job row exists but nothing will run it; fail it so the
		// client sees a terminal state instead of eternal pending.
		if markErr := s.jobs.MarkFailed(ctx, job.ID, "failed to enqueue generation task"); markErr != nil {
			log.Printf("[Generation] Failed to mark job %s failed: %v", job.ID, markErr)
		}
		return nil, fmt.Errorf("enqueue chapter generation: %w", err)
	}

	log.Printf("[Generation] Book generation started: job=%s book=%s chapters=%d mode=%s",
		job.ID, bookID, job.TotalChapters, mode)
	return job, nil
}

func (s *GenerationService) StartExport(ctx context.Context, actor shared.Actor, bookID uuid.UUID, kind generation.JobKind) (*generation.GenerationJob, error) {
	if kind != generation.KindVideo && kind != generation.KindAudio {
		return nil, generation.ErrInvalidJobKind
	}

	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}

	// Same policy as the synchronous file export: pro or demo tier, and
	// the book must be the actor's own or a showcased one.
	access, err := s.books.GetBookAccess(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPro() && !actor.IsDemo {
		return nil, generation.ErrJobAccessDenied
	}
	if !access.Showcased && access.OwnerID != userID {
		return nil, generation.ErrJobAccessDenied
	}

	job := &generation.GenerationJob{
		ID:     uuid.New(),
		BookID: bookID,
		UserID: userID,
		Kind:   kind,
		Status: generation.StatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	taskType := shared.TypeExportVideo
	if kind == generation.KindAudio {
		taskType = shared.TypeExportAudio
	}
	payload, _ := json.Marshal(shared.JobTaskPayload{JobID: job.ID.String()})

	_, err = s.enqueuer.EnqueueContext(ctx, asynq.NewTask(taskType, payload),
		asynq.Queue(shared.QueueExports),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Hour),
	)
	if err != nil {
		if markErr := s.jobs.MarkFailed(ctx, job.ID, "failed to enqueue export task"); markErr != nil {
			log.Printf("[Generation] Failed to mark job %s failed: %v", job.ID, markErr)
		}
		return nil, fmt.Errorf("enqueue export: %w", err)
	}

	log.Printf("[Generation] Export started: job=%s book=%s kind=%s", job.ID, bookID, kind)
	return job, nil
}
