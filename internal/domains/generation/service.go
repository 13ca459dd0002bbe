package generation

import (
	"context"

	"github.com/google/uuid"

	"powerwrite-backend/internal/domains/outline"
	"powerwrite-backend/internal/shared"
)

// Service orchestrates AI generation requests.
type Service interface {
	// GenerateOutline calls the provider synchronously and returns the
	// parsed outline plus the model the provider reports.
	GenerateOutline(ctx context.Context, actor shared.Actor, req GenerateOutlineRequest) (*outline.BookOutline, string, error)

	// StartBookGeneration creates the book rows and enqueues the
	// chapter-batch job. Returns the created job for polling.
	StartBookGeneration(ctx context.Context, actor shared.Actor, req GenerateBookRequest) (*GenerationJob, error)

	// StartExport creates an export job (video or audio) for a book
	// and enqueues it.
	StartExport(ctx context.Context, actor shared.Actor, bookID uuid.UUID, kind JobKind) (*GenerationJob, error)
}

// JobService covers the job read/cancel/delete lifecycle.
type JobService interface {
	// GetJob returns the job when the actor may see it: the owner, any
	// pro actor, or anyone when the job belongs to the demo account.
	GetJob(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (*GenerationJob, error)

	// CancelOrDelete cancels a running job or hard-deletes a terminal
	// one, and returns the user-facing message for the branch taken.
	CancelOrDelete(ctx context.Context, actor shared.Actor, jobID uuid.UUID) (string, error)
}

// ChapterBatchPayload is the generate:chapters task body. It carries
// the full brief so the worker needs no extra lookups to start.
type ChapterBatchPayload struct {
	JobID      string       `json:"job_id"`
	BookID     string       `json:"book_id"`
	UserID     string       `json:"user_id"`
	ModelID    string       `json:"model_id,omitempty"`
	Mode       string       `json:"mode"`
	Outline    OutlineInput `json:"outline"`
	ChapterIDs []string     `json:"chapter_ids"`
}
