package generation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the generation-job data-access contract.
type Repository interface {
	Create(ctx context.Context, job *GenerationJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*GenerationJob, error)

	// UpdateStatusIf moves the job from an expected status to the next
	// one. Returns ErrStatusConflict when the row is no longer in the
	// expected status, so a late worker write cannot revive a job that
	// was cancelled in the meantime.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to JobStatus) error

	// Cancel marks the job cancelled if it is still non-terminal.
	// Reports whether a row was updated.
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)

	UpdateProgress(ctx context.Context, id uuid.UUID, p ProgressUpdate) error
	SetOutput(ctx context.Context, id uuid.UUID, url string) error

	// MarkFailed records the error text and fails the job unless it is
	// already terminal.
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error

	Delete(ctx context.Context, id uuid.UUID) error

	// PurgeTerminalBefore removes terminal jobs completed before the
	// cutoff. Returns the number of rows removed.
	PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// ListStuckPending returns jobs still pending after the given age.
	ListStuckPending(ctx context.Context, olderThan time.Duration) ([]GenerationJob, error)
}

// ProgressUpdate is one worker progress write. Negative counter values
// leave the stored counter untouched.
type ProgressUpdate struct {
	Progress       int
	CurrentChapter int
	TotalChapters  int
	CurrentFrame   int
	TotalFrames    int
}
