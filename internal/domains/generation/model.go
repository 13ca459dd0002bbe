package generation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobKind distinguishes what the worker is producing.
type JobKind string

const (
	KindVideo    JobKind = "video"
	KindAudio    JobKind = "audio"
	KindChapters JobKind = "chapters"
)

func (k JobKind) IsValid() bool {
	return k == KindVideo || k == KindAudio || k == KindChapters
}

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRendering JobStatus = "rendering"
	StatusStitching JobStatus = "stitching"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the job can no longer make progress.
// Deletion is only allowed from a terminal status.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransitionTo enforces the job state machine:
//
//	pending -> rendering -> stitching -> completed | failed
//
// cancelled is reachable from any non-terminal status. Terminal
// statuses accept no further transitions.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled || next == StatusFailed {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusRendering
	case StatusRendering:
		return next == StatusStitching || next == StatusCompleted
	case StatusStitching:
		return next == StatusCompleted
	}
	return false
}

// GenerationJob is one asynchronous export or generation run. Progress
// fields are written by the worker after every stage so clients can
// poll the row.
type GenerationJob struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	BookID          uuid.UUID  `json:"book_id" db:"book_id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Kind            JobKind    `json:"kind" db:"kind"`
	Status          JobStatus  `json:"status" db:"status"`
	Progress        int        `json:"progress" db:"progress"`
	CurrentChapter  int        `json:"current_chapter" db:"current_chapter"`
	TotalChapters   int        `json:"total_chapters" db:"total_chapters"`
	CurrentFrame    int        `json:"current_frame" db:"current_frame"`
	TotalFrames     int        `json:"total_frames" db:"total_frames"`
	OutputURL       string     `json:"output_url,omitempty" db:"output_url"`
	Error           string     `json:"error,omitempty" db:"error"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// ArtifactKey is the storage key an export job writes its artifact
// under. Empty for kinds that produce no stored artifact.
func (j *GenerationJob) ArtifactKey() string {
	switch j.Kind {
	case KindVideo:
		return fmt.Sprintf("exports/video/%s.vtt", j.ID)
	case KindAudio:
		return fmt.Sprintf("exports/audio/%s.ssml", j.ID)
	}
	return ""
}

// ClampProgress bounds a progress value to the 0-100 range.
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
