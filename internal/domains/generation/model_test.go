package generation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJobStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRendering.IsTerminal())
	assert.False(t, StatusStitching.IsTerminal())
}

func TestJobStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"pending to rendering", StatusPending, StatusRendering, true},
		{"pending to stitching skips a stage", StatusPending, StatusStitching, false},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"rendering to stitching", StatusRendering, StatusStitching, true},
		{"rendering to completed", StatusRendering, StatusCompleted, true},
		{"rendering to failed", StatusRendering, StatusFailed, true},
		{"stitching to completed", StatusStitching, StatusCompleted, true},
		{"stitching to rendering goes backwards", StatusStitching, StatusRendering, false},
		{"stitching to cancelled", StatusStitching, StatusCancelled, true},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled cannot revive", StatusCancelled, StatusRendering, false},
		{"failed cannot complete", StatusFailed, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestClampProgress(t *testing.T) {
	assert.Equal(t, 0, ClampProgress(-5))
	assert.Equal(t, 0, ClampProgress(0))
	assert.Equal(t, 42, ClampProgress(42))
	assert.Equal(t, 100, ClampProgress(100))
	assert.Equal(t, 100, ClampProgress(130))
}

func TestJobKindIsValid(t *testing.T) {
	assert.True(t, KindVideo.IsValid())
	assert.True(t, KindAudio.IsValid())
	assert.True(t, KindChapters.IsValid())
	assert.False(t, JobKind("pdf").IsValid())
}

func TestArtifactKey(t *testing.T) {
	id := uuid.New()

	video := &GenerationJob{ID: id, Kind: KindVideo}
	assert.Equal(t, "exports/video/"+id.String()+".vtt", video.ArtifactKey())

	audio := &GenerationJob{ID: id, Kind: KindAudio}
	assert.Equal(t, "exports/audio/"+id.String()+".ssml", audio.ArtifactKey())

	chapters := &GenerationJob{ID: id, Kind: KindChapters}
	assert.Empty(t, chapters.ArtifactKey())
}
