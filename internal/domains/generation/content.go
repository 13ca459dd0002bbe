package generation

import (
	"context"

	"github.com/google/uuid"
)

// BookContent is the read-model the export workers consume.
type BookContent struct {
	Title    string
	Author   string
	Chapters []ChapterContent
}

// ChapterContent is one chapter's exportable material.
type ChapterContent struct {
	Number   int
	Title    string
	Content  string
	AudioURL string
}

// BookAccess is the ownership slice of a book that export authorization
// checks before a job row exists.
type BookAccess struct {
	OwnerID   uuid.UUID
	Showcased bool
}

// BookReader loads export material. Implemented by the book service.
type BookReader interface {
	GetBookContent(ctx context.Context, bookID uuid.UUID) (*BookContent, error)
}

// Uploader stores a finished artifact and returns its URL. Implemented
// by the MinIO storage wrapper.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ArtifactCleaner drops stored artifacts when their owning book or job
// goes away. Implemented by the MinIO storage wrapper.
type ArtifactCleaner interface {
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ChapterWriter persists generated chapter prose. Implemented by the
// book service.
type ChapterWriter interface {
	SaveChapterContent(ctx context.Context, chapterID uuid.UUID, content string, wordCount int) error
	MarkBookCompleted(ctx context.Context, bookID uuid.UUID) error
}
