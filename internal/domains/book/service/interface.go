package service

import (
	"context"

	"github.com/google/uuid"

	"powerwrite-backend/internal/domains/book/model"
	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared"
)

// ServiceInterface is the book business-logic contract.
type ServiceInterface interface {
	CreateBook(ctx context.Context, actor shared.Actor, req model.CreateBookRequest) (*model.Book, error)
	GetBook(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.BookDetail, error)
	ListBooks(ctx context.Context, actor shared.Actor) ([]model.Book, error)
	UpdateBook(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, actor shared.Actor, id uuid.UUID) error

	// PutChapters replaces the book's chapter set. Chapters are
	// renumbered by position before the write.
	PutChapters(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.PutChaptersRequest) (*model.BookDetail, error)

	// DuplicateBook deep-copies a book with its chapters. Pro-gated.
	DuplicateBook(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.BookDetail, error)

	SetShowcase(ctx context.Context, actor shared.Actor, id uuid.UUID, showcased bool) error
	ListShowcase(ctx context.Context) ([]model.Book, error)

	// Hooks the generation worker drives.
	CreateGeneratedBook(ctx context.Context, userID uuid.UUID, input generation.OutlineInput) (uuid.UUID, []uuid.UUID, error)
	SaveChapterContent(ctx context.Context, chapterID uuid.UUID, content string, wordCount int) error
	MarkBookCompleted(ctx context.Context, bookID uuid.UUID) error
	GetBookContent(ctx context.Context, bookID uuid.UUID) (*generation.BookContent, error)
	GetBookAccess(ctx context.Context, bookID uuid.UUID) (*generation.BookAccess, error)
}

// ExportServiceInterface renders book artifacts.
type ExportServiceInterface interface {
	ExportBook(ctx context.Context, actor shared.Actor, req model.ExportRequest) (*model.ExportResult, error)
	BuildBooksReport(ctx context.Context) ([]byte, error)
}
