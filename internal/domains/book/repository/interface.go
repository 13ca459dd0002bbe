package repository

import (
	"context"

	"github.com/google/uuid"

	"powerwrite-backend/internal/domains/book/model"
)

// RepositoryInterface is the book data-access contract.
type RepositoryInterface interface {
	Create(ctx context.Context, b *model.Book) error
	CreateWithChapters(ctx context.Context, b *model.Book, chapters []model.Chapter) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.BookDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ReplaceChapters swaps the book's chapter set in one transaction.
	// Chapters must arrive renumbered; positions are trusted as given.
	ReplaceChapters(ctx context.Context, bookID uuid.UUID, chapters []model.Chapter) error

	SaveChapterContent(ctx context.Context, chapterID uuid.UUID, content string, wordCount int) error
	SetStatus(ctx context.Context, bookID uuid.UUID, status model.BookStatus) error

	SetShowcase(ctx context.Context, bookID uuid.UUID, showcased bool) error
	ListShowcased(ctx context.Context) ([]model.Book, error)

	// ListReportRows feeds the admin xlsx report.
	ListReportRows(ctx context.Context) ([]model.ReportRow, error)
}
