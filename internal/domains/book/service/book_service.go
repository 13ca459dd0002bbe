package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"powerwrite-backend/internal/domains/book/model"
	"powerwrite-backend/internal/domains/book/repository"
	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared"
	"powerwrite-backend/pkg/cache"
)

const showcaseCacheTTL = 5 * time.Minute

// BookService implements ServiceInterface.
type BookService struct {
	repo      repository.RepositoryInterface
	cache     cache.Cache
	artifacts generation.ArtifactCleaner
}

func NewBookService(repo repository.RepositoryInterface, cache cache.Cache, artifacts generation.ArtifactCleaner) ServiceInterface {
	return &BookService{
		repo:      repo,
		cache:     cache,
		artifacts: artifacts,
	}
}

func (s *BookService) CreateBook(ctx context.Context, actor shared.Actor, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}

	b := &model.Book{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            req.Title,
		Author:           req.Author,
		Summary:          req.Summary,
		Genre:            req.Genre,
		Status:           model.BookStatusDraft,
		ProductionStatus: model.ProductionDrafting,
	}
	if b.Author == "" {
		b.Author = actor.Email
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookService) GetBook(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.BookDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	// Showcased books are public; everything else is owner-only.
	if !detail.IsShowcased && detail.UserID.String() != actor.ID {
		return nil, model.ErrNotOwner
	}
	return detail, nil
}

func (s *BookService) ListBooks(ctx context.Context, actor shared.Actor) ([]model.Book, error) {
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *BookService) UpdateBook(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.ownedBook(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// Apply only the fields the client sent.
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.Summary != nil {
		b.Summary = *req.Summary
	}
	if req.Genre != nil {
		b.Genre = *req.Genre
	}
	if req.Status != nil {
		b.Status = model.BookStatus(*req.Status)
	}
	if req.ProductionStatus != nil {
		b.ProductionStatus = model.ProductionStatus(*req.ProductionStatus)
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.invalidateBook(ctx, id)
	return b, nil
}

func (s *BookService) DeleteBook(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if _, err := s.ownedBook(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateBook(ctx, id)

	// Exported artifacts go with the book. Best-effort: an orphan
	// object is harmless.
	prefix := fmt.Sprintf("exports/files/%s/", id)
	if err := s.artifacts.DeleteByPrefix(ctx, prefix); err != nil {
		log.Printf("[Book] Artifact cleanup failed for book %s: %v", id, err)
	}
	return nil
}

func (s *BookService) PutChapters(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.PutChaptersRequest) (*model.BookDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ownedBook(ctx, actor, id); err != nil {
		return nil, err
	}

	// Renumber by position: whatever numbers the client sent, chapter
	// k gets number k+1. Existing IDs are kept so audio links survive
	// a reorder.
	chapters := make([]model.Chapter, len(req.Chapters))
	for i, in := range req.Chapters {
		chID := uuid.New()
		if parsed, err := uuid.Parse(in.ID); err == nil {
			chID = parsed
		}

		status := model.ChapterStatus(in.Status)
		if status != model.ChapterStatusCompleted {
			status = model.ChapterStatusDraft
		}

		chapters[i] = model.Chapter{
			ID:        chID,
			BookID:    id,
			Number:    i + 1,
			Title:     in.Title,
			Content:   in.Content,
			WordCount: len(strings.Fields(in.Content)),
			Status:    status,
		}
	}

	if err := s.repo.ReplaceChapters(ctx, id, chapters); err != nil {
		return nil, err
	}
	s.invalidateBook(ctx, id)

	return s.repo.GetDetail(ctx, id)
}

func (s *BookService) DuplicateBook(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.BookDetail, error) {
	// Duplication is a pro feature; the demo account keeps it so the
	// playground shows the full product.
	if !actor.IsPro() && !actor.IsDemo {
		return nil, model.ErrProRequired
	}

	detail, err := s.GetBook(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id: %w", err)
	}

	copyBook := detail.Book
	copyBook.ID = uuid.New()
	copyBook.UserID = userID
	copyBook.Title = detail.Title + " (Copy)"
	copyBook.IsShowcased = false

	chapters := make([]model.Chapter, len(detail.Chapters))
	for i, ch := range detail.Chapters {
		ch.ID = uuid.New()
		ch.BookID = copyBook.ID
		ch.AudioURL = ""
		ch.AudioDuration = 0
		chapters[i] = ch
	}

	if err := s.repo.CreateWithChapters(ctx, &copyBook, chapters); err != nil {
		return nil, err
	}

	return s.repo.GetDetail(ctx, copyBook.ID)
}

func (s *BookService) SetShowcase(ctx context.Context, actor shared.Actor, id uuid.UUID, showcased bool) error {
	if _, err := s.ownedBook(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.SetShowcase(ctx, id, showcased); err != nil {
		return err
	}
	s.invalidateBook(ctx, id)
	return nil
}

func (s *BookService) ListShowcase(ctx context.Context) ([]model.Book, error) {
	var cached []model.Book
	if found, err := s.cache.Get(ctx, model.ShowcaseCacheKey, &cached); found {
		return cached, nil
	} else if err != nil {
		log.Printf("[BookService] Showcase cache read failed: %v", err)
	}

	books, err := s.repo.ListShowcased(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, model.ShowcaseCacheKey, books, showcaseCacheTTL); err != nil {
		log.Printf("[BookService] Showcase cache write failed: %v", err)
	}
	return books, nil
}

// ========== Generation hooks ==========

func (s *BookService) CreateGeneratedBook(ctx context.Context, userID uuid.UUID, input generation.OutlineInput) (uuid.UUID, []uuid.UUID, error) {
	b := &model.Book{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            input.Title,
		Author:           input.Author,
		Summary:          input.Description,
		Genre:            input.Genre,
		Status:           model.BookStatusGenerating,
		ProductionStatus: model.ProductionDrafting,
	}

	chapterIDs := make([]uuid.UUID, len(input.Chapters))
	chapters := make([]model.Chapter, len(input.Chapters))
	for i, ch := range input.Chapters {
		chapterIDs[i] = uuid.New()
		chapters[i] = model.Chapter{
			ID:     chapterIDs[i],
			BookID: b.ID,
			Number: i + 1,
			Title:  ch.Title,
			Status: model.ChapterStatusDraft,
		}
	}

	if err := s.repo.CreateWithChapters(ctx, b, chapters); err != nil {
		return uuid.Nil, nil, err
	}
	return b.ID, chapterIDs, nil
}

func (s *BookService) SaveChapterContent(ctx context.Context, chapterID uuid.UUID, content string, wordCount int) error {
	return s.repo.SaveChapterContent(ctx, chapterID, content, wordCount)
}

func (s *BookService) MarkBookCompleted(ctx context.Context, bookID uuid.UUID) error {
	if err := s.repo.SetStatus(ctx, bookID, model.BookStatusCompleted); err != nil {
		return err
	}
	s.invalidateBook(ctx, bookID)
	return nil
}

func (s *BookService) GetBookContent(ctx context.Context, bookID uuid.UUID) (*generation.BookContent, error) {
	detail, err := s.repo.GetDetail(ctx, bookID)
	if err != nil {
		return nil, err
	}

	content := &generation.BookContent{
		Title:    detail.Title,
		Author:   detail.Author,
		Chapters: make([]generation.ChapterContent, len(detail.Chapters)),
	}
	for i, ch := range detail.Chapters {
		content.Chapters[i] = generation.ChapterContent{
			Number:   ch.Number,
			Title:    ch.Title,
			Content:  ch.Content,
			AudioURL: ch.AudioURL,
		}
	}
	return content, nil
}

// GetBookAccess answers the ownership question the export job path
// asks before any job row exists.
func (s *BookService) GetBookAccess(ctx context.Context, bookID uuid.UUID) (*generation.BookAccess, error) {
	b, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return nil, generation.ErrBookNotFound
		}
		return nil, err
	}
	return &generation.BookAccess{
		OwnerID:   b.UserID,
		Showcased: b.IsShowcased,
	}, nil
}

// ========== helpers ==========

func (s *BookService) ownedBook(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID.String() != actor.ID {
		return nil, model.ErrNotOwner
	}
	return b, nil
}

func (s *BookService) invalidateBook(ctx context.Context, id uuid.UUID) {
	keys := []string{model.BookDetailCacheKey(id.String()), model.ShowcaseCacheKey}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("[BookService] Cache invalidation failed for book %s: %v", id, err)
	}
}
