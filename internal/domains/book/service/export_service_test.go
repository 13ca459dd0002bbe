package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/book/model"
	"powerwrite-backend/internal/shared"
)

type fakeExportRepo struct {
	detail *model.BookDetail
	rows   []model.ReportRow
}

func (f *fakeExportRepo) Create(ctx context.Context, b *model.Book) error { return nil }
func (f *fakeExportRepo) CreateWithChapters(ctx context.Context, b *model.Book, chapters []model.Chapter) error {
	return nil
}
func (f *fakeExportRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return nil, model.ErrBookNotFound
}
func (f *fakeExportRepo) GetDetail(ctx context.Context, id uuid.UUID) (*model.BookDetail, error) {
	if f.detail == nil || f.detail.ID != id {
		return nil, model.ErrBookNotFound
	}
	return f.detail, nil
}
func (f *fakeExportRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Book, error) {
	return nil, nil
}
func (f *fakeExportRepo) Update(ctx context.Context, b *model.Book) error    { return nil }
func (f *fakeExportRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (f *fakeExportRepo) ReplaceChapters(ctx context.Context, bookID uuid.UUID, chapters []model.Chapter) error {
	return nil
}
func (f *fakeExportRepo) SaveChapterContent(ctx context.Context, chapterID uuid.UUID, content string, wordCount int) error {
	return nil
}
func (f *fakeExportRepo) SetStatus(ctx context.Context, bookID uuid.UUID, status model.BookStatus) error {
	return nil
}
func (f *fakeExportRepo) SetShowcase(ctx context.Context, bookID uuid.UUID, showcased bool) error {
	return nil
}
func (f *fakeExportRepo) ListShowcased(ctx context.Context) ([]model.Book, error) { return nil, nil }
func (f *fakeExportRepo) ListReportRows(ctx context.Context) ([]model.ReportRow, error) {
	return f.rows, nil
}

type fakeUploader struct {
	key         string
	contentType string
	err         error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.key = key
	f.contentType = contentType
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.local/" + key, nil
}

func testDetail(ownerID uuid.UUID) *model.BookDetail {
	d := &model.BookDetail{
		Book: model.Book{
			ID:      uuid.New(),
			UserID:  ownerID,
			Title:   "The Salt Road",
			Author:  "A. Writer",
			Summary: "A caravan story.",
		},
	}
	d.Chapters = []model.Chapter{
		{Number: 1, Title: "Departure", Content: "It begins.\n\nAnd continues."},
		{Number: 2, Title: "Crossing", Content: "The pass."},
	}
	return d
}

func proActor(id uuid.UUID) shared.Actor {
	return shared.Actor{ID: id.String(), Tier: "pro"}
}

func TestExportBookFormats(t *testing.T) {
	owner := uuid.New()
	detail := testDetail(owner)
	repo := &fakeExportRepo{detail: detail}
	uploader := &fakeUploader{}
	svc := NewExportService(repo, uploader)
	actor := proActor(owner)

	t.Run("txt", func(t *testing.T) {
		res, err := svc.ExportBook(context.Background(), actor, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatTXT,
		})
		require.NoError(t, err)

		assert.Equal(t, "the-salt-road.txt", res.FileName)
		assert.Equal(t, "text/plain; charset=utf-8", res.ContentType)
		assert.Contains(t, string(res.Data), "Chapter 1: Departure")
		assert.NotEmpty(t, res.StorageURL)
	})

	t.Run("markdown", func(t *testing.T) {
		res, err := svc.ExportBook(context.Background(), actor, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatMD,
		})
		require.NoError(t, err)

		assert.Contains(t, string(res.Data), "# The Salt Road")
		assert.Contains(t, string(res.Data), "## Chapter 2: Crossing")
	})

	t.Run("html escapes content", func(t *testing.T) {
		detail.Chapters[1].Content = "A < B & C"
		defer func() { detail.Chapters[1].Content = "The pass." }()

		res, err := svc.ExportBook(context.Background(), actor, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatHTML,
		})
		require.NoError(t, err)

		assert.Contains(t, string(res.Data), "A &lt; B &amp; C")
		assert.Contains(t, string(res.Data), "<title>The Salt Road</title>")
	})

	t.Run("print formats are rejected", func(t *testing.T) {
		for _, format := range []model.ExportFormat{model.FormatPDF, model.FormatDOCX} {
			_, err := svc.ExportBook(context.Background(), actor, model.ExportRequest{
				BookID: detail.ID.String(), Format: format,
			})
			assert.ErrorIs(t, err, model.ErrFormatNotSupported)
		}
	})

	t.Run("unknown format is rejected", func(t *testing.T) {
		_, err := svc.ExportBook(context.Background(), actor, model.ExportRequest{
			BookID: detail.ID.String(), Format: "mobi",
		})
		assert.ErrorIs(t, err, model.ErrFormatNotSupported)
	})

	t.Run("upload failure still returns the artifact", func(t *testing.T) {
		failing := NewExportService(repo, &fakeUploader{err: assert.AnError})
		res, err := failing.ExportBook(context.Background(), actor, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatTXT,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, res.Data)
		assert.Empty(t, res.StorageURL)
	})
}

func TestExportBookAccess(t *testing.T) {
	owner := uuid.New()
	detail := testDetail(owner)
	repo := &fakeExportRepo{detail: detail}
	svc := NewExportService(repo, &fakeUploader{})

	t.Run("free actor is gated", func(t *testing.T) {
		free := shared.Actor{ID: owner.String(), Tier: "free"}
		_, err := svc.ExportBook(context.Background(), free, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatTXT,
		})
		assert.ErrorIs(t, err, model.ErrProRequired)
	})

	t.Run("demo actor bypasses the gate", func(t *testing.T) {
		demo := shared.Actor{ID: owner.String(), Tier: "free", IsDemo: true}
		_, err := svc.ExportBook(context.Background(), demo, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatTXT,
		})
		assert.NoError(t, err)
	})

	t.Run("stranger cannot export a private book", func(t *testing.T) {
		stranger := proActor(uuid.New())
		_, err := svc.ExportBook(context.Background(), stranger, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatTXT,
		})
		assert.ErrorIs(t, err, model.ErrNotOwner)
	})

	t.Run("showcased book is exportable by anyone pro", func(t *testing.T) {
		detail.IsShowcased = true
		defer func() { detail.IsShowcased = false }()

		stranger := proActor(uuid.New())
		_, err := svc.ExportBook(context.Background(), stranger, model.ExportRequest{
			BookID: detail.ID.String(), Format: model.FormatTXT,
		})
		assert.NoError(t, err)
	})
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "the-salt-road", slugify("The Salt Road"))
	assert.Equal(t, "salt-road", slugify("  Salt/Road!  "))
	assert.Equal(t, "book", slugify("!!!"))
	assert.Equal(t, "book-42", slugify("Book 42"))
}
