package service

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	epub "github.com/go-shiori/go-epub"
	"github.com/xuri/excelize/v2"

	"powerwrite-backend/internal/domains/book/model"
	"powerwrite-backend/internal/domains/book/repository"
	"powerwrite-backend/internal/domains/generation"
	"powerwrite-backend/internal/shared"
	"powerwrite-backend/internal/shared/utils"
)

// ExportService renders book artifacts and uploads them to object
// storage before streaming them back.
type ExportService struct {
	repo    repository.RepositoryInterface
	storage generation.Uploader
}

func NewExportService(repo repository.RepositoryInterface, storage generation.Uploader) ExportServiceInterface {
	return &ExportService{
		repo:    repo,
		storage: storage,
	}
}

func (s *ExportService) ExportBook(ctx context.Context, actor shared.Actor, req model.ExportRequest) (*model.ExportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.Format.IsKnown() {
		return nil, model.ErrFormatNotSupported
	}

	// Layout engines for print formats are out of scope; the endpoint
	// still accepts them so the client gets a structured 422 instead
	// of a validation error.
	if req.Format == model.FormatPDF || req.Format == model.FormatDOCX {
		return nil, model.ErrFormatNotSupported
	}

	if !actor.IsPro() && !actor.IsDemo {
		return nil, model.ErrProRequired
	}

	bookID := utils.ParseStringToUUID(req.BookID)
	detail, err := s.repo.GetDetail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !detail.IsShowcased && detail.UserID.String() != actor.ID {
		return nil, model.ErrNotOwner
	}

	var (
		data        []byte
		contentType string
	)
	switch req.Format {
	case model.FormatTXT:
		data = RenderTXT(detail)
		contentType = "text/plain; charset=utf-8"
	case model.FormatMD:
		data = RenderMarkdown(detail)
		contentType = "text/markdown; charset=utf-8"
	case model.FormatHTML:
		data = RenderHTML(detail)
		contentType = "text/html; charset=utf-8"
	case model.FormatEPUB:
		data, err = renderEPUB(detail)
		if err != nil {
			return nil, fmt.Errorf("render epub: %w", err)
		}
		contentType = "application/epub+zip"
	}

	fileName := fmt.Sprintf("%s.%s", slugify(detail.Title), req.Format)
	key := fmt.Sprintf("exports/files/%s/%s", detail.ID, fileName)

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		// The download still works without the stored copy.
		log.Printf("[Export] Artifact upload failed for book %s: %v", detail.ID, err)
	}

	return &model.ExportResult{
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
		StorageURL:  url,
	}, nil
}

// RenderTXT - plain text, one chapter per block.
func RenderTXT(d *model.BookDetail) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nby %s\n", d.Title, d.Author)
	if d.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Summary)
	}
	for _, ch := range d.Chapters {
		fmt.Fprintf(&b, "\n\nChapter %d: %s\n\n%s\n", ch.Number, ch.Title, ch.Content)
	}

	return []byte(b.String())
}

// RenderMarkdown - one heading per chapter.
func RenderMarkdown(d *model.BookDetail) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n*by %s*\n", d.Title, d.Author)
	if d.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Summary)
	}
	for _, ch := range d.Chapters {
		fmt.Fprintf(&b, "\n## Chapter %d: %s\n\n%s\n", ch.Number, ch.Title, ch.Content)
	}

	return []byte(b.String())
}

// RenderHTML - a single self-contained document.
func RenderHTML(d *model.BookDetail) []byte {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<meta charset=\"utf-8\">\n<title>%s</title>\n", html.EscapeString(d.Title))
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n<p><em>by %s</em></p>\n",
		html.EscapeString(d.Title), html.EscapeString(d.Author))
	if d.Summary != "" {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(d.Summary))
	}
	for _, ch := range d.Chapters {
		fmt.Fprintf(&b, "<h2>Chapter %d: %s</h2>\n", ch.Number, html.EscapeString(ch.Title))
		for _, para := range strings.Split(ch.Content, "\n\n") {
			if strings.TrimSpace(para) == "" {
				continue
			}
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
		}
	}
	b.WriteString("</body>\n</html>\n")

	return []byte(b.String())
}

func renderEPUB(d *model.BookDetail) ([]byte, error) {
	e, err := epub.NewEpub(d.Title)
	if err != nil {
		return nil, fmt.Errorf("create epub: %w", err)
	}
	e.SetAuthor(d.Author)
	e.SetLang("en")
	if d.Summary != "" {
		e.SetDescription(d.Summary)
	}

	for _, ch := range d.Chapters {
		sectionTitle := fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Title)

		var body strings.Builder
		fmt.Fprintf(&body, "<h1>%s</h1>", html.EscapeString(sectionTitle))
		for _, para := range strings.Split(ch.Content, "\n\n") {
			if strings.TrimSpace(para) == "" {
				continue
			}
			fmt.Fprintf(&body, "<p>%s</p>", html.EscapeString(para))
		}

		if _, err := e.AddSection(body.String(), sectionTitle, "", ""); err != nil {
			return nil, fmt.Errorf("add chapter %d: %w", ch.Number, err)
		}
	}

	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write epub: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildBooksReport produces the admin xlsx summary.
func (s *ExportService) BuildBooksReport(ctx context.Context) ([]byte, error) {
	rows, err := s.repo.ListReportRows(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Books"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Title", "Author", "Owner", "Status", "Chapters", "Words", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for r, row := range rows {
		values := []interface{}{
			row.ID.String(), row.Title, row.Author, row.OwnerEmail,
			string(row.Status), row.ChapterCount, row.WordCount,
			row.CreatedAt.Format("2006-01-02"),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return buf.Bytes(), nil
}

// slugify makes a filesystem-safe file stem from a title.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		out = "book"
	}
	return out
}
