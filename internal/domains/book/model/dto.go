package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateBookRequest - POST /v1/books
type CreateBookRequest struct {
	Title   string `json:"title" binding:"required"`
	Author  string `json:"author"`
	Summary string `json:"summary"`
	Genre   string `json:"genre"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Length(0, 255)),
		validation.Field(&r.Genre, validation.Length(0, 100)),
	)
}

// UpdateBookRequest - PATCH /v1/books/:id. Nil fields are untouched.
type UpdateBookRequest struct {
	Title            *string `json:"title"`
	Author           *string `json:"author"`
	Summary          *string `json:"summary"`
	Genre            *string `json:"genre"`
	Status           *string `json:"status"`
	ProductionStatus *string `json:"productionStatus"`
}

func (r UpdateBookRequest) Validate() error {
	if r.Status != nil && !BookStatus(*r.Status).IsValid() {
		return ErrInvalidStatus
	}
	if r.ProductionStatus != nil && !ProductionStatus(*r.ProductionStatus).IsValid() {
		return ErrInvalidStatus
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 500)),
		validation.Field(&r.Author, validation.Length(0, 255)),
	)
}

// ChapterInput is one chapter in a bulk replace. Number is accepted
// for wire compatibility but the server renumbers by position.
type ChapterInput struct {
	ID      string `json:"id"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// PutChaptersRequest - PUT /v1/books/:id/chapters
type PutChaptersRequest struct {
	Chapters []ChapterInput `json:"chapters"`
}

func (r PutChaptersRequest) Validate() error {
	for i, ch := range r.Chapters {
		if ch.Title == "" {
			return validation.NewError("validation_required",
				"chapter title is required").SetParams(map[string]interface{}{"index": i})
		}
	}
	return nil
}

// ExportFormat is a requested export target.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatDOCX ExportFormat = "docx"
	FormatTXT  ExportFormat = "txt"
	FormatMD   ExportFormat = "md"
	FormatHTML ExportFormat = "html"
	FormatEPUB ExportFormat = "epub"
)

// IsKnown reports whether the format is in the accepted set at all.
func (f ExportFormat) IsKnown() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatTXT, FormatMD, FormatHTML, FormatEPUB:
		return true
	}
	return false
}

// ExportRequest - POST /v1/books/export
type ExportRequest struct {
	BookID string       `json:"bookId" binding:"required"`
	Format ExportFormat `json:"format" binding:"required"`
}

func (r ExportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("bookId is required")),
		validation.Field(&r.Format, validation.Required.Error("format is required")),
	)
}

// ExportResult is a rendered artifact ready to stream.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
	StorageURL  string
}
