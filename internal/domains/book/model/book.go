package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookStatus tracks the writing lifecycle.
type BookStatus string

const (
	BookStatusDraft      BookStatus = "draft"
	BookStatusGenerating BookStatus = "generating"
	BookStatusCompleted  BookStatus = "completed"
)

func (s BookStatus) IsValid() bool {
	return s == BookStatusDraft || s == BookStatusGenerating || s == BookStatusCompleted
}

// ProductionStatus tracks the publishing pipeline stage, set manually
// by the author.
type ProductionStatus string

const (
	ProductionDrafting  ProductionStatus = "drafting"
	ProductionEditing   ProductionStatus = "editing"
	ProductionNarration ProductionStatus = "narration"
	ProductionPublished ProductionStatus = "published"
)

func (s ProductionStatus) IsValid() bool {
	switch s {
	case ProductionDrafting, ProductionEditing, ProductionNarration, ProductionPublished:
		return true
	}
	return false
}

// ChapterStatus is per-chapter completion.
type ChapterStatus string

const (
	ChapterStatusDraft     ChapterStatus = "draft"
	ChapterStatusCompleted ChapterStatus = "completed"
)

// Book is an authored work.
type Book struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	UserID           uuid.UUID        `json:"user_id" db:"user_id"`
	Title            string           `json:"title" db:"title"`
	Author           string           `json:"author" db:"author"`
	Summary          string           `json:"summary" db:"summary"`
	Genre            string           `json:"genre" db:"genre"`
	Status           BookStatus       `json:"status" db:"status"`
	ProductionStatus ProductionStatus `json:"production_status" db:"production_status"`
	IsShowcased      bool             `json:"is_showcased" db:"is_showcased"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// Chapter is one ordered unit of a book. Number is 1-based and always
// matches the chapter's position: the repository renumbers on every
// bulk write.
type Chapter struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	BookID        uuid.UUID     `json:"book_id" db:"book_id"`
	Number        int           `json:"number" db:"number"`
	Title         string        `json:"title" db:"title"`
	Content       string        `json:"content" db:"content"`
	WordCount     int           `json:"word_count" db:"word_count"`
	Status        ChapterStatus `json:"status" db:"status"`
	AudioURL      string        `json:"audio_url,omitempty" db:"audio_url"`
	AudioDuration int           `json:"audio_duration,omitempty" db:"audio_duration"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// BookDetail is a book with its chapters, the common read shape.
type BookDetail struct {
	Book
	Chapters []Chapter `json:"chapters"`
}

// Cache keys. The showcase list and book details are the two hot reads.
const ShowcaseCacheKey = "books:showcase"

func BookDetailCacheKey(id string) string {
	return fmt.Sprintf("books:detail:%s", id)
}

// ReportRow is one line of the admin books report.
type ReportRow struct {
	ID           uuid.UUID
	Title        string
	Author       string
	OwnerEmail   string
	Status       BookStatus
	ChapterCount int
	WordCount    int
	CreatedAt    time.Time
}
