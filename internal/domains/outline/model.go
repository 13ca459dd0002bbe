package outline

import (
	"time"

	"github.com/google/uuid"
)

// ChapterOutline is one planned chapter inside a book outline.
type ChapterOutline struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	WordCount int      `json:"wordCount"`
	KeyEvents []string `json:"keyEvents,omitempty"`
}

// Character is a planned character in the outline.
type Character struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
}

// BookOutline is the structured book plan produced before chapter
// generation. Chapter numbers are contiguous: chapters[k].Number == k+1
// after every mutation.
type BookOutline struct {
	Title          string           `json:"title"`
	Author         string           `json:"author"`
	Description    string           `json:"description,omitempty"`
	TotalWordCount int              `json:"totalWordCount"`
	Chapters       []ChapterOutline `json:"chapters"`
	Themes         []string         `json:"themes,omitempty"`
	Characters     []Character      `json:"characters,omitempty"`
}

// Snapshot is a named, persisted copy of an outline.
type Snapshot struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Name      string      `json:"name" db:"name"`
	Outline   BookOutline `json:"outline" db:"outline"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// Renumber rewrites chapter numbers to match slice position.
// This is the one invariant every mutation maintains.
func (o *BookOutline) Renumber() {
	for i := range o.Chapters {
		o.Chapters[i].Number = i + 1
	}
}

// AddChapter appends a chapter numbered len+1. The word count is an
// even share of the outline's original total; it is deliberately not
// renormalized across earlier chapters after repeated edits.
func (o *BookOutline) AddChapter(title, summary string) {
	share := 0
	if n := len(o.Chapters) + 1; n > 0 && o.TotalWordCount > 0 {
		share = o.TotalWordCount / n
	}
	o.Chapters = append(o.Chapters, ChapterOutline{
		Title:     title,
		Summary:   summary,
		WordCount: share,
	})
	o.Renumber()
}

// DeleteChapter removes the chapter at index i and renumbers.
func (o *BookOutline) DeleteChapter(i int) error {
	if i < 0 || i >= len(o.Chapters) {
		return ErrChapterIndexOutOfRange
	}
	o.Chapters = append(o.Chapters[:i], o.Chapters[i+1:]...)
	o.Renumber()
	return nil
}

// MoveChapter swaps the chapter at index i with its neighbor.
// direction is -1 (up) or +1 (down). Out-of-range moves are rejected.
func (o *BookOutline) MoveChapter(i, direction int) error {
	if direction != -1 && direction != 1 {
		return ErrInvalidMoveDirection
	}
	j := i + direction
	if i < 0 || i >= len(o.Chapters) || j < 0 || j >= len(o.Chapters) {
		return ErrChapterIndexOutOfRange
	}
	o.Chapters[i], o.Chapters[j] = o.Chapters[j], o.Chapters[i]
	o.Renumber()
	return nil
}

// UpdateChapter replaces title/summary/word count of the chapter at i.
func (o *BookOutline) UpdateChapter(i int, title, summary string, wordCount int) error {
	if i < 0 || i >= len(o.Chapters) {
		return ErrChapterIndexOutOfRange
	}
	ch := &o.Chapters[i]
	if title != "" {
		ch.Title = title
	}
	if summary != "" {
		ch.Summary = summary
	}
	if wordCount > 0 {
		ch.WordCount = wordCount
	}
	return nil
}

// AddTheme appends a theme, skipping duplicates.
func (o *BookOutline) AddTheme(theme string) {
	for _, t := range o.Themes {
		if t == theme {
			return
		}
	}
	o.Themes = append(o.Themes, theme)
}

// RemoveTheme drops a theme by value.
func (o *BookOutline) RemoveTheme(theme string) {
	for i, t := range o.Themes {
		if t == theme {
			o.Themes = append(o.Themes[:i], o.Themes[i+1:]...)
			return
		}
	}
}

// AddCharacter appends a character profile.
func (o *BookOutline) AddCharacter(c Character) {
	o.Characters = append(o.Characters, c)
}

// RemoveCharacter drops a character by name.
func (o *BookOutline) RemoveCharacter(name string) {
	for i, c := range o.Characters {
		if c.Name == name {
			o.Characters = append(o.Characters[:i], o.Characters[i+1:]...)
			return
		}
	}
}
