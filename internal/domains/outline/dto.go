package outline

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SaveSnapshotRequest - POST /v1/outlines
type SaveSnapshotRequest struct {
	Name    string      `json:"name" binding:"required"`
	Outline BookOutline `json:"outline" binding:"required"`
}

func (r SaveSnapshotRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255)),
	); err != nil {
		return err
	}

	if r.Outline.Title == "" {
		return validation.NewError("validation_required", "outline.title is required")
	}
	if len(r.Outline.Chapters) == 0 {
		return validation.NewError("validation_required", "outline.chapters must not be empty")
	}
	return nil
}

// MutateRequest drives the chapter/theme/character mutation surface on
// a stored snapshot. Op selects the mutation; the other fields feed it.
type MutateRequest struct {
	Op        string    `json:"op" binding:"required"`
	Index     int       `json:"index"`
	Direction int       `json:"direction"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	WordCount int       `json:"wordCount"`
	Theme     string    `json:"theme"`
	Character Character `json:"character"`
	Name      string    `json:"name"`
}

// Mutation ops.
const (
	OpAddChapter      = "add_chapter"
	OpDeleteChapter   = "delete_chapter"
	OpMoveChapter     = "move_chapter"
	OpUpdateChapter   = "update_chapter"
	OpAddTheme        = "add_theme"
	OpRemoveTheme     = "remove_theme"
	OpAddCharacter    = "add_character"
	OpRemoveCharacter = "remove_character"
)

func (r MutateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Op,
			validation.Required.Error("op is required"),
			validation.In(OpAddChapter, OpDeleteChapter, OpMoveChapter,
				OpUpdateChapter, OpAddTheme, OpRemoveTheme,
				OpAddCharacter, OpRemoveCharacter).Error("unknown op")),
	)
}

// SnapshotSummary is the list-view projection: the full outline JSON
// stays out of list responses.
type SnapshotSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	ChapterCount int    `json:"chapter_count"`
	CreatedAt    string `json:"created_at"`
}
