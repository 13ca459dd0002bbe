package generation

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BasicInfo is the mandatory core of a book configuration.
type BasicInfo struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}

// BookConfig is the client-assembled generation configuration. All
// style fields are free text and flow into the prompt verbatim.
type BookConfig struct {
	BasicInfo       BasicInfo `json:"basicInfo"`
	TargetWordCount int       `json:"targetWordCount"`
	ChapterCount    int       `json:"chapterCount"`
	WritingStyle    string    `json:"writingStyle"`
	PointOfView     string    `json:"pointOfView"`
	Tense           string    `json:"tense"`
	Structure       string    `json:"structure"`
	Pacing          string    `json:"pacing"`
	CharacterNotes  string    `json:"characterNotes"`
	Themes          []string  `json:"themes"`
	Instructions    string    `json:"instructions"`
}

// ReferenceBook is an optional comparable title the user supplies.
type ReferenceBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Notes  string `json:"notes"`
}

// GenerateOutlineRequest - POST /v1/generate/outline
type GenerateOutlineRequest struct {
	UserID         string          `json:"userId"`
	Config         *BookConfig     `json:"config"`
	ReferenceBooks []ReferenceBook `json:"referenceBooks"`
	ModelID        string          `json:"modelId"`
}

// Validate enforces the request contract: userId, config, and the
// config's title and author are all mandatory.
func (r GenerateOutlineRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required.Error("userId is required")),
		validation.Field(&r.Config, validation.Required.Error("config is required")),
	); err != nil {
		return err
	}

	info := r.Config.BasicInfo
	return validation.ValidateStruct(&info,
		validation.Field(&info.Title,
			validation.Required.Error("config.basicInfo.title is required")),
		validation.Field(&info.Author,
			validation.Required.Error("config.basicInfo.author is required")),
	)
}

// GenerationMode selects how chapter batches run in the worker.
type GenerationMode string

const (
	ModeParallel   GenerationMode = "parallel"
	ModeSequential GenerationMode = "sequential"
)

// GenerateBookRequest - POST /v1/generate/book
type GenerateBookRequest struct {
	UserID  string         `json:"userId"`
	Outline OutlineInput   `json:"outline"`
	Mode    GenerationMode `json:"mode"`
	ModelID string         `json:"modelId"`
}

// OutlineInput is the outline payload a book generation starts from.
type OutlineInput struct {
	Title       string              `json:"title"`
	Author      string              `json:"author"`
	Description string              `json:"description"`
	Genre       string              `json:"genre"`
	Chapters    []OutlineChapterRef `json:"chapters"`
}

// OutlineChapterRef is the per-chapter generation brief.
type OutlineChapterRef struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	WordCount int      `json:"wordCount"`
	KeyEvents []string `json:"keyEvents"`
}

func (r GenerateBookRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required.Error("userId is required")),
		validation.Field(&r.Mode,
			validation.In(ModeParallel, ModeSequential, GenerationMode("")).
				Error("mode must be parallel or sequential")),
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

// OutlineResponse - 200 body for POST /v1/generate/outline.
type OutlineResponse struct {
	Success   bool        `json:"success"`
	Outline   interface{} `json:"outline"`
	ModelUsed string      `json:"modelUsed"`
}
