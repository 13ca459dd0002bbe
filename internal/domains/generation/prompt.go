package generation

import (
	"fmt"
	"strings"
)

// LengthCategory maps a target word count to the coarse length label
// the outline prompt uses. Upper bounds are inclusive.
func LengthCategory(targetWordCount int) string {
	switch {
	case targetWordCount <= 10000:
		return "micro"
	case targetWordCount <= 20000:
		return "novella"
	case targetWordCount <= 40000:
		return "short-novel"
	case targetWordCount <= 60000:
		return "short"
	case targetWordCount <= 90000:
		return "medium"
	case targetWordCount <= 130000:
		return "long"
	default:
		return "epic"
	}
}

// IsNonFiction decides the outline's register. The genre string wins;
// reference books push the decision when the genre is silent.
func IsNonFiction(cfg *BookConfig, refs []ReferenceBook) bool {
	if cfg != nil && strings.Contains(strings.ToLower(cfg.BasicInfo.Genre), "non-fiction") {
		return true
	}
	for _, ref := range refs {
		if strings.Contains(strings.ToLower(ref.Genre), "non-fiction") {
			return true
		}
	}
	return false
}

// BuildOutlinePrompt assembles the user prompt for outline generation.
// Style fields are included only when set so the instruction block
// stays compact.
func BuildOutlinePrompt(cfg *BookConfig, refs []ReferenceBook) string {
	var b strings.Builder

	info := cfg.BasicInfo
	fmt.Fprintf(&b, "Create a complete book outline.\n")
	fmt.Fprintf(&b, "Title: %s\nAuthor: %s\n", info.Title, info.Author)
	if info.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", info.Genre)
	}
	if info.Description != "" {
		fmt.Fprintf(&b, "Premise: %s\n", info.Description)
	}

	if cfg.TargetWordCount > 0 {
		fmt.Fprintf(&b, "Target length: %d words (%s)\n",
			cfg.TargetWordCount, LengthCategory(cfg.TargetWordCount))
	}
	if cfg.ChapterCount > 0 {
		fmt.Fprintf(&b, "Chapter count: %d\n", cfg.ChapterCount)
	}

	if IsNonFiction(cfg, refs) {
		b.WriteString("This is a non-fiction work: organize chapters as topical sections, " +
			"use key arguments instead of plot events, and omit fictional characters.\n")
	}

	writeField := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	writeField("Writing style", cfg.WritingStyle)
	writeField("Point of view", cfg.PointOfView)
	writeField("Tense", cfg.Tense)
	writeField("Structure", cfg.Structure)
	writeField("Pacing", cfg.Pacing)
	writeField("Character notes", cfg.CharacterNotes)

	if len(cfg.Themes) > 0 {
		fmt.Fprintf(&b, "Themes: %s\n", strings.Join(cfg.Themes, ", "))
	}

	if len(refs) > 0 {
		b.WriteString("Comparable titles:\n")
		for _, ref := range refs {
			fmt.Fprintf(&b, "- %q by %s", ref.Title, ref.Author)
			if ref.Genre != "" {
				fmt.Fprintf(&b, " (%s)", ref.Genre)
			}
			if ref.Notes != "" {
				fmt.Fprintf(&b, ": %s", ref.Notes)
			}
			b.WriteString("\n")
		}
	}

	if cfg.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", cfg.Instructions)
	}

	return b.String()
}

// BuildChapterPrompt assembles the user prompt for a single chapter's
// prose, anchored on its outline brief.
func BuildChapterPrompt(book OutlineInput, ch OutlineChapterRef, modelHint string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write chapter %d of %q by %s.\n", ch.Number, book.Title, book.Author)
	if book.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", book.Genre)
	}
	if book.Description != "" {
		fmt.Fprintf(&b, "Book premise: %s\n", book.Description)
	}
	fmt.Fprintf(&b, "Chapter title: %s\n", ch.Title)
	if ch.Summary != "" {
		fmt.Fprintf(&b, "Chapter summary: %s\n", ch.Summary)
	}
	if len(ch.KeyEvents) > 0 {
		fmt.Fprintf(&b, "Key events to cover: %s\n", strings.Join(ch.KeyEvents, "; "))
	}
	if ch.WordCount > 0 {
		fmt.Fprintf(&b, "Target length: about %d words.\n", ch.WordCount)
	}
	if modelHint != "" {
		fmt.Fprintf(&b, "%s\n", modelHint)
	}

	return b.String()
}
