package job

import (
	"fmt"
	"strings"
	"time"

	"powerwrite-backend/internal/domains/generation"
)

// Frame is one timed storyboard segment. The player shows the caption
// over the chapter card for the cue's duration.
type Frame struct {
	ChapterNumber int
	Title         string
	Caption       string
	Duration      time.Duration
}

// readingSpeed approximates narration pace for cue timing.
const readingSpeed = 160 // words per minute

// RenderFrame turns a chapter into a storyboard frame. The caption is
// the opening excerpt; the cue length scales with the chapter's word
// count so pacing matches narration.
func RenderFrame(book generation.BookContent, ch generation.ChapterContent) Frame {
	words := strings.Fields(ch.Content)

	caption := ch.Content
	if len(words) > 60 {
		caption = strings.Join(words[:60], " ") + "…"
	}

	seconds := len(words) * 60 / readingSpeed
	if seconds < 5 {
		seconds = 5
	}

	return Frame{
		ChapterNumber: ch.Number,
		Title:         ch.Title,
		Caption:       caption,
		Duration:      time.Duration(seconds) * time.Second,
	}
}

// StitchFrames joins the frames into a single WebVTT document with
// sequential cue timestamps.
func StitchFrames(book generation.BookContent, frames []Frame) []byte {
	var b strings.Builder

	b.WriteString("WEBVTT\n\n")
	fmt.Fprintf(&b, "NOTE %s by %s\n\n", book.Title, book.Author)

	var offset time.Duration
	for _, f := range frames {
		end := offset + f.Duration
		fmt.Fprintf(&b, "%s --> %s\n", vttTimestamp(offset), vttTimestamp(end))
		fmt.Fprintf(&b, "Chapter %d: %s\n%s\n\n", f.ChapterNumber, f.Title, f.Caption)
		offset = end
	}

	return []byte(b.String())
}

func vttTimestamp(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// RenderNarrationScript produces the per-chapter SSML narration script
// the audio pipeline consumes.
func RenderNarrationScript(book generation.BookContent) []byte {
	var b strings.Builder

	b.WriteString("<speak>\n")
	fmt.Fprintf(&b, "  <p>%s, by %s.</p>\n", escapeSSML(book.Title), escapeSSML(book.Author))
	for _, ch := range book.Chapters {
		fmt.Fprintf(&b, "  <break time=\"1s\"/>\n")
		fmt.Fprintf(&b, "  <p>Chapter %d. %s.</p>\n", ch.Number, escapeSSML(ch.Title))
		fmt.Fprintf(&b, "  <p>%s</p>\n", escapeSSML(ch.Content))
	}
	b.WriteString("</speak>\n")

	return []byte(b.String())
}

func escapeSSML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
