package job

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerwrite-backend/internal/domains/generation"
)

func sampleBook() generation.BookContent {
	return generation.BookContent{
		Title:  "The Salt Road",
		Author: "A. Writer",
		Chapters: []generation.ChapterContent{
			{Number: 1, Title: "Departure", Content: strings.Repeat("word ", 160)},
			{Number: 2, Title: "Crossing", Content: "Short chapter."},
		},
	}
}

func TestRenderFrame(t *testing.T) {
	book := sampleBook()

	t.Run("cue length follows word count", func(t *testing.T) {
		f := RenderFrame(book, book.Chapters[0])

		assert.Equal(t, 1, f.ChapterNumber)
		// 160 words at 160 wpm is one minute.
		assert.Equal(t, time.Minute, f.Duration)
		// Long content is cut to a 60-word excerpt.
		assert.True(t, strings.HasSuffix(f.Caption, "…"))
		assert.Len(t, strings.Fields(strings.TrimSuffix(f.Caption, "…")), 60)
	})

	t.Run("short chapter gets the minimum cue", func(t *testing.T) {
		f := RenderFrame(book, book.Chapters[1])

		assert.Equal(t, 5*time.Second, f.Duration)
		assert.Equal(t, "Short chapter.", f.Caption)
	})
}

func TestStitchFrames(t *testing.T) {
	book := sampleBook()
	frames := []Frame{
		{ChapterNumber: 1, Title: "Departure", Caption: "It begins.", Duration: 90 * time.Second},
		{ChapterNumber: 2, Title: "Crossing", Caption: "It continues.", Duration: 5 * time.Second},
	}

	doc := string(StitchFrames(book, frames))

	require.True(t, strings.HasPrefix(doc, "WEBVTT\n"))
	assert.Contains(t, doc, "NOTE The Salt Road by A. Writer")
	// Cues are laid end to end.
	assert.Contains(t, doc, "00:00:00.000 --> 00:01:30.000")
	assert.Contains(t, doc, "00:01:30.000 --> 00:01:35.000")
	assert.Contains(t, doc, "Chapter 2: Crossing\nIt continues.")
}

func TestVTTTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00.000", vttTimestamp(0))
	assert.Equal(t, "00:01:05.250", vttTimestamp(65*time.Second+250*time.Millisecond))
	assert.Equal(t, "01:02:03.000", vttTimestamp(time.Hour+2*time.Minute+3*time.Second))
}

func TestRenderNarrationScript(t *testing.T) {
	book := generation.BookContent{
		Title:  "Salt & Stone",
		Author: "A. Writer",
		Chapters: []generation.ChapterContent{
			{Number: 1, Title: "A < B", Content: "Less than, greater than & ampersand."},
		},
	}

	doc := string(RenderNarrationScript(book))

	require.True(t, strings.HasPrefix(doc, "<speak>\n"))
	require.True(t, strings.HasSuffix(doc, "</speak>\n"))
	assert.Contains(t, doc, "<p>Salt &amp; Stone, by A. Writer.</p>")
	assert.Contains(t, doc, "<p>Chapter 1. A &lt; B.</p>")
	assert.Contains(t, doc, "Less than, greater than &amp; ampersand.")
	assert.Contains(t, doc, `<break time="1s"/>`)
}
