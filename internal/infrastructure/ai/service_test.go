package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParseOutline(t *testing.T) {
	t.Run("fenced response with sloppy numbering", func(t *testing.T) {
		raw := "```json\n" + `{
			"title": "The Salt Road",
			"author": "A. Writer",
			"totalWordCount": 60000,
			"chapters": [
				{"number": 5, "title": "Departure", "wordCount": 30000},
				{"number": 5, "title": "Arrival", "wordCount": 30000}
			]
		}` + "\n```"

		o, err := ParseOutline(raw)
		require.NoError(t, err)

		assert.Equal(t, "The Salt Road", o.Title)
		require.Len(t, o.Chapters, 2)
		// Provider numbering is not trusted.
		assert.Equal(t, 1, o.Chapters[0].Number)
		assert.Equal(t, 2, o.Chapters[1].Number)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseOutline("Sorry, I cannot help with that.")
		assert.Error(t, err)
	})

	t.Run("missing chapters", func(t *testing.T) {
		_, err := ParseOutline(`{"title": "Empty"}`)
		assert.Error(t, err)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := ParseOutline(`{"chapters": [{"title": "One"}]}`)
		assert.Error(t, err)
	})
}
