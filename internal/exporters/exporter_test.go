package exporters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/deepread/internal/database/documents"
	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/highlights"
	"github.com/mrlokans/deepread/internal/kv"
)

func hl(id string, paragraph, start int, text string, color entities.HighlightColor) entities.HighlightSpan {
	return entities.HighlightSpan{ID: id, ParagraphIndex: paragraph, StartOffset: start, Text: text, Color: color}
}

// --- GenerateMarkdown Tests ---

func TestGenerateMarkdown(t *testing.T) {
	t.Run("generates frontmatter", func(t *testing.T) {
		item := &DocumentNotes{Document: entities.Document{Title: "Walden", Author: "Thoreau"}}

		markdown := GenerateMarkdown(item)

		assert.True(t, strings.HasPrefix(markdown, "---\n"))
		assert.Contains(t, markdown, "title: \"Walden\"")
		assert.Contains(t, markdown, "author: \"Thoreau\"")
		assert.Contains(t, markdown, "content_type: reading_notes")
		assert.Contains(t, markdown, "created_at: "+time.Now().Format("2006-01-02"))
		assert.Contains(t, markdown, "## Highlights")
	})

	t.Run("escapes quotes in title and author", func(t *testing.T) {
		item := &DocumentNotes{Document: entities.Document{Title: `Book with "Quotes"`, Author: `Author "Name"`}}

		markdown := GenerateMarkdown(item)

		assert.Contains(t, markdown, `title: "Book with \"Quotes\""`)
		assert.Contains(t, markdown, `author: "Author \"Name\""`)
	})

	t.Run("orders highlights by position and maps colors to callouts", func(t *testing.T) {
		item := &DocumentNotes{
			Highlights: []entities.HighlightSpan{
				hl("c", 2, 0, "third", entities.HighlightColorRed),
				hl("b", 0, 10, "second", entities.HighlightColorBlue),
				hl("a", 0, 0, "first", entities.HighlightColorPurple),
			},
		}

		markdown := GenerateMarkdown(item)

		first := strings.Index(markdown, "> [!tip] Paragraph 1\n> first")
		second := strings.Index(markdown, "> [!info] Paragraph 1\n> second")
		third := strings.Index(markdown, "> [!warning] Paragraph 3\n> third")
		require.True(t, first >= 0 && second >= 0 && third >= 0, markdown)
		assert.Less(t, first, second)
		assert.Less(t, second, third)
	})

	t.Run("includes the note thought", func(t *testing.T) {
		h := hl("a", 0, 0, "Highlighted text", entities.HighlightColorYellow)
		h.NoteID = "note-a"
		item := &DocumentNotes{
			Highlights:  []entities.HighlightSpan{h},
			Annotations: []entities.Annotation{{ID: "note-a", HighlightID: "a", Text: "draft"}},
			Notes:       []entities.UserNote{{ID: "note-a", Thought: "My thought"}},
		}

		markdown := GenerateMarkdown(item)

		assert.Contains(t, markdown, "> [!quote] Paragraph 1\n> Highlighted text\n>\n> **Note:** My thought")
	})

	t.Run("falls back to annotation text", func(t *testing.T) {
		h := hl("a", 0, 0, "text", entities.HighlightColorYellow)
		h.NoteID = "note-a"
		item := &DocumentNotes{
			Highlights:  []entities.HighlightSpan{h},
			Annotations: []entities.Annotation{{ID: "note-a", Text: "from annotation"}},
		}

		assert.Contains(t, GenerateMarkdown(item), "**Note:** from annotation")
	})

	t.Run("skips empty notes", func(t *testing.T) {
		h := hl("a", 0, 0, "text", entities.HighlightColorYellow)
		h.NoteID = "note-a"
		item := &DocumentNotes{
			Highlights:  []entities.HighlightSpan{h},
			Annotations: []entities.Annotation{{ID: "note-a"}},
		}

		assert.NotContains(t, GenerateMarkdown(item), "**Note:**")
	})

	t.Run("handles multiline text", func(t *testing.T) {
		item := &DocumentNotes{Highlights: []entities.HighlightSpan{hl("a", 0, 0, "Line 1\nLine 2", entities.HighlightColorBlue)}}

		assert.Contains(t, GenerateMarkdown(item), "> Line 1\n> Line 2")
	})
}

// --- MarkdownExporter Tests ---

func TestMarkdownExporter(t *testing.T) {
	t.Run("fails when export directory does not exist", func(t *testing.T) {
		exporter := NewMarkdownExporter("/nonexistent/path")

		_, err := exporter.Export([]DocumentNotes{{Document: entities.Document{Title: "Test"}}})

		assert.Error(t, err)
	})

	t.Run("writes one file per document", func(t *testing.T) {
		dir := t.TempDir()
		exporter := NewMarkdownExporter(dir)

		result, err := exporter.Export([]DocumentNotes{
			{
				Document:   entities.Document{ID: "d1", Title: "Walden: Life in the Woods"},
				Highlights: []entities.HighlightSpan{hl("a", 0, 0, "woods", entities.HighlightColorBlue)},
			},
			{Document: entities.Document{ID: "d2", Title: "Empty"}},
		})
		require.NoError(t, err)

		assert.Equal(t, ExportResult{DocumentsProcessed: 2, HighlightsProcessed: 1}, result)
		content, err := os.ReadFile(filepath.Join(dir, "Walden Life in the Woods.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "> woods")
		_, err = os.Stat(filepath.Join(dir, "Empty.md"))
		assert.NoError(t, err)
	})
}

// --- LibraryExporter Tests ---

type docList []entities.Document

func (d docList) List() ([]entities.Document, error) { return d, nil }

func (d docList) Get(id string) (*entities.Document, error) {
	for i := range d {
		if d[i].ID == id {
			return &d[i], nil
		}
	}
	return nil, documents.ErrNotFound
}

func TestLibraryExporter(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	docs := docList{{ID: "walden", Title: "Walden"}, {ID: "empty", Title: "Nothing Marked"}}

	h := hl("h1", 0, 0, "woods", entities.HighlightColorBlue)
	h.NoteID = "note-h1"
	require.NoError(t, highlights.NewSpanStore(store).ReplaceAll(ctx, "walden", []entities.HighlightSpan{h}))
	require.NoError(t, highlights.NewNoteStore(store).ReplaceAll(ctx, "", []entities.UserNote{
		{ID: "note-h1", BookID: "walden", Thought: "forest"},
		{ID: "note-other", BookID: "other", Thought: "elsewhere"},
	}))

	exporter := NewLibraryExporter(docs, store)

	t.Run("Collect gathers one document", func(t *testing.T) {
		item, err := exporter.Collect(ctx, "walden")
		require.NoError(t, err)

		assert.Len(t, item.Highlights, 1)
		require.Len(t, item.Notes, 1)
		assert.Equal(t, "forest", item.Notes[0].Thought)
	})

	t.Run("Collect reports unknown documents", func(t *testing.T) {
		_, err := exporter.Collect(ctx, "missing")
		assert.ErrorIs(t, err, documents.ErrNotFound)
	})

	t.Run("CollectAll skips documents without highlights", func(t *testing.T) {
		items, err := exporter.CollectAll(ctx)
		require.NoError(t, err)

		require.Len(t, items, 1)
		assert.Equal(t, "walden", items[0].Document.ID)
	})

	t.Run("ExportAll writes markdown", func(t *testing.T) {
		dir := t.TempDir()

		result, err := exporter.ExportAll(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, 1, result.DocumentsProcessed)
		content, err := os.ReadFile(filepath.Join(dir, "Walden.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "**Note:** forest")
	})
}
