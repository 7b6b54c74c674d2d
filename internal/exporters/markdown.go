package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/utils"
)

type MarkdownExporter struct {
	ExportDir string
	now       func() time.Time
}

func NewMarkdownExporter(exportDir string) *MarkdownExporter {
	return &MarkdownExporter{ExportDir: exportDir, now: time.Now}
}

// GenerateMarkdown renders a document's highlights as Obsidian callouts in
// reading order. The callout type follows the highlight color and the
// note text, when present, is appended to the callout body.
func GenerateMarkdown(item *DocumentNotes) string {
	return generateMarkdown(item, time.Now())
}

func generateMarkdown(item *DocumentNotes, now time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: reading_notes\n")
	fmt.Fprintf(&builder, "created_at: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&builder, "title: \"%s\"\n", strings.ReplaceAll(item.Document.Title, "\"", "\\\""))
	fmt.Fprintf(&builder, "author: \"%s\"\n", strings.ReplaceAll(item.Document.Author, "\"", "\\\""))
	fmt.Fprintf(&builder, "tags: [highlights, notes]\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "## Highlights\n\n")

	thoughts := make(map[string]string, len(item.Notes)+len(item.Annotations))
	for _, a := range item.Annotations {
		thoughts[a.ID] = a.Text
	}
	for _, n := range item.Notes {
		if n.Thought != "" {
			thoughts[n.ID] = n.Thought
		}
	}

	ordered := append([]entities.HighlightSpan(nil), item.Highlights...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ParagraphIndex != ordered[j].ParagraphIndex {
			return ordered[i].ParagraphIndex < ordered[j].ParagraphIndex
		}
		return ordered[i].StartOffset < ordered[j].StartOffset
	})

	for _, h := range ordered {
		callout := utils.ColorToCalloutType(string(h.Color))
		fmt.Fprintf(&builder, "> [!%s] Paragraph %d\n", callout, h.ParagraphIndex+1)
		fmt.Fprintf(&builder, "> %s\n", strings.ReplaceAll(h.Text, "\n", "\n> "))
		if thought := thoughts[h.NoteID]; h.NoteID != "" && thought != "" {
			fmt.Fprintf(&builder, ">\n> **Note:** %s\n", strings.ReplaceAll(thought, "\n", "\n> "))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// Export writes one markdown file per document into ExportDir, which must
// already exist. A document that fails to write is counted and skipped.
func (exporter *MarkdownExporter) Export(items []DocumentNotes) (ExportResult, error) {
	result := ExportResult{}

	if _, err := os.Stat(exporter.ExportDir); err != nil {
		return result, fmt.Errorf("export directory: %w", err)
	}

	for i := range items {
		item := &items[i]
		path := filepath.Join(exporter.ExportDir, utils.MarkdownFilename(item.Document.Title))
		content := generateMarkdown(item, exporter.now())
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			log.Error().Err(err).Str("document_id", item.Document.ID).Msg("Failed to write markdown export")
			result.DocumentsFailed++
			continue
		}
		result.DocumentsProcessed++
		result.HighlightsProcessed += len(item.Highlights)
	}

	return result, nil
}
