package exporters

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/highlights"
	"github.com/mrlokans/deepread/internal/kv"
)

type DocumentLister interface {
	List() ([]entities.Document, error)
	Get(id string) (*entities.Document, error)
}

// LibraryExporter collects highlights and notes from the key/value store
// for the documents known to the repository.
type LibraryExporter struct {
	docs        DocumentLister
	spans       *highlights.SpanStore
	annotations *highlights.AnnotationStore
	notes       *highlights.NoteStore
}

func NewLibraryExporter(docs DocumentLister, store kv.Store) *LibraryExporter {
	return &LibraryExporter{
		docs:        docs,
		spans:       highlights.NewSpanStore(store),
		annotations: highlights.NewAnnotationStore(store),
		notes:       highlights.NewNoteStore(store),
	}
}

// Collect returns the notes of one document.
func (e *LibraryExporter) Collect(ctx context.Context, docID string) (*DocumentNotes, error) {
	doc, err := e.docs.Get(docID)
	if err != nil {
		return nil, err
	}
	return e.collect(ctx, *doc, e.notes.Load(ctx, "")), nil
}

// CollectAll returns the notes of every document that has at least one
// highlight.
func (e *LibraryExporter) CollectAll(ctx context.Context) ([]DocumentNotes, error) {
	docs, err := e.docs.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	notes := e.notes.Load(ctx, "")

	var out []DocumentNotes
	for _, doc := range docs {
		item := e.collect(ctx, doc, notes)
		if len(item.Highlights) == 0 {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

// ExportAll writes markdown for every highlighted document into dir,
// creating it when missing.
func (e *LibraryExporter) ExportAll(ctx context.Context, dir string) (ExportResult, error) {
	items, err := e.CollectAll(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}
	result, err := NewMarkdownExporter(dir).Export(items)
	if err != nil {
		return result, fmt.Errorf("failed to export to markdown: %w", err)
	}

	log.Info().
		Int("documents", result.DocumentsProcessed).
		Int("highlights", result.HighlightsProcessed).
		Int("failed", result.DocumentsFailed).
		Msg("Markdown export completed")
	return result, nil
}

func (e *LibraryExporter) collect(ctx context.Context, doc entities.Document, all []entities.UserNote) *DocumentNotes {
	doc.Paragraphs = nil
	item := &DocumentNotes{
		Document:    doc,
		Highlights:  e.spans.Load(ctx, doc.ID),
		Annotations: e.annotations.Load(ctx, doc.ID),
	}
	for _, n := range all {
		if n.BookID == doc.ID {
			item.Notes = append(item.Notes, n)
		}
	}
	return item
}

var _ NotesExporter = (*MarkdownExporter)(nil)
