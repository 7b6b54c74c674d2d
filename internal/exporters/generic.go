package exporters

import "github.com/mrlokans/deepread/internal/entities"

// DocumentNotes is everything the reader knows about one document's
// highlights and notes.
type DocumentNotes struct {
	Document    entities.Document
	Highlights  []entities.HighlightSpan
	Annotations []entities.Annotation
	Notes       []entities.UserNote
}

type NotesExporter interface {
	Export(items []DocumentNotes) (ExportResult, error)
}

type ExportResult struct {
	DocumentsProcessed  int `json:"documents_processed"`
	HighlightsProcessed int `json:"highlights_processed"`
	DocumentsFailed     int `json:"documents_failed"`
}
