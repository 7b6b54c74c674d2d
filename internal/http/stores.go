package http

import (
	"context"
	"encoding/json"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/deepread/internal/backup"
	"github.com/mrlokans/deepread/internal/database/documents"
	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/exporters"
	"github.com/mrlokans/deepread/internal/highlights"
	"github.com/mrlokans/deepread/internal/scheduler"
	"github.com/mrlokans/deepread/internal/spans"
)

// DocumentStore defines the interface for document operations.
type DocumentStore interface {
	Create(doc *entities.Document) error
	Get(id string) (*entities.Document, error)
	Header(id string) (*entities.Document, error)
	List() ([]entities.Document, error)
	Delete(id string) error
	ParagraphRange(docID string, from, to int) ([]entities.Paragraph, error)
	Search(docID, query string, limit int) ([]documents.SearchResult, error)
}

// HighlightService defines the reader actions on highlights and notes.
type HighlightService interface {
	Snapshot(ctx context.Context, docID string) highlights.Snapshot
	HighlightSelection(ctx context.Context, docID string, sel highlights.Selection, color entities.HighlightColor) (highlights.Snapshot, error)
	CreateNoteOverRange(ctx context.Context, docID string, sel highlights.Selection, layout highlights.NoteLayout) (highlights.Snapshot, entities.Annotation, error)
	RecolorHighlight(ctx context.Context, docID, spanID string, color entities.HighlightColor) (highlights.Snapshot, error)
	ClearHighlightColor(ctx context.Context, docID, spanID string) (highlights.Snapshot, error)
	DeleteHighlight(ctx context.Context, docID, spanID string) (highlights.Snapshot, error)
	RemoveNoteFromHighlight(ctx context.Context, docID, spanID string) (highlights.Snapshot, error)
	UpdateAnnotationText(ctx context.Context, docID, annotationID, text string) (highlights.Snapshot, error)
	ListNotesForUser(ctx context.Context) []entities.UserNote
	ListNotesForDocument(ctx context.Context, docID string) []entities.UserNote
	RenderParagraph(ctx context.Context, docID string, index int) ([]spans.Run, error)
	RenderParagraphs(ctx context.Context, docID string, paragraphs []entities.Paragraph) []highlights.RenderedParagraph
	PurgeDocument(ctx context.Context, docID string) error
}

// ProgressStore defines the interface for reading progress.
type ProgressStore interface {
	Get(ctx context.Context, docID string) entities.ReadingProgress
	Save(ctx context.Context, docID string, percent float64) (entities.ReadingProgress, error)
	Delete(ctx context.Context, docID string) error
}

// DraftStore defines the interface for notebook drafts.
type DraftStore interface {
	Get(ctx context.Context, docID string) entities.NotebookDraft
	Save(ctx context.Context, docID, text string) (entities.NotebookDraft, error)
	Delete(ctx context.Context, docID string) error
}

// ChapterStore defines the interface for chapter lists.
type ChapterStore interface {
	List(ctx context.Context, docID string) []entities.Chapter
	ReplaceAll(ctx context.Context, docID string, chapters []entities.Chapter) ([]entities.Chapter, error)
}

// BackupService defines the interface for library export and restore.
type BackupService interface {
	Export(ctx context.Context) (*backup.Archive, error)
	Import(ctx context.Context, archive *backup.Archive, strategy backup.Strategy) (backup.Summary, error)
}

// NotesCollector gathers a document's highlights and notes for export.
type NotesCollector interface {
	Collect(ctx context.Context, docID string) (*exporters.DocumentNotes, error)
}

// Auditor records document lifecycle events.
type Auditor interface {
	LogImport(documentID, title string, paragraphs int)
	LogDelete(entityType, entityID, entityName string)
}

// AuditLog reads the recorded audit trail.
type AuditLog interface {
	GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	EventsForDocument(documentID string) ([]entities.AuditEvent, error)
}

// BackupSchedule reports the state of scheduled backups.
type BackupSchedule interface {
	Status() scheduler.Status
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(name string, params json.RawMessage) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
