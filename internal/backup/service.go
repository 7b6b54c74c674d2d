package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/highlights"
	"github.com/mrlokans/deepread/internal/kv"
	"github.com/mrlokans/deepread/internal/reading"
	"github.com/mrlokans/deepread/internal/spans"
)

// DocumentRepository is the part of the documents repository backups need.
type DocumentRepository interface {
	List() ([]entities.Document, error)
	Get(id string) (*entities.Document, error)
	Exists(id string) (bool, error)
	Create(doc *entities.Document) error
}

// Auditor records backup activity.
type Auditor interface {
	LogBackup(description string, documentsCount int, err error)
	LogRestore(strategy, description string, documentsCount int, err error)
}

type Service struct {
	docs        DocumentRepository
	spans       *highlights.SpanStore
	annotations *highlights.AnnotationStore
	notes       *highlights.NoteStore
	progress    *reading.ProgressStore
	chapters    *reading.ChapterStore
	drafts      *reading.DraftStore
	publisher   events.Publisher
	auditor     Auditor
	now         func() time.Time
}

func NewService(store kv.Store, docs DocumentRepository, publisher events.Publisher, auditor Auditor) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{
		docs:        docs,
		spans:       highlights.NewSpanStore(store),
		annotations: highlights.NewAnnotationStore(store),
		notes:       highlights.NewNoteStore(store),
		progress:    reading.NewProgressStore(store, nil),
		chapters:    reading.NewChapterStore(store, nil),
		drafts:      reading.NewDraftStore(store, nil),
		publisher:   publisher,
		auditor:     auditor,
		now:         time.Now,
	}
}

// Export collects every document with its reader state.
func (s *Service) Export(ctx context.Context) (*Archive, error) {
	archive, err := s.export(ctx)
	if s.auditor != nil {
		count := 0
		if archive != nil {
			count = len(archive.Documents)
		}
		s.auditor.LogBackup(fmt.Sprintf("Exported %d documents", count), count, err)
	}
	return archive, err
}

func (s *Service) export(ctx context.Context) (*Archive, error) {
	list, err := s.docs.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	archive := &Archive{
		Version:    FormatVersion,
		ExportedAt: s.now(),
		Documents:  make([]DocumentArchive, 0, len(list)),
	}
	for _, d := range list {
		doc, err := s.docs.Get(d.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %w", d.ID, err)
		}
		archive.Documents = append(archive.Documents, DocumentArchive{
			Document:    *doc,
			Highlights:  s.spans.Load(ctx, d.ID),
			Annotations: s.annotations.Load(ctx, d.ID),
			Progress:    s.progress.Get(ctx, d.ID),
			Chapters:    s.chapters.List(ctx, d.ID),
			Draft:       s.drafts.Get(ctx, d.ID),
		})
	}
	archive.UserNotes = s.notes.Load(ctx, "")
	return archive, nil
}

// Import restores archive with strategy. Missing documents are created from
// the archive; span lists are flattened and the annotation cascade is
// re-established before anything is written. Subscribers receive
// events.LibraryImported afterwards.
func (s *Service) Import(ctx context.Context, archive *Archive, strategy Strategy) (Summary, error) {
	summary, err := s.importArchive(ctx, archive, strategy)
	if s.auditor != nil {
		desc := fmt.Sprintf("Restored %d documents (%s)", summary.Documents, strategy)
		s.auditor.LogRestore(string(strategy), desc, summary.Documents, err)
	}
	if err != nil {
		return summary, err
	}

	s.publisher.Publish(events.Event{Type: events.LibraryImported})
	log.Info().
		Int("documents", summary.Documents).
		Int("highlights", summary.Highlights).
		Str("strategy", string(strategy)).
		Msg("Backup restored")
	return summary, nil
}

func (s *Service) importArchive(ctx context.Context, archive *Archive, strategy Strategy) (Summary, error) {
	var summary Summary
	if archive == nil {
		return summary, fmt.Errorf("%w: empty archive", ErrInvalidArchive)
	}
	if err := archive.validate(); err != nil {
		return summary, err
	}
	if strategy != StrategyReplace && strategy != StrategyLWW {
		return summary, fmt.Errorf("%w: unknown restore strategy %q", ErrInvalidArchive, strategy)
	}

	for _, d := range archive.Documents {
		docID := d.Document.ID

		exists, err := s.docs.Exists(docID)
		if err != nil {
			return summary, fmt.Errorf("failed to check document %s: %w", docID, err)
		}
		if !exists {
			doc := d.Document
			if err := s.docs.Create(&doc); err != nil {
				return summary, err
			}
			summary.CreatedDocuments++
		}

		remoteSpans, remoteAnnotations := d.Highlights, d.Annotations
		remoteChapters := d.Chapters
		progress := d.Progress
		progress.DocumentID = docID
		draft := d.Draft
		draft.DocumentID = docID

		if strategy == StrategyLWW {
			remoteSpans = mergeLWW(s.spans.Load(ctx, docID), remoteSpans)
			remoteAnnotations = mergeLWW(s.annotations.Load(ctx, docID), remoteAnnotations)
			remoteChapters = mergeLWW(s.chapters.List(ctx, docID), remoteChapters)
			if local := s.progress.Get(ctx, docID); !progress.UpdatedAt.After(local.UpdatedAt) {
				progress = local
			}
			if local := s.drafts.Get(ctx, docID); !draft.UpdatedAt.After(local.UpdatedAt) {
				draft = local
			}
		}

		finalSpans, finalAnnotations := highlights.Sanitize(spans.Flatten(remoteSpans), remoteAnnotations)

		if err := s.spans.ReplaceAll(ctx, docID, finalSpans); err != nil {
			return summary, fmt.Errorf("failed to restore highlights of %s: %w", docID, err)
		}
		if err := s.annotations.ReplaceAll(ctx, docID, finalAnnotations); err != nil {
			return summary, fmt.Errorf("failed to restore annotations of %s: %w", docID, err)
		}
		if err := s.chapters.Put(ctx, docID, remoteChapters); err != nil {
			return summary, fmt.Errorf("failed to restore chapters of %s: %w", docID, err)
		}
		if err := s.progress.Put(ctx, progress); err != nil {
			return summary, fmt.Errorf("failed to restore progress of %s: %w", docID, err)
		}
		if err := s.drafts.Put(ctx, draft); err != nil {
			return summary, fmt.Errorf("failed to restore notebook draft of %s: %w", docID, err)
		}

		summary.Documents++
		summary.Highlights += len(finalSpans)
		summary.Annotations += len(finalAnnotations)
	}

	notes := archive.UserNotes
	if strategy == StrategyLWW {
		notes = mergeLWW(s.notes.Load(ctx, ""), notes)
	}
	if err := s.notes.ReplaceAll(ctx, "", notes); err != nil {
		return summary, fmt.Errorf("failed to restore notes: %w", err)
	}
	summary.Notes = len(notes)

	return summary, nil
}
