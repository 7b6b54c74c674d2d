package highlights

import (
	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/kv"
)

const (
	spansPrefix       = "highlights"
	annotationsPrefix = "annotations"
	notesKey          = "user_notes"
)

// SpanStore persists the spans of each document under highlights:<id>.
type SpanStore = kv.List[entities.HighlightSpan]

// AnnotationStore persists annotations under annotations:<id>.
type AnnotationStore = kv.List[entities.Annotation]

// NoteStore persists the global user_notes list; use an empty scope.
type NoteStore = kv.List[entities.UserNote]

func NewSpanStore(store kv.Store) *SpanStore {
	return kv.NewList[entities.HighlightSpan](store, spansPrefix)
}

func NewAnnotationStore(store kv.Store) *AnnotationStore {
	return kv.NewList[entities.Annotation](store, annotationsPrefix)
}

func NewNoteStore(store kv.Store) *NoteStore {
	return kv.NewList[entities.UserNote](store, notesKey)
}
