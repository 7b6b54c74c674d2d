// Package highlights owns the highlight spans and annotations of every
// document. Service is the single writer: each action loads the document
// session, mutates it through the spans package, persists the new lists
// with one ReplaceAll each and returns an immutable Snapshot.
package highlights

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/kv"
	"github.com/mrlokans/deepread/internal/spans"
	"github.com/mrlokans/deepread/internal/utils"
)

// Snapshot is a copy of a document's highlight state. Mutating it has no
// effect on the service.
type Snapshot struct {
	DocumentID  string                   `json:"document_id"`
	Spans       []entities.HighlightSpan `json:"highlights"`
	Annotations []entities.Annotation    `json:"annotations"`
}

// NoteLayout carries the reader's placement hints for a new annotation.
type NoteLayout struct {
	Top    float64 `json:"top"`
	PointX float64 `json:"point_x"`
}

type session struct {
	spans       []entities.HighlightSpan
	annotations []entities.Annotation
}

type Service struct {
	mu       sync.Mutex
	sessions map[string]*session

	paragraphs  ParagraphSource
	spans       *SpanStore
	annotations *AnnotationStore
	notes       *NoteStore
	ids         spans.IDGenerator
	now         func() time.Time
	publisher   events.Publisher
}

type Option func(*Service)

func WithIDGenerator(ids spans.IDGenerator) Option {
	return func(s *Service) { s.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(store kv.Store, paragraphs ParagraphSource, opts ...Option) *Service {
	s := &Service{
		sessions:    make(map[string]*session),
		paragraphs:  paragraphs,
		spans:       NewSpanStore(store),
		annotations: NewAnnotationStore(store),
		notes:       NewNoteStore(store),
		ids:         spans.UUIDGenerator{},
		now:         time.Now,
		publisher:   events.Discard{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state of docID, loading it if needed. A
// document whose state cannot be read shows no highlights.
func (s *Service) Snapshot(ctx context.Context, docID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.session(ctx, docID)
	if err != nil {
		log.Warn().Err(err).Str("document_id", docID).Msg("Showing document without highlights")
		return s.snapshot(docID, &session{})
	}
	return s.snapshot(docID, sess)
}

// CreateHighlight highlights [start, end) of one paragraph.
func (s *Service) CreateHighlight(ctx context.Context, docID string, paragraph, start, end int, color entities.HighlightColor) (Snapshot, error) {
	return s.HighlightSelection(ctx, docID, Range(paragraph, start, end), color)
}

// HighlightSelection highlights sel with color. Every existing span the
// selection touches is trimmed, split or replaced, and notes are carried
// over to whatever survives.
func (s *Service) HighlightSelection(ctx context.Context, docID string, sel Selection, color entities.HighlightColor) (Snapshot, error) {
	if !color.Valid() {
		return Snapshot{}, ErrInvalidColor
	}
	ranges, err := split(docID, sel, s.paragraphs)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, docID)
	if err != nil {
		return Snapshot{DocumentID: docID}, err
	}
	next := sess.clone()
	var orphaned []string
	for _, r := range ranges {
		_, dropped := s.highlightRange(next, r, color)
		orphaned = append(orphaned, dropped...)
	}

	if err := s.commit(ctx, docID, sess, next); err != nil {
		return s.snapshot(docID, sess), err
	}
	err = s.deleteNotes(ctx, orphaned...)
	return s.snapshot(docID, sess), err
}

// CreateNoteOverRange highlights sel in yellow and attaches an empty note
// to the first span created. That span is drawn underlined.
func (s *Service) CreateNoteOverRange(ctx context.Context, docID string, sel Selection, layout NoteLayout) (Snapshot, entities.Annotation, error) {
	ranges, err := split(docID, sel, s.paragraphs)
	if err != nil {
		return Snapshot{}, entities.Annotation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, docID)
	if err != nil {
		return Snapshot{DocumentID: docID}, entities.Annotation{}, err
	}
	next := sess.clone()

	var first string
	var orphaned []string
	for i, r := range ranges {
		id, dropped := s.highlightRange(next, r, entities.HighlightColorYellow)
		orphaned = append(orphaned, dropped...)
		if i == 0 {
			first = id
		}
	}

	now := s.now()
	idx := indexOfSpan(next.spans, first)
	owner := &next.spans[idx]
	if owner.NoteID != "" {
		// the range swallowed a noted span; the new note takes its place
		next.annotations = removeAnnotation(next.annotations, owner.NoteID)
		orphaned = append(orphaned, owner.NoteID)
	}

	annotation := entities.Annotation{
		ID:          "note-" + owner.ID,
		HighlightID: owner.ID,
		Top:         layout.Top,
		PointX:      layout.PointX,
		Color:       entities.DefaultAnnotationColor,
		UpdatedAt:   now,
		Version:     1,
	}
	owner.NoteID = annotation.ID
	owner.Style = entities.HighlightStyleUnderline
	next.annotations = append(next.annotations, annotation)

	if err := s.commit(ctx, docID, sess, next); err != nil {
		return s.snapshot(docID, sess), annotation, err
	}
	err = s.deleteNotes(ctx, orphaned...)
	return s.snapshot(docID, sess), annotation, err
}

// RecolorHighlight changes the color of a span and draws it as a background.
func (s *Service) RecolorHighlight(ctx context.Context, docID, spanID string, color entities.HighlightColor) (Snapshot, error) {
	if !color.Valid() {
		return Snapshot{}, ErrInvalidColor
	}
	return s.updateSpan(ctx, docID, spanID, func(h *entities.HighlightSpan) {
		h.Color = color
		h.Style = entities.HighlightStyleBackground
	})
}

// ClearHighlightColor keeps the span but draws it as an underline only.
func (s *Service) ClearHighlightColor(ctx context.Context, docID, spanID string) (Snapshot, error) {
	return s.updateSpan(ctx, docID, spanID, func(h *entities.HighlightSpan) {
		h.Style = entities.HighlightStyleUnderline
	})
}

// DeleteHighlight removes a span together with its annotation and note.
func (s *Service) DeleteHighlight(ctx context.Context, docID, spanID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, docID)
	if err != nil {
		return Snapshot{DocumentID: docID}, err
	}
	idx := indexOfSpan(sess.spans, spanID)
	if idx < 0 {
		return s.snapshot(docID, sess), nil
	}

	next := sess.clone()
	noteID := next.spans[idx].NoteID
	next.spans = append(next.spans[:idx], next.spans[idx+1:]...)

	kept := next.annotations[:0]
	for _, a := range next.annotations {
		if a.HighlightID != spanID && a.ID != noteID {
			kept = append(kept, a)
		}
	}
	next.annotations = kept

	if err := s.commit(ctx, docID, sess, next); err != nil {
		return s.snapshot(docID, sess), err
	}
	if noteID != "" {
		if err := s.deleteNotes(ctx, noteID); err != nil {
			return s.snapshot(docID, sess), err
		}
	}
	return s.snapshot(docID, sess), nil
}

// RemoveNoteFromHighlight detaches and deletes the note of a span. The span
// stays and goes back to a background highlight.
func (s *Service) RemoveNoteFromHighlight(ctx context.Context, docID, spanID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, docID)
	if err != nil {
		return Snapshot{DocumentID: docID}, err
	}
	idx := indexOfSpan(sess.spans, spanID)
	if idx < 0 || sess.spans[idx].NoteID == "" {
		return s.snapshot(docID, sess), nil
	}

	next := sess.clone()
	h := &next.spans[idx]
	noteID := h.NoteID
	h.NoteID = ""
	h.Style = entities.HighlightStyleBackground
	h.UpdatedAt = s.now()
	h.Version++
	next.annotations = removeAnnotation(next.annotations, noteID)

	if err := s.commit(ctx, docID, sess, next); err != nil {
		return s.snapshot(docID, sess), err
	}
	if err := s.deleteNotes(ctx, noteID); err != nil {
		return s.snapshot(docID, sess), err
	}
	return s.snapshot(docID, sess), nil
}

// UpdateAnnotationText sets the text of an annotation and mirrors it into
// the user's notes. The note quote is captured on first save only.
func (s *Service) UpdateAnnotationText(ctx context.Context, docID, annotationID, text string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, docID)
	if err != nil {
		return Snapshot{DocumentID: docID}, err
	}
	idx := indexOfAnnotation(sess.annotations, annotationID)
	if idx < 0 {
		return s.snapshot(docID, sess), nil
	}

	now := s.now()
	next := sess.clone()
	a := &next.annotations[idx]
	a.Text = text
	a.UpdatedAt = now
	a.Version++

	var quote string
	if si := indexOfSpan(next.spans, a.HighlightID); si >= 0 {
		quote = next.spans[si].Text
	}

	if err := s.commit(ctx, docID, sess, next); err != nil {
		return s.snapshot(docID, sess), err
	}

	notes, err := s.notes.LoadStrict(ctx, "")
	if err != nil {
		log.Warn().Err(err).Msg("Rewriting unreadable user notes")
		notes = []entities.UserNote{}
	}
	note := entities.UserNote{
		ID:        annotationID,
		BookID:    docID,
		Quote:     quote,
		Thought:   text,
		Date:      now.Format(entities.NoteDateLayout),
		UpdatedAt: now,
		Version:   1,
	}
	if i := indexOfNote(notes, annotationID); i >= 0 {
		note.Quote = notes[i].Quote
		note.BookID = notes[i].BookID
		note.Version = notes[i].Version + 1
		notes[i] = note
	} else {
		notes = append([]entities.UserNote{note}, notes...)
	}
	if err := s.notes.ReplaceAll(ctx, "", notes); err != nil {
		return s.snapshot(docID, sess), fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	s.publisher.Publish(events.Event{Type: events.NotesChanged, DocumentID: docID})

	return s.snapshot(docID, sess), nil
}

// ListNotesForUser returns every note, most recently updated first.
func (s *Service) ListNotesForUser(ctx context.Context) []entities.UserNote {
	notes := s.notes.Load(ctx, "")
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes
}

// ListNotesForDocument returns the notes taken in one document.
func (s *Service) ListNotesForDocument(ctx context.Context, docID string) []entities.UserNote {
	var out []entities.UserNote
	for _, n := range s.ListNotesForUser(ctx) {
		if n.BookID == docID {
			out = append(out, n)
		}
	}
	return out
}

// RenderParagraph returns the styled runs of one paragraph.
func (s *Service) RenderParagraph(ctx context.Context, docID string, index int) ([]spans.Run, error) {
	text, err := s.paragraphs.Paragraph(docID, index)
	if err != nil {
		return nil, err
	}
	snap := s.Snapshot(ctx, docID)
	return spans.Render(text, spans.ForParagraph(snap.Spans, index)), nil
}

// RenderedParagraph is a paragraph with its runs.
type RenderedParagraph struct {
	Index int         `json:"index"`
	Runs  []spans.Run `json:"runs"`
}

// RenderParagraphs renders several already-loaded paragraphs of docID.
func (s *Service) RenderParagraphs(ctx context.Context, docID string, paragraphs []entities.Paragraph) []RenderedParagraph {
	snap := s.Snapshot(ctx, docID)
	out := make([]RenderedParagraph, 0, len(paragraphs))
	for _, p := range paragraphs {
		out = append(out, RenderedParagraph{
			Index: p.Index,
			Runs:  spans.Render(p.Text, spans.ForParagraph(snap.Spans, p.Index)),
		})
	}
	return out
}

// PurgeDocument drops every span, annotation and note of docID.
func (s *Service) PurgeDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, docID)
	if err := s.spans.ReplaceAll(ctx, docID, nil); err != nil {
		return fmt.Errorf("failed to purge highlights: %w", err)
	}
	if err := s.annotations.ReplaceAll(ctx, docID, nil); err != nil {
		return fmt.Errorf("failed to purge annotations: %w", err)
	}

	notes, err := s.notes.LoadStrict(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to purge notes: %w", err)
	}
	kept := notes[:0]
	for _, n := range notes {
		if n.BookID != docID {
			kept = append(kept, n)
		}
	}
	if err := s.notes.ReplaceAll(ctx, "", kept); err != nil {
		return fmt.Errorf("failed to purge notes: %w", err)
	}
	return nil
}

// Forget drops the cached session of docID; the next action reloads it.
func (s *Service) Forget(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, docID)
}

// ForgetAll drops every cached session.
func (s *Service) ForgetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*session)
}

// Reconcile re-reads docID from storage, drops annotations whose span is
// gone and clears dangling note ids. Stored lists are rewritten only when
// something changed. It returns the number of records repaired.
func (s *Service) Reconcile(ctx context.Context, docID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	storedSpans, err := s.spans.LoadStrict(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("failed to load highlights: %w", err)
	}
	storedAnnotations, err := s.annotations.LoadStrict(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("failed to load annotations: %w", err)
	}

	cleanSpans, cleanAnnotations := Sanitize(storedSpans, storedAnnotations)
	repaired := len(storedAnnotations) - len(cleanAnnotations)
	for i := range storedSpans {
		if storedSpans[i].NoteID != cleanSpans[i].NoteID {
			repaired++
		}
	}

	delete(s.sessions, docID)
	if repaired == 0 {
		return 0, nil
	}

	next := &session{spans: cleanSpans, annotations: cleanAnnotations}
	s.sessions[docID] = next
	if err := s.commit(ctx, docID, next, next.clone()); err != nil {
		return 0, err
	}
	log.Info().Str("document_id", docID).Int("repaired", repaired).Msg("Reconciled highlights")
	return repaired, nil
}

// HandleEvent reacts to bus events; a restored library invalidates every
// cached session.
func (s *Service) HandleEvent(e events.Event) {
	if e.Type == events.LibraryImported {
		log.Info().Msg("Library imported, dropping cached highlight sessions")
		s.ForgetAll()
	}
}

func (s *Service) updateSpan(ctx context.Context, docID, spanID string, fn func(*entities.HighlightSpan)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, docID)
	if err != nil {
		return Snapshot{DocumentID: docID}, err
	}
	idx := indexOfSpan(sess.spans, spanID)
	if idx < 0 {
		return s.snapshot(docID, sess), nil
	}

	next := sess.clone()
	h := &next.spans[idx]
	fn(h)
	h.UpdatedAt = s.now()
	h.Version++

	err = s.commit(ctx, docID, sess, next)
	return s.snapshot(docID, sess), err
}

// highlightRange resolves r against the session, appends the new span and
// re-homes notes. It returns the new span id and the ids of the annotations
// that lost their span.
func (s *Service) highlightRange(sess *session, r paragraphRange, color entities.HighlightColor) (string, []string) {
	now := s.now()

	res := spans.Resolve(sess.spans, r.index, r.start, r.end, s.ids)
	newSpan := entities.HighlightSpan{
		ID:             s.ids.NewID(),
		ParagraphIndex: r.index,
		StartOffset:    r.start,
		Text:           utils.UTF16Slice(r.text, r.start, r.end),
		Color:          color,
		Style:          entities.HighlightStyleBackground,
		UpdatedAt:      now,
		Version:        1,
	}
	link := spans.Relink(&res, &newSpan)

	touched := make(map[string]bool)
	for _, c := range res.Changes {
		if c.Outcome == spans.OutcomeKept {
			continue
		}
		for _, f := range c.Fragments {
			touched[f.ID] = true
		}
	}
	for i := range res.Spans {
		if touched[res.Spans[i].ID] {
			res.Spans[i].UpdatedAt = now
		}
	}

	for _, m := range link.Remaps {
		if i := indexOfAnnotation(sess.annotations, m.AnnotationID); i >= 0 {
			sess.annotations[i].HighlightID = m.NewHighlightID
			sess.annotations[i].UpdatedAt = now
			sess.annotations[i].Version++
		}
	}
	for _, id := range link.Orphaned {
		sess.annotations = removeAnnotation(sess.annotations, id)
	}

	sess.spans = append(res.Spans, newSpan)
	return newSpan.ID, link.Orphaned
}

// commit installs next as the session of docID and writes it through. The
// session is replaced even when the write fails.
func (s *Service) commit(ctx context.Context, docID string, sess, next *session) error {
	next.spans, next.annotations = Sanitize(next.spans, next.annotations)
	*sess = *next
	s.sessions[docID] = sess

	if err := s.spans.ReplaceAll(ctx, docID, sess.spans); err != nil {
		log.Error().Err(err).Str("document_id", docID).Msg("Failed to persist highlights")
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	if err := s.annotations.ReplaceAll(ctx, docID, sess.annotations); err != nil {
		log.Error().Err(err).Str("document_id", docID).Msg("Failed to persist annotations")
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	s.publisher.Publish(events.Event{Type: events.HighlightsChanged, DocumentID: docID})
	return nil
}

// deleteNotes drops the user notes derived from the given annotations. The
// notes list is only rewritten when one of them was present.
func (s *Service) deleteNotes(ctx context.Context, noteIDs ...string) error {
	if len(noteIDs) == 0 {
		return nil
	}
	notes, err := s.notes.LoadStrict(ctx, "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}

	drop := make(map[string]bool, len(noteIDs))
	for _, id := range noteIDs {
		drop[id] = true
	}
	kept := notes[:0]
	for _, n := range notes {
		if !drop[n.ID] {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notes) {
		return nil
	}

	if err := s.notes.ReplaceAll(ctx, "", kept); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	s.publisher.Publish(events.Event{Type: events.NotesChanged})
	return nil
}

// session returns the cached session of docID, loading and sanitizing it
// from storage on first use. Read failures are returned and nothing is
// cached, so a later call retries the read. A document with no stored state
// gets a fresh session that is cached by its first commit. Callers hold s.mu.
func (s *Service) session(ctx context.Context, docID string) (*session, error) {
	if sess, ok := s.sessions[docID]; ok {
		return sess, nil
	}
	storedSpans, err := s.spans.LoadStrict(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	storedAnnotations, err := s.annotations.LoadStrict(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}

	loadedSpans, loadedAnnotations := Sanitize(storedSpans, storedAnnotations)
	sess := &session{spans: loadedSpans, annotations: loadedAnnotations}
	if len(storedSpans) > 0 || len(storedAnnotations) > 0 {
		s.sessions[docID] = sess
	}
	return sess, nil
}

func (s *Service) snapshot(docID string, sess *session) Snapshot {
	return Snapshot{
		DocumentID:  docID,
		Spans:       append([]entities.HighlightSpan{}, sess.spans...),
		Annotations: append([]entities.Annotation{}, sess.annotations...),
	}
}

func (sess *session) clone() *session {
	return &session{
		spans:       append([]entities.HighlightSpan{}, sess.spans...),
		annotations: append([]entities.Annotation{}, sess.annotations...),
	}
}

func indexOfSpan(list []entities.HighlightSpan, id string) int {
	for i, h := range list {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func indexOfAnnotation(list []entities.Annotation, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func indexOfNote(list []entities.UserNote, id string) int {
	for i, n := range list {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func removeAnnotation(list []entities.Annotation, id string) []entities.Annotation {
	out := list[:0]
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
