package highlights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/deepread/internal/database/documents"
	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/kv"
	"github.com/mrlokans/deepread/internal/spans"
)

const docID = "doc-1"

type paragraphs []string

func (p paragraphs) Paragraph(_ string, index int) (string, error) {
	if index < 0 || index >= len(p) {
		return "", documents.ErrNotFound
	}
	return p[index], nil
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recorder struct{ events []events.Event }

func (r *recorder) Publish(e events.Event) { r.events = append(r.events, e) }

func setupTestService(t *testing.T, texts ...string) (*Service, *kv.Memory, *fixedClock, *recorder) {
	t.Helper()
	if len(texts) == 0 {
		texts = []string{"The quick brown fox"}
	}
	store := kv.NewMemory()
	clock := &fixedClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	svc := NewService(store, paragraphs(texts),
		WithIDGenerator(spans.NewSequence("h")),
		WithClock(clock.now),
		WithPublisher(rec),
	)
	return svc, store, clock, rec
}

func findSpan(t *testing.T, snap Snapshot, start int) entities.HighlightSpan {
	t.Helper()
	for _, h := range snap.Spans {
		if h.StartOffset == start {
			return h
		}
	}
	t.Fatalf("no span starting at %d", start)
	return entities.HighlightSpan{}
}

func TestService_CreateHighlight(t *testing.T) {
	ctx := context.Background()

	t.Run("scenario: highlight then replace with a wider span", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)

		snap, err := svc.CreateHighlight(ctx, docID, 0, 4, 9, entities.HighlightColorYellow)
		require.NoError(t, err)
		require.Len(t, snap.Spans, 1)
		assert.Equal(t, "quick", snap.Spans[0].Text)

		runs, err := svc.RenderParagraph(ctx, docID, 0)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, "The ", runs[0].Text)
		assert.Equal(t, "quick", runs[1].Text)
		assert.True(t, runs[1].Background)
		assert.Equal(t, " brown fox", runs[2].Text)

		snap, err = svc.CreateHighlight(ctx, docID, 0, 0, 19, entities.HighlightColorRed)
		require.NoError(t, err)
		require.Len(t, snap.Spans, 1)
		assert.Equal(t, 0, snap.Spans[0].StartOffset)
		assert.Equal(t, 19, snap.Spans[0].Length())
		assert.Equal(t, entities.HighlightColorRed, snap.Spans[0].Color)
	})

	t.Run("idempotent full engulfment", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)

		_, err := svc.CreateHighlight(ctx, docID, 0, 0, 10, entities.HighlightColorBlue)
		require.NoError(t, err)
		snap, err := svc.CreateHighlight(ctx, docID, 0, 0, 10, entities.HighlightColorPurple)
		require.NoError(t, err)

		require.Len(t, snap.Spans, 1)
		assert.Equal(t, entities.HighlightColorPurple, snap.Spans[0].Color)
		assert.Equal(t, 10, snap.Spans[0].Length())
	})

	t.Run("split correctness", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)

		_, err := svc.CreateHighlight(ctx, docID, 0, 2, 8, entities.HighlightColorBlue)
		require.NoError(t, err)
		snap, err := svc.CreateHighlight(ctx, docID, 0, 4, 6, entities.HighlightColorRed)
		require.NoError(t, err)

		require.Len(t, snap.Spans, 3)
		left, mid, right := findSpan(t, snap, 2), findSpan(t, snap, 4), findSpan(t, snap, 6)
		assert.Equal(t, 2, left.Length())
		assert.Equal(t, entities.HighlightColorBlue, left.Color)
		assert.Equal(t, 2, mid.Length())
		assert.Equal(t, entities.HighlightColorRed, mid.Color)
		assert.Equal(t, 2, right.Length())
		assert.Equal(t, entities.HighlightColorBlue, right.Color)
		assert.NotEqual(t, left.ID, right.ID)
	})

	t.Run("zero-length range is rejected", func(t *testing.T) {
		svc, store, _, _ := setupTestService(t)
		_, err := svc.CreateHighlight(ctx, docID, 0, 0, 4, entities.HighlightColorBlue)
		require.NoError(t, err)
		_, err = svc.CreateHighlight(ctx, docID, 0, 4, 8, entities.HighlightColorBlue)
		require.NoError(t, err)
		before := svc.Snapshot(ctx, docID)
		raw, _ := store.Get(ctx, "highlights:"+docID)

		_, err = svc.CreateHighlight(ctx, docID, 0, 4, 4, entities.HighlightColorRed)
		assert.ErrorIs(t, err, ErrInvalidRange)

		assert.Equal(t, before, svc.Snapshot(ctx, docID))
		after, _ := store.Get(ctx, "highlights:"+docID)
		assert.Equal(t, raw, after)
	})

	t.Run("invalid ranges", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)
		for name, sel := range map[string]Selection{
			"reversed":        Range(0, 8, 4),
			"negative":        Range(0, -1, 4),
			"past end":        Range(0, 10, 25),
			"unknown para":    Range(5, 0, 1),
			"reversed paras":  {StartParagraph: 1, EndParagraph: 0, EndOffset: 3},
			"negative para":   Range(-1, 0, 3),
			"all empty parts": {StartParagraph: 0, StartOffset: 19, EndParagraph: 0, EndOffset: 19},
		} {
			_, err := svc.HighlightSelection(ctx, docID, sel, entities.HighlightColorBlue)
			assert.ErrorIs(t, err, ErrInvalidRange, name)
		}
		assert.Empty(t, svc.Snapshot(ctx, docID).Spans)
	})

	t.Run("invalid color", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)
		_, err := svc.CreateHighlight(ctx, docID, 0, 0, 3, "green")
		assert.ErrorIs(t, err, ErrInvalidColor)
	})

	t.Run("multi-paragraph selection", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t, "first one", "", "middle", "last one")

		snap, err := svc.HighlightSelection(ctx, docID, Selection{
			StartParagraph: 0, StartOffset: 6,
			EndParagraph: 3, EndOffset: 4,
		}, entities.HighlightColorBlue)
		require.NoError(t, err)

		require.Len(t, snap.Spans, 3)
		texts := map[int]string{}
		for _, h := range snap.Spans {
			texts[h.ParagraphIndex] = h.Text
		}
		assert.Equal(t, map[int]string{0: "one", 2: "middle", 3: "last"}, texts)
	})

	t.Run("persists and publishes", func(t *testing.T) {
		svc, store, _, rec := setupTestService(t)

		_, err := svc.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)
		require.NoError(t, err)

		stored := NewSpanStore(store).Load(ctx, docID)
		require.Len(t, stored, 1)
		assert.Equal(t, "The", stored[0].Text)
		require.Len(t, rec.events, 1)
		assert.Equal(t, events.HighlightsChanged, rec.events[0].Type)
		assert.Equal(t, docID, rec.events[0].DocumentID)
	})
}

func TestService_Notes(t *testing.T) {
	ctx := context.Background()

	t.Run("create note over range", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)

		snap, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 4, 9), NoteLayout{Top: 120, PointX: 40})
		require.NoError(t, err)

		require.Len(t, snap.Spans, 1)
		h := snap.Spans[0]
		assert.Equal(t, entities.HighlightColorYellow, h.Color)
		assert.Equal(t, entities.HighlightStyleUnderline, h.Style)
		assert.Equal(t, ann.ID, h.NoteID)
		assert.Equal(t, "note-"+h.ID, ann.ID)
		assert.Equal(t, h.ID, ann.HighlightID)
		assert.Equal(t, entities.DefaultAnnotationColor, ann.Color)
		assert.Equal(t, 120.0, ann.Top)
		assert.Empty(t, ann.Text)
		assert.Equal(t, []entities.Annotation{ann}, snap.Annotations)
	})

	t.Run("note preserved on full supersede", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)
		_, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 0, 5), NoteLayout{})
		require.NoError(t, err)

		snap, err := svc.CreateHighlight(ctx, docID, 0, 0, 10, entities.HighlightColorBlue)
		require.NoError(t, err)

		require.Len(t, snap.Spans, 1)
		assert.Equal(t, 10, snap.Spans[0].Length())
		assert.Equal(t, ann.ID, snap.Spans[0].NoteID)
		require.Len(t, snap.Annotations, 1)
		assert.Equal(t, snap.Spans[0].ID, snap.Annotations[0].HighlightID)
	})

	t.Run("split keeps note on the left fragment", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)
		_, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 0, 15), NoteLayout{})
		require.NoError(t, err)

		snap, err := svc.CreateHighlight(ctx, docID, 0, 4, 9, entities.HighlightColorRed)
		require.NoError(t, err)

		assert.Equal(t, ann.ID, findSpan(t, snap, 0).NoteID)
		assert.Empty(t, findSpan(t, snap, 4).NoteID)
		assert.Empty(t, findSpan(t, snap, 9).NoteID)
		require.Len(t, snap.Annotations, 1)
		assert.Equal(t, findSpan(t, snap, 0).ID, snap.Annotations[0].HighlightID)
	})

	t.Run("extra superseded notes are dropped", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)
		_, first, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 0, 3), NoteLayout{})
		require.NoError(t, err)
		_, second, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 4, 9), NoteLayout{})
		require.NoError(t, err)
		_, err = svc.UpdateAnnotationText(ctx, docID, first.ID, "one")
		require.NoError(t, err)
		_, err = svc.UpdateAnnotationText(ctx, docID, second.ID, "two")
		require.NoError(t, err)

		snap, err := svc.CreateHighlight(ctx, docID, 0, 0, 19, entities.HighlightColorBlue)
		require.NoError(t, err)

		require.Len(t, snap.Spans, 1)
		assert.Equal(t, first.ID, snap.Spans[0].NoteID)
		require.Len(t, snap.Annotations, 1)
		assert.Equal(t, first.ID, snap.Annotations[0].ID)

		notes := svc.ListNotesForUser(ctx)
		require.Len(t, notes, 1)
		assert.Equal(t, first.ID, notes[0].ID)
		assert.Equal(t, "one", notes[0].Thought)
	})

	t.Run("note over a noted span replaces its user note", func(t *testing.T) {
		svc, _, _, rec := setupTestService(t)
		_, old, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 4, 9), NoteLayout{})
		require.NoError(t, err)
		_, err = svc.UpdateAnnotationText(ctx, docID, old.ID, "old")
		require.NoError(t, err)
		rec.events = nil

		snap, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 0, 10), NoteLayout{})
		require.NoError(t, err)

		require.Len(t, snap.Annotations, 1)
		assert.Equal(t, ann.ID, snap.Annotations[0].ID)
		assert.NotEqual(t, old.ID, ann.ID)
		assert.Empty(t, svc.ListNotesForUser(ctx))
		require.NotEmpty(t, rec.events)
		assert.Equal(t, events.NotesChanged, rec.events[len(rec.events)-1].Type)
	})

	t.Run("update annotation text creates then updates the user note", func(t *testing.T) {
		svc, _, clock, _ := setupTestService(t)
		_, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 4, 9), NoteLayout{})
		require.NoError(t, err)

		snap, err := svc.UpdateAnnotationText(ctx, docID, ann.ID, "fast")
		require.NoError(t, err)
		assert.Equal(t, "fast", snap.Annotations[0].Text)

		notes := svc.ListNotesForUser(ctx)
		require.Len(t, notes, 1)
		assert.Equal(t, ann.ID, notes[0].ID)
		assert.Equal(t, docID, notes[0].BookID)
		assert.Equal(t, "quick", notes[0].Quote)
		assert.Equal(t, "fast", notes[0].Thought)
		assert.Equal(t, "2024-03-01", notes[0].Date)

		// widening the span must not rewrite the quote
		_, err = svc.CreateHighlight(ctx, docID, 0, 0, 19, entities.HighlightColorBlue)
		require.NoError(t, err)
		clock.advance(48 * time.Hour)
		_, err = svc.UpdateAnnotationText(ctx, docID, ann.ID, "very fast")
		require.NoError(t, err)

		notes = svc.ListNotesForUser(ctx)
		require.Len(t, notes, 1)
		assert.Equal(t, "quick", notes[0].Quote)
		assert.Equal(t, "very fast", notes[0].Thought)
		assert.Equal(t, "2024-03-03", notes[0].Date)
		assert.Equal(t, 2, notes[0].Version)
	})

	t.Run("notes are listed newest first", func(t *testing.T) {
		svc, _, clock, _ := setupTestService(t)
		_, a1, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 0, 3), NoteLayout{})
		require.NoError(t, err)
		_, a2, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 4, 9), NoteLayout{})
		require.NoError(t, err)

		_, err = svc.UpdateAnnotationText(ctx, docID, a1.ID, "one")
		require.NoError(t, err)
		clock.advance(time.Minute)
		_, err = svc.UpdateAnnotationText(ctx, docID, a2.ID, "two")
		require.NoError(t, err)
		clock.advance(time.Minute)
		_, err = svc.UpdateAnnotationText(ctx, docID, a1.ID, "one again")
		require.NoError(t, err)

		notes := svc.ListNotesForUser(ctx)
		require.Len(t, notes, 2)
		assert.Equal(t, a1.ID, notes[0].ID)
		assert.Equal(t, a2.ID, notes[1].ID)
		assert.Len(t, svc.ListNotesForDocument(ctx, docID), 2)
		assert.Empty(t, svc.ListNotesForDocument(ctx, "other"))
	})

	t.Run("remove note keeps span", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)
		snap, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 4, 9), NoteLayout{})
		require.NoError(t, err)
		_, err = svc.UpdateAnnotationText(ctx, docID, ann.ID, "thought")
		require.NoError(t, err)

		snap, err = svc.RemoveNoteFromHighlight(ctx, docID, snap.Spans[0].ID)
		require.NoError(t, err)

		require.Len(t, snap.Spans, 1)
		assert.Empty(t, snap.Spans[0].NoteID)
		assert.Equal(t, entities.HighlightStyleBackground, snap.Spans[0].Style)
		assert.Empty(t, snap.Annotations)
		assert.Empty(t, svc.ListNotesForUser(ctx))
	})
}

func TestService_DeleteHighlight(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade delete", func(t *testing.T) {
		svc, store, _, _ := setupTestService(t)
		snap, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 4, 9), NoteLayout{})
		require.NoError(t, err)
		_, err = svc.UpdateAnnotationText(ctx, docID, ann.ID, "thought")
		require.NoError(t, err)
		_, err = svc.CreateHighlight(ctx, docID, 0, 10, 15, entities.HighlightColorBlue)
		require.NoError(t, err)

		snap, err = svc.DeleteHighlight(ctx, docID, snap.Spans[0].ID)
		require.NoError(t, err)

		require.Len(t, snap.Spans, 1)
		assert.Equal(t, "brown", snap.Spans[0].Text)
		assert.Empty(t, snap.Annotations)
		assert.Empty(t, NewAnnotationStore(store).Load(ctx, docID))
		assert.Empty(t, svc.ListNotesForUser(ctx))
	})

	t.Run("unknown ids are no-ops", func(t *testing.T) {
		svc, _, _, rec := setupTestService(t)
		_, err := svc.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)
		require.NoError(t, err)
		before := svc.Snapshot(ctx, docID)
		published := len(rec.events)

		snap, err := svc.DeleteHighlight(ctx, docID, "missing")
		require.NoError(t, err)
		assert.Equal(t, before, snap)

		snap, err = svc.RecolorHighlight(ctx, docID, "missing", entities.HighlightColorRed)
		require.NoError(t, err)
		assert.Equal(t, before, snap)

		snap, err = svc.RemoveNoteFromHighlight(ctx, docID, "missing")
		require.NoError(t, err)
		assert.Equal(t, before, snap)

		snap, err = svc.UpdateAnnotationText(ctx, docID, "missing", "x")
		require.NoError(t, err)
		assert.Equal(t, before, snap)

		assert.Len(t, rec.events, published)
	})
}

func TestService_Recolor(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, _ := setupTestService(t)
	snap, err := svc.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)
	require.NoError(t, err)
	id := snap.Spans[0].ID

	snap, err = svc.ClearHighlightColor(ctx, docID, id)
	require.NoError(t, err)
	assert.Equal(t, entities.HighlightStyleUnderline, snap.Spans[0].Style)

	clock.advance(time.Hour)
	snap, err = svc.RecolorHighlight(ctx, docID, id, entities.HighlightColorRed)
	require.NoError(t, err)
	assert.Equal(t, entities.HighlightColorRed, snap.Spans[0].Color)
	assert.Equal(t, entities.HighlightStyleBackground, snap.Spans[0].Style)
	assert.Equal(t, 3, snap.Spans[0].Version)
	assert.Equal(t, clock.t, snap.Spans[0].UpdatedAt)

	_, err = svc.RecolorHighlight(ctx, docID, id, "")
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestService_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _, rec := setupTestService(t)
	store.FailWrites = errors.New("disk full")

	snap, err := svc.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)

	assert.ErrorIs(t, err, ErrNotPersisted)
	require.Len(t, snap.Spans, 1)
	assert.Len(t, svc.Snapshot(ctx, docID).Spans, 1, "in-memory state is kept")
	assert.Empty(t, rec.events)

	store.FailWrites = nil
	_, err = svc.CreateHighlight(ctx, docID, 0, 4, 9, entities.HighlightColorBlue)
	require.NoError(t, err)
	assert.Len(t, NewSpanStore(store).Load(ctx, docID), 2)
}

func TestService_ReadFailure(t *testing.T) {
	ctx := context.Background()
	writer, store, _, _ := setupTestService(t)
	_, err := writer.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)
	require.NoError(t, err)
	_, err = writer.CreateHighlight(ctx, docID, 0, 4, 9, entities.HighlightColorBlue)
	require.NoError(t, err)

	svc := NewService(store, paragraphs{"The quick brown fox"}, WithIDGenerator(spans.NewSequence("x")))
	store.FailReads = errors.New("connection reset")

	snap := svc.Snapshot(ctx, docID)
	assert.Empty(t, snap.Spans)

	_, err = svc.CreateHighlight(ctx, docID, 0, 10, 15, entities.HighlightColorRed)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, _, err = svc.CreateNoteOverRange(ctx, docID, Range(0, 10, 15), NoteLayout{})
	assert.ErrorIs(t, err, ErrNotLoaded)

	store.FailReads = nil
	assert.Len(t, NewSpanStore(store).Load(ctx, docID), 2, "stored highlights are untouched")

	snap, err = svc.CreateHighlight(ctx, docID, 0, 10, 15, entities.HighlightColorRed)
	require.NoError(t, err)
	assert.Len(t, snap.Spans, 3)
	assert.Len(t, NewSpanStore(store).Load(ctx, docID), 3)
}

func TestService_SessionCache(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := setupTestService(t)

	assert.Empty(t, svc.Snapshot(ctx, "unknown").Spans)
	_, err := svc.DeleteHighlight(ctx, "unknown", "h1")
	require.NoError(t, err)
	assert.NotContains(t, svc.sessions, "unknown")

	_, err = svc.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)
	require.NoError(t, err)
	assert.Contains(t, svc.sessions, docID)
}

func TestService_LoadSanitizes(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := setupTestService(t)

	require.NoError(t, NewSpanStore(store).ReplaceAll(ctx, docID, []entities.HighlightSpan{
		{ID: "h1", StartOffset: 0, Text: "The", NoteID: "a1"},
		{ID: "h2", StartOffset: 4, Text: "quick", NoteID: "gone"},
	}))
	require.NoError(t, NewAnnotationStore(store).ReplaceAll(ctx, docID, []entities.Annotation{
		{ID: "a1", HighlightID: "h1"},
		{ID: "a2", HighlightID: "missing"},
	}))

	snap := svc.Snapshot(ctx, docID)

	require.Len(t, snap.Annotations, 1)
	assert.Equal(t, "a1", snap.Annotations[0].ID)
	assert.Equal(t, "a1", findSpan(t, snap, 0).NoteID)
	assert.Empty(t, findSpan(t, snap, 4).NoteID)
}

func TestService_Reconcile(t *testing.T) {
	ctx := context.Background()
	svc, store, _, rec := setupTestService(t)

	t.Run("clean document is left alone", func(t *testing.T) {
		_, err := svc.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)
		require.NoError(t, err)
		rec.events = nil

		repaired, err := svc.Reconcile(ctx, docID)
		require.NoError(t, err)

		assert.Zero(t, repaired)
		assert.Empty(t, rec.events)
	})

	t.Run("stored orphans are removed", func(t *testing.T) {
		require.NoError(t, NewSpanStore(store).ReplaceAll(ctx, docID, []entities.HighlightSpan{
			{ID: "h1", StartOffset: 0, Text: "The", NoteID: "a1"},
			{ID: "h2", StartOffset: 4, Text: "quick", NoteID: "gone"},
		}))
		require.NoError(t, NewAnnotationStore(store).ReplaceAll(ctx, docID, []entities.Annotation{
			{ID: "a1", HighlightID: "h1"},
			{ID: "a2", HighlightID: "missing"},
		}))

		repaired, err := svc.Reconcile(ctx, docID)
		require.NoError(t, err)

		assert.Equal(t, 2, repaired)
		stored := NewAnnotationStore(store).Load(ctx, docID)
		require.Len(t, stored, 1)
		assert.Equal(t, "a1", stored[0].ID)
		assert.Empty(t, findSpan(t, svc.Snapshot(ctx, docID), 4).NoteID)
		require.NotEmpty(t, rec.events)
		assert.Equal(t, events.HighlightsChanged, rec.events[len(rec.events)-1].Type)
	})

	t.Run("read failures are returned", func(t *testing.T) {
		store.FailReads = errors.New("down")
		defer func() { store.FailReads = nil }()

		_, err := svc.Reconcile(ctx, docID)
		assert.Error(t, err)
	})
}

func TestService_SnapshotIsImmutable(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := setupTestService(t)
	snap, err := svc.CreateHighlight(ctx, docID, 0, 0, 3, entities.HighlightColorBlue)
	require.NoError(t, err)

	snap.Spans[0].Color = entities.HighlightColorRed

	assert.Equal(t, entities.HighlightColorBlue, svc.Snapshot(ctx, docID).Spans[0].Color)
}

func TestService_SessionsAndPurge(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := setupTestService(t)
	_, ann, err := svc.CreateNoteOverRange(ctx, docID, Range(0, 0, 3), NoteLayout{})
	require.NoError(t, err)
	_, err = svc.UpdateAnnotationText(ctx, docID, ann.ID, "x")
	require.NoError(t, err)

	t.Run("library import drops cached sessions", func(t *testing.T) {
		require.NoError(t, NewSpanStore(store).ReplaceAll(ctx, docID, nil))
		assert.Len(t, svc.Snapshot(ctx, docID).Spans, 1)

		svc.HandleEvent(events.Event{Type: events.HighlightsChanged})
		assert.Len(t, svc.Snapshot(ctx, docID).Spans, 1)

		svc.HandleEvent(events.Event{Type: events.LibraryImported})
		assert.Empty(t, svc.Snapshot(ctx, docID).Spans)
	})

	t.Run("purge", func(t *testing.T) {
		require.NoError(t, svc.PurgeDocument(ctx, docID))

		assert.Empty(t, svc.Snapshot(ctx, docID).Annotations)
		assert.Empty(t, svc.ListNotesForUser(ctx))
	})
}

func TestService_RenderParagraphs(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := setupTestService(t, "alpha beta", "gamma")
	_, err := svc.CreateHighlight(ctx, docID, 1, 0, 5, entities.HighlightColorBlue)
	require.NoError(t, err)

	out := svc.RenderParagraphs(ctx, docID, []entities.Paragraph{{Index: 0, Text: "alpha beta"}, {Index: 1, Text: "gamma"}})

	require.Len(t, out, 2)
	require.Len(t, out[0].Runs, 1)
	assert.Equal(t, spans.RunPlain, out[0].Runs[0].Kind)
	require.Len(t, out[1].Runs, 1)
	assert.Equal(t, spans.RunHighlighted, out[1].Runs[0].Kind)

	_, err = svc.RenderParagraph(ctx, docID, 9)
	assert.ErrorIs(t, err, documents.ErrNotFound)
}
