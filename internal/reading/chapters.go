package reading

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/events"
	"github.com/mrlokans/deepread/internal/kv"
)

// ChapterStore keeps the chapter list of each document under
// chapters:<document id>.
type ChapterStore struct {
	list      *kv.List[entities.Chapter]
	now       func() time.Time
	publisher events.Publisher
}

func NewChapterStore(store kv.Store, publisher events.Publisher) *ChapterStore {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &ChapterStore{
		list:      kv.NewList[entities.Chapter](store, "chapters"),
		now:       time.Now,
		publisher: publisher,
	}
}

// List returns chapters ordered by starting paragraph.
func (c *ChapterStore) List(ctx context.Context, docID string) []entities.Chapter {
	chapters := c.list.Load(ctx, docID)
	sortChapters(chapters)
	return chapters
}

// ReplaceAll stores chapters as the full list for docID. Missing ids are
// generated and every chapter is stamped with the current time.
func (c *ChapterStore) ReplaceAll(ctx context.Context, docID string, chapters []entities.Chapter) ([]entities.Chapter, error) {
	now := c.now()
	out := make([]entities.Chapter, len(chapters))
	for i, ch := range chapters {
		if ch.ID == "" {
			ch.ID = uuid.NewString()
		}
		ch.UpdatedAt = now
		ch.Version++
		out[i] = ch
	}
	sortChapters(out)

	if err := c.list.ReplaceAll(ctx, docID, out); err != nil {
		return nil, err
	}
	c.publisher.Publish(events.Event{Type: events.ChaptersChanged, DocumentID: docID})
	return out, nil
}

// Put stores chapters exactly as given.
func (c *ChapterStore) Put(ctx context.Context, docID string, chapters []entities.Chapter) error {
	return c.list.ReplaceAll(ctx, docID, chapters)
}

// Delete removes one chapter.
func (c *ChapterStore) Delete(ctx context.Context, docID, chapterID string) error {
	if err := c.list.DeleteOne(ctx, docID, chapterID); err != nil {
		return err
	}
	c.publisher.Publish(events.Event{Type: events.ChaptersChanged, DocumentID: docID})
	return nil
}

// ChapterAt returns the chapter containing paragraph index.
func ChapterAt(chapters []entities.Chapter, index int) (entities.Chapter, bool) {
	var found entities.Chapter
	ok := false
	for _, ch := range chapters {
		if ch.StartParagraphIndex <= index && (!ok || ch.StartParagraphIndex >= found.StartParagraphIndex) {
			found, ok = ch, true
		}
	}
	return found, ok
}

func sortChapters(chapters []entities.Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].StartParagraphIndex < chapters[j].StartParagraphIndex
	})
}
