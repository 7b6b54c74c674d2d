package reading

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/deepread/internal/entities"
	"github.com/mrlokans/deepread/internal/kv"
)

func TestChapterStore(t *testing.T) {
	ctx := context.Background()
	chapters := NewChapterStore(kv.NewMemory(), nil)

	assert.Empty(t, chapters.List(ctx, "d1"))

	saved, err := chapters.ReplaceAll(ctx, "d1", []entities.Chapter{
		{Title: "Two", StartParagraphIndex: 40},
		{ID: "c1", Title: "One", StartParagraphIndex: 0},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "c1", saved[0].ID)
	assert.NotEmpty(t, saved[1].ID)
	assert.Equal(t, 1, saved[1].Version)

	list := chapters.List(ctx, "d1")
	require.Len(t, list, 2)
	assert.Equal(t, "One", list[0].Title)
	assert.Equal(t, "Two", list[1].Title)

	require.NoError(t, chapters.Delete(ctx, "d1", "c1"))
	list = chapters.List(ctx, "d1")
	require.Len(t, list, 1)
	assert.Equal(t, "Two", list[0].Title)
}

func TestChapterAt(t *testing.T) {
	list := []entities.Chapter{
		{ID: "b", StartParagraphIndex: 10},
		{ID: "a", StartParagraphIndex: 0},
		{ID: "c", StartParagraphIndex: 25},
	}

	ch, ok := ChapterAt(list, 12)
	assert.True(t, ok)
	assert.Equal(t, "b", ch.ID)

	ch, ok = ChapterAt(list, 30)
	assert.True(t, ok)
	assert.Equal(t, "c", ch.ID)

	_, ok = ChapterAt(list[:1], 3)
	assert.False(t, ok)
}
