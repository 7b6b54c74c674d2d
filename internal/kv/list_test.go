package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

func (i item) GetID() string { return i.ID }

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("keys", func(t *testing.T) {
		l := NewList[item](NewMemory(), "highlights")
		assert.Equal(t, "highlights:d1", l.Key("d1"))
		assert.Equal(t, "highlights", l.Key(""))
	})

	t.Run("missing key loads empty", func(t *testing.T) {
		l := NewList[item](NewMemory(), "x")
		got := l.Load(ctx, "d1")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("replace all round trips", func(t *testing.T) {
		l := NewList[item](NewMemory(), "x")
		items := []item{{ID: "a", Value: 1}, {ID: "b", Value: 2}}

		require.NoError(t, l.ReplaceAll(ctx, "d1", items))

		assert.Equal(t, items, l.Load(ctx, "d1"))
		assert.Empty(t, l.Load(ctx, "d2"))
	})

	t.Run("nil replace stores empty array", func(t *testing.T) {
		m := NewMemory()
		l := NewList[item](m, "x")
		require.NoError(t, l.ReplaceAll(ctx, "d1", nil))

		raw, err := m.Get(ctx, "x:d1")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(raw))
	})

	t.Run("malformed payload loads empty", func(t *testing.T) {
		m := NewMemory()
		require.NoError(t, m.Set(ctx, "x:d1", []byte("{not json")))
		l := NewList[item](m, "x")

		assert.Empty(t, l.Load(ctx, "d1"))
		_, err := l.LoadStrict(ctx, "d1")
		assert.Error(t, err)
	})

	t.Run("read failure loads empty", func(t *testing.T) {
		m := NewMemory()
		m.FailReads = errors.New("disk on fire")
		l := NewList[item](m, "x")

		assert.Empty(t, l.Load(ctx, "d1"))
	})

	t.Run("upsert inserts at front and replaces in place", func(t *testing.T) {
		l := NewList[item](NewMemory(), "notes")
		require.NoError(t, l.UpsertOne(ctx, "", item{ID: "a", Value: 1}))
		require.NoError(t, l.UpsertOne(ctx, "", item{ID: "b", Value: 2}))
		require.NoError(t, l.UpsertOne(ctx, "", item{ID: "a", Value: 3}))

		assert.Equal(t, []item{{ID: "b", Value: 2}, {ID: "a", Value: 3}}, l.Load(ctx, ""))
	})

	t.Run("delete one", func(t *testing.T) {
		l := NewList[item](NewMemory(), "x")
		require.NoError(t, l.ReplaceAll(ctx, "d", []item{{ID: "a"}, {ID: "b"}}))

		require.NoError(t, l.DeleteOne(ctx, "d", "a"))
		require.NoError(t, l.DeleteOne(ctx, "d", "missing"))

		assert.Equal(t, []item{{ID: "b"}}, l.Load(ctx, "d"))
	})

	t.Run("write failure surfaces", func(t *testing.T) {
		m := NewMemory()
		m.FailWrites = errors.New("read only")
		l := NewList[item](m, "x")

		assert.Error(t, l.ReplaceAll(ctx, "d", []item{{ID: "a"}}))
	})
}
