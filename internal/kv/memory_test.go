package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	t.Run("missing key", func(t *testing.T) {
		_, err := m.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, m.Set(ctx, "k", []byte(`[1,2]`)))

		v, err := m.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(v))
		assert.Equal(t, 1, m.Len())
	})

	t.Run("values are copied", func(t *testing.T) {
		buf := []byte("abc")
		require.NoError(t, m.Set(ctx, "c", buf))
		buf[0] = 'x'

		v, err := m.Get(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(v))
	})

	t.Run("injected failures", func(t *testing.T) {
		boom := errors.New("boom")
		m.FailWrites = boom
		assert.ErrorIs(t, m.Set(ctx, "k", nil), boom)
		m.FailWrites = nil

		m.FailReads = boom
		_, err := m.Get(ctx, "k")
		assert.ErrorIs(t, err, boom)
		m.FailReads = nil
	})

	t.Run("ping without pinger", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, m))
	})
}
