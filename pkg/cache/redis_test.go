package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	RunID   string `json:"runId"`
	Overall int    `json:"overall"`
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), append([]Option{WithAddress(mr.Addr())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		c, _ := newTestCache(t)

		in := []entry{{RunID: "run-1", Overall: 72}}
		require.NoError(t, c.Set(ctx, "runs", in, time.Minute))

		var out []entry
		require.NoError(t, c.Get(ctx, "runs", &out))
		assert.Equal(t, in, out)
	})

	t.Run("miss", func(t *testing.T) {
		c, _ := newTestCache(t)

		var out []entry
		assert.ErrorIs(t, c.Get(ctx, "absent", &out), ErrMiss)
	})

	t.Run("expiration", func(t *testing.T) {
		c, mr := newTestCache(t)

		require.NoError(t, c.Set(ctx, "runs", entry{RunID: "run-1"}, time.Minute))
		mr.FastForward(2 * time.Minute)

		var out entry
		assert.ErrorIs(t, c.Get(ctx, "runs", &out), ErrMiss)
	})

	t.Run("delete", func(t *testing.T) {
		c, _ := newTestCache(t)

		require.NoError(t, c.Set(ctx, "a", 1, 0))
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		require.NoError(t, c.Delete(ctx, "a", "b", "never-set"))
		require.NoError(t, c.Delete(ctx))

		var v int
		assert.ErrorIs(t, c.Get(ctx, "a", &v), ErrMiss)
		assert.ErrorIs(t, c.Get(ctx, "b", &v), ErrMiss)
	})

	t.Run("namespace prefixes keys", func(t *testing.T) {
		c, mr := newTestCache(t, WithNamespace("audit"))

		require.NoError(t, c.Set(ctx, "grpc:audit_runs:loc-1", entry{RunID: "run-1"}, time.Minute))
		assert.True(t, mr.Exists("audit:grpc:audit_runs:loc-1"))
		assert.False(t, mr.Exists("grpc:audit_runs:loc-1"))

		require.NoError(t, c.Delete(ctx, "grpc:audit_runs:loc-1"))
		assert.False(t, mr.Exists("audit:grpc:audit_runs:loc-1"))
	})

	t.Run("corrupt value", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, mr.Set("runs", "{not json"))

		var out []entry
		err := c.Get(ctx, "runs", &out)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMiss)
	})

	t.Run("ping", func(t *testing.T) {
		c, mr := newTestCache(t)
		assert.NoError(t, c.Ping(ctx))
		mr.Close()
		assert.Error(t, c.Ping(ctx))
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := New(ctx, WithAddress(addr))
		assert.Error(t, err)
	})
}
