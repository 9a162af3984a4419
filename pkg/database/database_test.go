package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("in-memory defaults", func(t *testing.T) {
		db, err := New(ctx, WithMaxOpenConns(1))
		require.NoError(t, err)
		defer db.Close()

		var one int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT 1").Scan(&one))
		assert.Equal(t, 1, one)
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("runs init statements", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.db")
		db, err := New(ctx,
			WithDataSource(path),
			WithMaxOpenConns(1),
			WithInitStatements(SQLitePragmas...),
		)
		require.NoError(t, err)
		defer db.Close()

		var mode string
		require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("empty driver", func(t *testing.T) {
		_, err := New(ctx, WithDriver(""))
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("empty data source", func(t *testing.T) {
		_, err := New(ctx, WithDataSource(""))
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})

	t.Run("unknown driver exhausts retries", func(t *testing.T) {
		_, err := New(ctx, WithDriver("nope"), WithRetry(2, time.Millisecond))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
	})

	t.Run("bad init statement", func(t *testing.T) {
		_, err := New(ctx, WithInitStatements("NOT SQL"), WithRetry(1, 0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "init statement")
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := New(cctx, WithDriver("nope"), WithRetry(5, time.Hour))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
