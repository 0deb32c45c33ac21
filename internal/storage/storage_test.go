package storage

import (
	"context"
	"path/filepath"
	"testing"

	"ai-nutricare/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, ok, err := kv.Get(ctx, "userEmail")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SetAndOverwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "userEmail", "asha@example.com"))
		require.NoError(t, kv.Set(ctx, "userEmail", "ravi@example.com"))
		v, ok, err := kv.Get(ctx, "userEmail")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "ravi@example.com", v)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "userName", "Ravi"))
		require.NoError(t, kv.Delete(ctx, "userName", "userEmail", "absent"))
		_, ok, _ := kv.Get(ctx, "userName")
		assert.False(t, ok)
		_, ok, _ = kv.Get(ctx, "userEmail")
		assert.False(t, ok)
	})
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestSQLiteKV(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "kv.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	kv := NewSQLiteKV(db.SQL, "cli")
	exerciseKV(t, kv)

	t.Run("NamespacesAreIsolated", func(t *testing.T) {
		ctx := context.Background()
		other := kv.Namespace("chat:42")
		require.NoError(t, kv.Set(ctx, "userName", "Asha"))
		_, ok, err := other.Get(ctx, "userName")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
