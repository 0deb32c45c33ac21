package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nutricare.db")

	db, err := NewDB(path, zap.NewNop())
	require.NoError(t, err)

	var n int
	err = db.SQL.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'kv'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, db.Close())

	t.Run("Reopen", func(t *testing.T) {
		again, err := NewDB(path, zap.NewNop())
		require.NoError(t, err, "second open hits ErrNoChange and succeeds")
		assert.NoError(t, again.Close())
	})
}
