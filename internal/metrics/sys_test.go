package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.0 KB", HumanSize(1024))
	assert.Equal(t, "1.5 MB", HumanSize(1536*1024))
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nutricare.db"), make([]byte, 2048), 0644))

	h := GetSysHealth(dir)
	assert.Equal(t, "2.0 KB", h.DataDiskSize)
	assert.Positive(t, h.Goroutines)
}
