package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsBufferPoolOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stoat.yaml")
	yaml := `
storage:
  file: mytable.db
buffer_pool:
  pool_size: 64
  next_page_id: 3
hash:
  bucket_limit: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mytable.db", cfg.Storage.File)
	assert.Equal(t, 64, cfg.BufferPool.PoolSize)
	assert.Equal(t, uint64(3), cfg.BufferPool.NextPageID)
	assert.Equal(t, 8, cfg.Hash.BucketLimit)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 16, cfg.BufferPool.PoolSize)
	assert.Equal(t, 4, cfg.Hash.BucketLimit)
}
