package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileStore(t *testing.T) {
	t.Run("round-trips a saved timestamp", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "checkpoint.txt"))
		err := store.Save(context.TODO(), 1700000000)
		assert.NoError(t, err)
		assert.Equal(t, int64(1700000000), store.Load(context.TODO()))
	})

	t.Run("overwrites a previous checkpoint", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "checkpoint.txt"))
		assert.NoError(t, store.Save(context.TODO(), 1700000000))
		assert.NoError(t, store.Save(context.TODO(), 1700000500))
		assert.Equal(t, int64(1700000500), store.Load(context.TODO()))
	})

	t.Run("defaults to now when the file is missing", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "checkpoint.txt"))
		before := time.Now().UTC().Unix()
		loaded := store.Load(context.TODO())
		after := time.Now().UTC().Unix()
		assert.GreaterOrEqual(t, loaded, before)
		assert.LessOrEqual(t, loaded, after)
	})

	t.Run("defaults to now when the file is corrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "checkpoint.txt")
		assert.NoError(t, os.WriteFile(path, []byte("not a number"), 0o644))
		store := NewFileStore(path)
		before := time.Now().UTC().Unix()
		loaded := store.Load(context.TODO())
		assert.GreaterOrEqual(t, loaded, before)
	})

	t.Run("tolerates surrounding whitespace", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "checkpoint.txt")
		assert.NoError(t, os.WriteFile(path, []byte(" 1700000000\n"), 0o644))
		store := NewFileStore(path)
		assert.Equal(t, int64(1700000000), store.Load(context.TODO()))
	})
}
