package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCatalogOpen(t *testing.T) {
	opts := util.DefaultOptions()
	opts.Path = t.TempDir()
	c := NewCatalog(opts)
	defer c.CloseAll()

	a, err := c.Open("a.db")
	require.NoError(t, err)
	again, err := c.Open("a.db")
	require.NoError(t, err)
	assert.Same(t, a, again, "same file manager for the same name")

	b, err := c.Open("b.db")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, c.Len())

	_, err = os.Stat(filepath.Join(opts.Path, "a.db"))
	assert.NoError(t, err, "file created under the catalog root")

	got, ok := c.Get("b.db")
	assert.True(t, ok)
	assert.Same(t, b, got)
}

func TestCatalogCloseAndRemove(t *testing.T) {
	opts := util.DefaultOptions()
	opts.Path = t.TempDir()
	c := NewCatalog(opts)

	a, err := c.Open("a.db")
	require.NoError(t, err)
	require.NoError(t, c.Close("a.db"))
	assert.False(t, a.IsOpen(), "closed")
	assert.Equal(t, 0, c.Len())
	assert.NoError(t, c.Close("a.db"), "unknown name is a no-op")

	_, err = c.Open("a.db")
	require.NoError(t, err)
	require.NoError(t, c.Remove("a.db"))
	_, err = os.Stat(filepath.Join(opts.Path, "a.db"))
	assert.ErrorIs(t, err, os.ErrNotExist, "removed from disk")
	assert.NoError(t, c.Remove("a.db"), "removing twice")
}

func TestCatalogInMemoryConcurrentOpen(t *testing.T) {
	opts := util.DefaultOptions()
	opts.InMemory = true
	c := NewCatalog(opts)
	defer c.CloseAll()

	var wg sync.WaitGroup
	results := make([]*FileManager, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fm, err := c.Open("shared")
			assert.NoError(t, err)
			results[i] = fm
		}(i)
	}
	wg.Wait()

	for _, fm := range results {
		assert.Same(t, results[0], fm)
	}
	assert.True(t, results[0].IsOpen())
	require.NoError(t, c.CloseAll())
	assert.Equal(t, 0, c.Len())
	assert.False(t, results[0].IsOpen())
}

func TestCatalogDiscardLogsCloseError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	opts := util.DefaultOptions()
	opts.Path = t.TempDir()
	opts.Logger = zap.New(core)
	c := NewCatalog(opts)

	fm, err := NewFileManager(filepath.Join(opts.Path, "dup.db"))
	require.NoError(t, err)
	require.NoError(t, fm.store.Close(), "close the backing file underneath")

	c.discard("dup.db", fm)
	assert.False(t, fm.IsOpen())
	require.Equal(t, 1, logs.Len(), "close failure logged")
	entry := logs.All()[0]
	assert.Equal(t, "close duplicate file failed", entry.Message)
	assert.Equal(t, "dup.db", entry.ContextMap()["file"])
	assert.Equal(t, 0, c.Len(), "never registered")
}
