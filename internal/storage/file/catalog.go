package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Catalog keeps one FileManager per file name. It is safe for concurrent use.
type Catalog struct {
	files *xsync.MapOf[string, *FileManager]
	opts  util.Options
	log   *zap.Logger
}

// NewCatalog creates a catalog rooted at opts.Path. With opts.InMemory every
// file it opens is memory backed.
func NewCatalog(opts util.Options) *Catalog {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Catalog{
		files: xsync.NewMapOf[string, *FileManager](),
		opts:  opts,
		log:   opts.Logger.Named("catalog"),
	}
}

func (c *Catalog) path(name string) string {
	if c.opts.InMemory || c.opts.Path == "" {
		return name
	}
	return filepath.Join(c.opts.Path, name)
}

// Open returns the open file registered under name, opening or creating it if needed.
func (c *Catalog) Open(name string) (*FileManager, error) {
	if fm, ok := c.files.Load(name); ok {
		return fm, nil
	}

	opts := c.opts
	opts.Path = c.path(name)
	fm, err := OpenFile(opts)
	if err != nil {
		return nil, fmt.Errorf("[catalog] [Open] %s: %w", name, err)
	}

	actual, loaded := c.files.LoadOrStore(name, fm)
	if loaded {
		// lost the race, keep the registered one
		c.discard(name, fm)
		return actual, nil
	}
	c.log.Debug("registered file", zap.String("file", name))
	return fm, nil
}

// discard closes a file manager that never made it into the catalog.
func (c *Catalog) discard(name string, fm *FileManager) {
	if err := fm.Close(); err != nil {
		c.log.Warn("close duplicate file failed", zap.String("file", name), zap.Error(err))
	}
}

// Get returns the file registered under name without opening it.
func (c *Catalog) Get(name string) (*FileManager, bool) {
	return c.files.Load(name)
}

// Close closes and unregisters the file. Closing an unknown name is a no-op.
func (c *Catalog) Close(name string) error {
	fm, ok := c.files.LoadAndDelete(name)
	if !ok {
		return nil
	}
	return fm.Close()
}

// Remove closes the file and deletes it from disk.
func (c *Catalog) Remove(name string) error {
	fm, ok := c.files.LoadAndDelete(name)
	if ok {
		if err := fm.Close(); err != nil {
			return err
		}
		if fm.inMemory {
			return nil
		}
	}
	if c.opts.InMemory {
		return nil
	}
	if err := os.Remove(c.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[catalog] [Remove] %s: %w", name, err)
	}
	return nil
}

// CloseAll closes every registered file and empties the catalog.
func (c *Catalog) CloseAll() error {
	var err error
	c.files.Range(func(name string, fm *FileManager) bool {
		if e := fm.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", name, e))
		}
		c.files.Delete(name)
		return true
	})
	return err
}

func (c *Catalog) Len() int {
	return c.files.Size()
}
