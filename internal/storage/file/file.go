package file

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

/**
* This module is used to read and write pages from / to a file.
* The first PageSize bytes hold the file header, page n lives at (n+1)*PageSize.
* Deleted pages stay in place with the used flag cleared.
**/

const (
	fileMagic   uint32 = 0x42554631 // "BUF1"
	fileVersion uint16 = 1
)

type FileManager struct {
	name       string
	store      backend
	inMemory   bool
	pageCount  uint64
	deleted    mapset.Set[util.PageID]
	open       bool
	syncWrites bool
	log        *zap.Logger
}

// NewFileManager opens or creates the page file at path.
func NewFileManager(path string) (*FileManager, error) {
	opts := util.DefaultOptions()
	opts.Path = path
	return OpenFile(opts)
}

// NewMemFileManager returns an empty page file that lives only in memory.
func NewMemFileManager(name string) *FileManager {
	fm := newFileManager(name, newMem(), true, util.DefaultOptions())
	if err := fm.writeHeader(); err != nil {
		// memfile writes cannot fail
		panic(err)
	}
	return fm
}

// OpenFile opens the page file described by opts.
func OpenFile(opts util.Options) (*FileManager, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.InMemory {
		fm := NewMemFileManager(opts.Path)
		fm.log = opts.Logger.Named("file").With(zap.String("file", opts.Path))
		return fm, nil
	}

	store, err := openDisk(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	fm := newFileManager(opts.Path, store, false, opts)
	if err := fm.load(); err != nil {
		store.Close()
		return nil, fmt.Errorf("load file %s: %w", opts.Path, err)
	}
	fm.log.Debug("opened page file", zap.Uint64("pages", fm.pageCount), zap.Int("deleted", fm.deleted.Cardinality()))

	return fm, nil
}

func newFileManager(name string, store backend, inMemory bool, opts util.Options) *FileManager {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &FileManager{
		name:       name,
		store:      store,
		inMemory:   inMemory,
		deleted:    mapset.NewThreadUnsafeSet[util.PageID](),
		open:       true,
		syncWrites: opts.SyncWrites,
		log:        log.Named("file").With(zap.String("file", name)),
	}
}

// load reads the header of an existing file, or initializes an empty one,
// then rebuilds the deleted set from the page flags.
func (fm *FileManager) load() error {
	size, err := fm.store.Size()
	if err != nil {
		return err
	}
	if size == 0 {
		return fm.writeHeader()
	}

	hdr := make([]byte, 16)
	if _, err := fm.store.ReadAt(hdr, 0); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != fileMagic || binary.LittleEndian.Uint16(hdr[4:6]) != fileVersion {
		return util.ErrBadFileHeader
	}
	fm.pageCount = binary.LittleEndian.Uint64(hdr[8:16])
	if size < offsetOf(util.PageID(fm.pageCount)) {
		return fmt.Errorf("file holds %d bytes for %d pages: %w", size, fm.pageCount, util.ErrBadFileHeader)
	}

	flags := make([]byte, page.HEADER_SIZE)
	for n := uint64(0); n < fm.pageCount; n++ {
		id := util.PageID(n)
		if _, err := fm.store.ReadAt(flags, offsetOf(id)); err != nil {
			return fmt.Errorf("scan page %d: %w", id, err)
		}
		if binary.LittleEndian.Uint16(flags[12:14])&page.FlagUsed == 0 {
			fm.deleted.Add(id)
		}
	}
	return nil
}

func (fm *FileManager) writeHeader() error {
	hdr := make([]byte, util.PageSize)
	binary.LittleEndian.PutUint32(hdr[0:4], fileMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], fileVersion)
	binary.LittleEndian.PutUint64(hdr[8:16], fm.pageCount)
	if _, err := fm.store.WriteAt(hdr, 0); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func offsetOf(pageId util.PageID) int64 {
	return (int64(pageId) + 1) * int64(util.PageSize)
}

func (fm *FileManager) checkPage(pageId util.PageID) error {
	if !fm.open {
		return util.ErrFileClosed
	}
	if uint64(pageId) >= fm.pageCount || fm.deleted.Contains(pageId) {
		return fmt.Errorf("%s page %d: %w", fm.name, pageId, util.ErrInvalidPage)
	}
	return nil
}

/* READ FILE */
func (fm *FileManager) ReadPage(pageId util.PageID) (*page.Page, error) {
	if err := fm.checkPage(pageId); err != nil {
		return nil, err
	}

	buf := make([]byte, util.PageSize)
	if n, err := fm.store.ReadAt(buf, offsetOf(pageId)); n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read page %d: %w", pageId, err)
	}

	p, err := page.Deserialize(buf)
	if err != nil {
		return nil, fmt.Errorf("deserialize page %d: %w", pageId, err)
	}
	if p.PageNumber() != pageId {
		return nil, fmt.Errorf("page %d stored as %d: %w", pageId, p.PageNumber(), util.ErrInvalidPage)
	}

	return p, nil
}

/* WRITE FILE */
func (fm *FileManager) WritePage(p *page.Page) error {
	if p == nil {
		return util.ErrInvalidPage
	}
	if err := fm.checkPage(p.PageNumber()); err != nil {
		return err
	}

	out := *p
	out.Header.SetUsedFlag()
	return fm.writeAt(&out)
}

func (fm *FileManager) writeAt(p *page.Page) error {
	if _, err := fm.store.WriteAt(p.Serialize(), offsetOf(p.PageNumber())); err != nil {
		return fmt.Errorf("write page %d: %w", p.PageNumber(), err)
	}
	if fm.syncWrites {
		if err := fm.store.Sync(); err != nil {
			return fmt.Errorf("sync file: %w", err)
		}
	}
	return nil
}

// AllocatePage appends a zeroed page and returns it with its assigned number.
func (fm *FileManager) AllocatePage() (*page.Page, error) {
	if !fm.open {
		return nil, util.ErrFileClosed
	}

	p := page.New(util.PageID(fm.pageCount))
	if err := fm.writeAt(&p); err != nil {
		return nil, err
	}
	fm.pageCount++
	if err := fm.writeHeader(); err != nil {
		fm.pageCount--
		return nil, err
	}
	fm.log.Debug("allocated page", zap.Uint64("page", uint64(p.PageNumber())))

	return &p, nil
}

// DeletePage tombstones the page; later reads and writes of it fail with ErrInvalidPage.
func (fm *FileManager) DeletePage(pageId util.PageID) error {
	if err := fm.checkPage(pageId); err != nil {
		return err
	}

	tomb := page.New(pageId)
	tomb.Header.ClearUsedFlag()
	if err := fm.writeAt(&tomb); err != nil {
		return err
	}
	fm.deleted.Add(pageId)
	fm.log.Debug("deleted page", zap.Uint64("page", uint64(pageId)))

	return nil
}

// NumPages returns the number of live pages.
func (fm *FileManager) NumPages() int {
	return int(fm.pageCount) - fm.deleted.Cardinality()
}

func (fm *FileManager) IsOpen() bool {
	return fm != nil && fm.open
}

func (fm *FileManager) Filename() string {
	return fm.name
}

/**
* CLOSE FUNCTION
**/
func (fm *FileManager) Close() error {
	if fm == nil || !fm.open {
		return nil // Idempotent
	}
	fm.open = false

	var err error
	if e := fm.store.Sync(); e != nil {
		err = errors.Join(err, fmt.Errorf("sync file: %w", e))
	}
	if e := fm.store.Close(); e != nil {
		err = errors.Join(err, fmt.Errorf("close file: %w", e))
	}
	return err
}
