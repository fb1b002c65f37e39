package buffer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// BufferPool caches pages of any number of files in a fixed set of frames.
// It is not safe for concurrent use; see SyncPool.
type BufferPool struct {
	frames   []page.Page // Holds page.Page (4KB), index is FrameID
	table    *frameTable
	index    *pageIndex
	replacer Replacer
	policy   util.ReplacementPolicy
	stats    Stats
	closed   bool
	log      *zap.Logger
}

// NewBufferPool creates a clock-replaced pool of size frames. It panics if size is not positive.
func NewBufferPool(size int) *BufferPool {
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}

	opts := util.DefaultOptions()
	opts.BufferPoolSize = size
	bp, err := NewBufferPoolFromOptions(opts)
	if err != nil {
		panic(err)
	}
	return bp
}

func NewBufferPoolFromOptions(opts util.Options) (*BufferPool, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	table := newFrameTable(opts.BufferPoolSize)
	replacer, err := newReplacer(opts.Policy, table)
	if err != nil {
		return nil, err
	}

	return &BufferPool{
		frames:   make([]page.Page, opts.BufferPoolSize),
		table:    table,
		index:    newPageIndex(opts.BufferPoolSize),
		replacer: replacer,
		policy:   opts.Policy,
		log:      opts.Logger.Named("pool"),
	}, nil
}

func (this *BufferPool) Size() int {
	return len(this.frames)
}

// ReadPage pins the page, loading it from f if it is not buffered.
func (this *BufferPool) ReadPage(f file.Filer, pageNo util.PageID) (Handle, error) {
	if err := this.check(f); err != nil {
		return Handle{}, err
	}

	key := pageKey{file: f, pageNo: pageNo}
	if frameIdx, ok := this.index.lookup(key); ok {
		this.replacer.Touch(frameIdx)
		this.table.incrementPin(frameIdx)
		this.stats.Hits++
		return this.handle(frameIdx, key), nil
	}
	this.stats.Misses++

	frameIdx, err := this.allocBuf()
	if err != nil {
		return Handle{}, fmt.Errorf("[pool] [ReadPage] %s page %d: %w", f.Filename(), pageNo, err)
	}

	p, err := f.ReadPage(pageNo)
	if err != nil {
		return Handle{}, fmt.Errorf("[pool] [ReadPage] %s page %d: %w", f.Filename(), pageNo, err)
	}
	this.install(frameIdx, key, p)
	this.log.Debug("loaded page", zap.String("file", f.Filename()), zap.Uint64("page", uint64(pageNo)), zap.Int("frame", int(frameIdx)))

	return this.handle(frameIdx, key), nil
}

// UnpinPage drops one pin. Unpinning a page that is not buffered is a no-op.
func (this *BufferPool) UnpinPage(f file.Filer, pageNo util.PageID, dirty bool) error {
	if err := this.check(f); err != nil {
		return err
	}

	frameIdx, ok := this.index.lookup(pageKey{file: f, pageNo: pageNo})
	if !ok {
		return nil
	}

	if err := this.table.decrementPin(frameIdx); err != nil {
		return fmt.Errorf("[pool] [UnpinPage] %s page %d frame %d: %w", f.Filename(), pageNo, frameIdx, err)
	}
	if dirty {
		this.table.markDirty(frameIdx)
	}
	return nil
}

// AllocPage allocates a new page in f and pins it in the pool.
func (this *BufferPool) AllocPage(f file.Filer) (util.PageID, Handle, error) {
	if err := this.check(f); err != nil {
		return 0, Handle{}, err
	}

	p, err := f.AllocatePage()
	if err != nil {
		return 0, Handle{}, fmt.Errorf("[pool] [AllocPage] %s: %w", f.Filename(), err)
	}

	frameIdx, err := this.allocBuf()
	if err != nil {
		return 0, Handle{}, fmt.Errorf("[pool] [AllocPage] %s page %d: %w", f.Filename(), p.PageNumber(), err)
	}

	key := pageKey{file: f, pageNo: p.PageNumber()}
	this.install(frameIdx, key, p)

	return key.pageNo, this.handle(frameIdx, key), nil
}

// DisposePage drops the page from the pool, without writing it back, and deletes it from f.
func (this *BufferPool) DisposePage(f file.Filer, pageNo util.PageID) error {
	if err := this.check(f); err != nil {
		return err
	}

	key := pageKey{file: f, pageNo: pageNo}
	frameIdx, buffered := this.index.lookup(key)
	if buffered && this.table.get(frameIdx).pinCount > 0 {
		return fmt.Errorf("[pool] [DisposePage] %s page %d frame %d: %w", f.Filename(), pageNo, frameIdx, util.ErrPagePinned)
	}

	// a failed delete keeps the buffered copy
	if err := f.DeletePage(pageNo); err != nil {
		return fmt.Errorf("[pool] [DisposePage] %s page %d: %w", f.Filename(), pageNo, err)
	}

	if buffered {
		this.clearFrame(frameIdx)
		if err := this.index.remove(key); err != nil && !errors.Is(err, util.ErrPageNotFound) {
			return err
		}
	}
	return nil
}

// FlushFile writes back and drops every frame holding a page of f.
// All frames are checked first: if any is pinned or inconsistent, nothing is
// flushed and every violation is returned.
// Frames are then flushed in frame order. A write failure stops the flush:
// frames before the failing one are already written and dropped, the failing
// frame and the rest stay buffered and dirty, and a later FlushFile retries them.
func (this *BufferPool) FlushFile(f file.Filer) error {
	if err := this.check(f); err != nil {
		return err
	}

	var owned []util.FrameID
	var violations []error
	for i, n := 0, this.table.size(); i < n; i++ {
		frameIdx := util.FrameID(i)
		desc := this.table.get(frameIdx)
		if desc.file != f {
			continue
		}
		switch {
		case !desc.valid:
			violations = append(violations, fmt.Errorf("[pool] [FlushFile] frame %d dirty=%v valid=%v refbit=%v: %w",
				frameIdx, desc.dirty, desc.valid, desc.refBit, util.ErrBadBuffer))
		case desc.pinCount > 0:
			violations = append(violations, fmt.Errorf("[pool] [FlushFile] %s page %d frame %d: %w",
				f.Filename(), desc.pageNo, frameIdx, util.ErrPagePinned))
		default:
			owned = append(owned, frameIdx)
		}
	}
	if len(violations) > 0 {
		return errors.Join(violations...)
	}

	for _, frameIdx := range owned {
		if err := this.writeBack(frameIdx); err != nil {
			return fmt.Errorf("[pool] [FlushFile] %w", err)
		}
		if err := this.index.remove(this.table.get(frameIdx).key()); err != nil && !errors.Is(err, util.ErrPageNotFound) {
			return err
		}
		this.clearFrame(frameIdx)
	}
	this.log.Debug("flushed file", zap.String("file", f.Filename()), zap.Int("frames", len(owned)))

	return nil
}

// Close writes back every dirty frame whose file is still open and releases
// the pool. Failures are logged and otherwise ignored. Close is idempotent.
func (this *BufferPool) Close() {
	if this.closed {
		return
	}

	for i, n := 0, this.table.size(); i < n; i++ {
		frameIdx := util.FrameID(i)
		desc := this.table.get(frameIdx)
		if desc.valid && desc.dirty && desc.file != nil && desc.file.IsOpen() {
			if err := this.writeBack(frameIdx); err != nil {
				this.log.Warn("write back on close failed", zap.Int("frame", i), zap.Error(err))
			}
		}
		this.table.markFree(frameIdx)
	}

	this.frames = nil
	this.index = newPageIndex(0)
	this.closed = true
}

// ===================== HELPER FUNCTION =====================
func (this *BufferPool) check(f file.Filer) error {
	if this.closed {
		return util.ErrPoolClosed
	}
	if f == nil {
		return util.ErrFileManagerNil
	}
	return nil
}

// allocBuf asks the replacer for a frame and evicts its current page, if any.
func (this *BufferPool) allocBuf() (util.FrameID, error) {
	frameIdx, err := this.replacer.Victim()
	if err != nil {
		return util.InvalidFrame, err
	}

	if this.table.get(frameIdx).valid {
		if err := this.evict(frameIdx); err != nil {
			return util.InvalidFrame, err
		}
	}
	return frameIdx, nil
}

func (this *BufferPool) evict(frameIdx util.FrameID) error {
	desc := this.table.get(frameIdx)
	if desc.pinCount > 0 {
		panic(fmt.Sprintf("[pool] [evict] frame %d is pinned (%d)", frameIdx, desc.pinCount))
	}

	// a failed write back leaves the frame dirty and buffered
	if err := this.writeBack(frameIdx); err != nil {
		return fmt.Errorf("[pool] [evict] %w", err)
	}

	key := desc.key()
	if err := this.index.remove(key); err != nil && !errors.Is(err, util.ErrPageNotFound) {
		return err
	}
	this.clearFrame(frameIdx)
	this.stats.Evictions++
	this.log.Debug("evicted page", zap.String("file", key.file.Filename()), zap.Uint64("page", uint64(key.pageNo)), zap.Int("frame", int(frameIdx)))

	return nil
}

// writeBack writes the frame to its file if it is dirty.
func (this *BufferPool) writeBack(frameIdx util.FrameID) error {
	desc := this.table.get(frameIdx)
	if !desc.dirty {
		return nil
	}
	if err := desc.file.WritePage(&this.frames[frameIdx]); err != nil {
		return fmt.Errorf("flush %s page %d frame %d: %w", desc.file.Filename(), desc.pageNo, frameIdx, err)
	}
	desc.dirty = false
	this.stats.WriteBacks++
	return nil
}

func (this *BufferPool) install(frameIdx util.FrameID, key pageKey, p *page.Page) {
	this.frames[frameIdx] = *p
	this.table.setOwner(frameIdx, key)
	this.index.insert(key, frameIdx)
	this.replacer.Touch(frameIdx)
}

func (this *BufferPool) clearFrame(frameIdx util.FrameID) {
	this.table.markFree(frameIdx)
	this.frames[frameIdx] = page.Page{}
}

func (this *BufferPool) handle(frameIdx util.FrameID, key pageKey) Handle {
	return Handle{pool: this, frame: frameIdx, key: key}
}
