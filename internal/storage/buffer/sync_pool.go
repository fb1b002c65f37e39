package buffer

import (
	"github.com/sasha-s/go-deadlock"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// SyncPool serializes every call into a BufferPool behind one lock, so the
// clock sweep, the frame table and the page index always change together.
// Pins still decide who may touch a page's bytes.
type SyncPool struct {
	mu   deadlock.Mutex
	pool *BufferPool
}

func NewSyncPool(pool *BufferPool) *SyncPool {
	return &SyncPool{pool: pool}
}

func (this *SyncPool) ReadPage(f file.Filer, pageNo util.PageID) (Handle, error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.pool.ReadPage(f, pageNo)
}

func (this *SyncPool) UnpinPage(f file.Filer, pageNo util.PageID, dirty bool) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.pool.UnpinPage(f, pageNo, dirty)
}

func (this *SyncPool) AllocPage(f file.Filer) (util.PageID, Handle, error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.pool.AllocPage(f)
}

func (this *SyncPool) DisposePage(f file.Filer, pageNo util.PageID) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.pool.DisposePage(f, pageNo)
}

func (this *SyncPool) FlushFile(f file.Filer) error {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.pool.FlushFile(f)
}

// Page resolves a handle under the pool lock.
func (this *SyncPool) Page(h Handle) (*page.Page, error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	return h.Page()
}

func (this *SyncPool) Introspect() Report {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.pool.Introspect()
}

func (this *SyncPool) Close() {
	this.mu.Lock()
	defer this.mu.Unlock()
	this.pool.Close()
}
