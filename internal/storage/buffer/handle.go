package buffer

import (
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Handle refers to a page pinned in a frame. It stays usable while the
// holder keeps its pin; once the frame is reused Page reports ErrStaleHandle.
type Handle struct {
	pool  *BufferPool
	frame util.FrameID
	key   pageKey
}

func (this Handle) PageNo() util.PageID {
	return this.key.pageNo
}

func (this Handle) File() file.Filer {
	return this.key.file
}

func (this Handle) Frame() util.FrameID {
	return this.frame
}

// Valid reports whether the frame still holds the page.
func (this Handle) Valid() bool {
	if this.pool == nil || this.pool.closed {
		return false
	}
	desc := this.pool.table.get(this.frame)
	return desc.valid && desc.key() == this.key
}

// Page returns the buffered content. Writes through it must be followed by
// an UnpinPage with dirty set.
func (this Handle) Page() (*page.Page, error) {
	if !this.Valid() {
		return nil, util.ErrStaleHandle
	}
	return &this.pool.frames[this.frame], nil
}
