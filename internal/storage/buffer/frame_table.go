package buffer

import (
	"fmt"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// pageKey identifies a page across files.
type pageKey struct {
	file   file.Filer
	pageNo util.PageID
}

// frameDesc is the metadata bound to one frame of the pool.
type frameDesc struct {
	file     file.Filer // nil when the frame is free
	pageNo   util.PageID
	valid    bool
	dirty    bool
	refBit   bool
	pinCount int32
}

func (this *frameDesc) key() pageKey {
	return pageKey{file: this.file, pageNo: this.pageNo}
}

// frameTable holds the per-frame bookkeeping. No eviction logic lives here.
type frameTable struct {
	descs []frameDesc
}

func newFrameTable(size int) *frameTable {
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	return &frameTable{descs: make([]frameDesc, size)}
}

func (this *frameTable) size() int {
	return len(this.descs)
}

func (this *frameTable) get(frameIdx util.FrameID) *frameDesc {
	if frameIdx < 0 || int(frameIdx) >= len(this.descs) {
		panic(fmt.Errorf("[pool] [frameTable] frame %d: %w", frameIdx, util.ErrOutBoundOfFrame))
	}
	return &this.descs[frameIdx]
}

// markFree clears every field of the frame.
func (this *frameTable) markFree(frameIdx util.FrameID) {
	*this.get(frameIdx) = frameDesc{}
}

// setOwner binds a freshly loaded page to the frame: valid, pinned once, clean, referenced.
func (this *frameTable) setOwner(frameIdx util.FrameID, key pageKey) {
	*this.get(frameIdx) = frameDesc{
		file:     key.file,
		pageNo:   key.pageNo,
		valid:    true,
		dirty:    false,
		refBit:   true,
		pinCount: 1,
	}
}

func (this *frameTable) incrementPin(frameIdx util.FrameID) {
	this.get(frameIdx).pinCount++
}

func (this *frameTable) decrementPin(frameIdx util.FrameID) error {
	d := this.get(frameIdx)
	if d.pinCount <= 0 {
		return util.ErrPageNotPinned
	}
	d.pinCount--
	return nil
}

func (this *frameTable) markDirty(frameIdx util.FrameID) {
	this.get(frameIdx).dirty = true
}

func (this *frameTable) clearRefBit(frameIdx util.FrameID) {
	this.get(frameIdx).refBit = false
}

func (this *frameTable) setRefBit(frameIdx util.FrameID) {
	this.get(frameIdx).refBit = true
}
