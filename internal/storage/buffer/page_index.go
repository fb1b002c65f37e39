package buffer

import (
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// pageIndex maps (file, page number) to the frame holding the page.
type pageIndex struct {
	entries map[pageKey]util.FrameID
}

func newPageIndex(size int) *pageIndex {
	return &pageIndex{entries: make(map[pageKey]util.FrameID, size)}
}

func (this *pageIndex) lookup(key pageKey) (util.FrameID, bool) {
	frameIdx, ok := this.entries[key]
	return frameIdx, ok
}

// insert overwrites an existing entry for key.
func (this *pageIndex) insert(key pageKey, frameIdx util.FrameID) {
	this.entries[key] = frameIdx
}

// remove returns ErrPageNotFound when key is absent; callers treat it as non-fatal.
func (this *pageIndex) remove(key pageKey) error {
	if _, ok := this.entries[key]; !ok {
		return util.ErrPageNotFound
	}
	delete(this.entries, key)
	return nil
}

func (this *pageIndex) len() int {
	return len(this.entries)
}
