package buffer

import (
	lru "github.com/hashicorp/golang-lru"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// LRUReplacer picks a free frame if there is one, otherwise the least
// recently touched frame that is unpinned.
type LRUReplacer struct {
	frames *frameTable
	recent *lru.Cache // FrameID -> struct{}, oldest first
}

func NewLRUReplacer(frames *frameTable) *LRUReplacer {
	c, err := lru.New(frames.size())
	if err != nil {
		panic(err)
	}
	return &LRUReplacer{frames: frames, recent: c}
}

func (this *LRUReplacer) Victim() (util.FrameID, error) {
	for i := 0; i < this.frames.size(); i++ {
		if !this.frames.get(util.FrameID(i)).valid {
			return util.FrameID(i), nil
		}
	}

	for _, k := range this.recent.Keys() {
		frameIdx := k.(util.FrameID)
		desc := this.frames.get(frameIdx)
		// keys are never removed here; a frame whose eviction fails is offered again
		if desc.valid && desc.pinCount == 0 {
			return frameIdx, nil
		}
	}

	return util.InvalidFrame, util.ErrBufferExceeded
}

func (this *LRUReplacer) Touch(frameIdx util.FrameID) {
	this.frames.setRefBit(frameIdx)
	this.recent.Add(frameIdx, struct{}{})
}

func (this *LRUReplacer) Hand() util.FrameID {
	return util.InvalidFrame
}
