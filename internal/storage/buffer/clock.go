package buffer

import (
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// ClockReplacer implements second-chance replacement over the frame table.
type ClockReplacer struct {
	frames *frameTable
	hand   util.FrameID
}

// NewClockReplacer places the hand on the last frame so the first sweep starts at frame 0.
func NewClockReplacer(frames *frameTable) *ClockReplacer {
	return &ClockReplacer{
		frames: frames,
		hand:   util.FrameID(frames.size() - 1),
	}
}

func (this *ClockReplacer) advance() {
	this.hand = (this.hand + 1) % util.FrameID(this.frames.size())
}

// Victim sweeps the hand until it reaches a free frame or an unpinned frame
// whose reference bit is already clear. Every other frame it passes loses its
// reference bit. A full revolution without seeing any unpinned frame fails.
func (this *ClockReplacer) Victim() (util.FrameID, error) {
	start := this.hand
	foundUnpinned := false

	for {
		this.advance()

		desc := this.frames.get(this.hand)
		if !desc.valid {
			return this.hand, nil
		}
		if desc.pinCount == 0 {
			foundUnpinned = true
			if !desc.refBit {
				return this.hand, nil
			}
		}
		this.frames.clearRefBit(this.hand)

		if this.hand == start {
			if !foundUnpinned {
				return util.InvalidFrame, util.ErrBufferExceeded
			}
			foundUnpinned = false
		}
	}
}

func (this *ClockReplacer) Touch(frameIdx util.FrameID) {
	this.frames.setRefBit(frameIdx)
}

func (this *ClockReplacer) Hand() util.FrameID {
	return this.hand
}
