package buffer

import (
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Replacer defines the contract for page replacement policies.
type Replacer interface {
	// Victim returns a frame that is either free or holds an unpinned page.
	// It does not evict: the pool writes back and clears the frame.
	// Returns ErrBufferExceeded if every frame is pinned.
	Victim() (util.FrameID, error)
	// Touch records that the frame was referenced by a pin.
	Touch(frameIdx util.FrameID)
	// Hand returns the replacer's cursor, or InvalidFrame if it keeps none.
	Hand() util.FrameID
}

func newReplacer(policy util.ReplacementPolicy, frames *frameTable) (Replacer, error) {
	switch policy {
	case util.PolicyClock, "":
		return NewClockReplacer(frames), nil
	case util.PolicyLRU:
		return NewLRUReplacer(frames), nil
	default:
		return nil, util.ErrUnknownPolicy
	}
}
