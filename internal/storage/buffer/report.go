package buffer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Stats counts pool activity since construction.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	WriteBacks uint64
}

func (this Stats) HitRate() float64 {
	total := this.Hits + this.Misses
	if total == 0 {
		return 0
	}
	return float64(this.Hits) / float64(total)
}

type FrameState struct {
	Frame    util.FrameID
	File     string
	PageNo   util.PageID
	Valid    bool
	Dirty    bool
	RefBit   bool
	PinCount int32
}

// Report is a snapshot of every frame of a pool.
type Report struct {
	Policy       util.ReplacementPolicy
	Hand         util.FrameID
	Frames       []FrameState
	ValidFrames  int
	PinnedFrames int
	DirtyFrames  int
	IndexEntries int
	Stats
}

// Introspect returns the state of every frame. It does not modify the pool.
func (this *BufferPool) Introspect() Report {
	r := Report{
		Policy: this.policy,
		Hand:   util.InvalidFrame,
		Stats:  this.stats,
	}
	if this.closed {
		return r
	}

	r.Hand = this.replacer.Hand()
	r.IndexEntries = this.index.len()
	r.Frames = make([]FrameState, 0, this.table.size())
	for i, n := 0, this.table.size(); i < n; i++ {
		desc := this.table.get(util.FrameID(i))
		fs := FrameState{
			Frame:    util.FrameID(i),
			PageNo:   desc.pageNo,
			Valid:    desc.valid,
			Dirty:    desc.dirty,
			RefBit:   desc.refBit,
			PinCount: desc.pinCount,
		}
		if desc.file != nil {
			fs.File = desc.file.Filename()
		}
		if desc.valid {
			r.ValidFrames++
		}
		if desc.pinCount > 0 {
			r.PinnedFrames++
		}
		if desc.dirty {
			r.DirtyFrames++
		}
		r.Frames = append(r.Frames, fs)
	}
	return r
}

func (this Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Policy:%s Frames:%d (%s) Hand:%d\n",
		this.Policy, len(this.Frames), humanize.IBytes(uint64(len(this.Frames))*util.PageSize), this.Hand)
	for _, fs := range this.Frames {
		fmt.Fprintf(&sb, "FrameNo:%d file:%s pageNo:%d valid:%v pinCnt:%d dirty:%v refbit:%v\n",
			fs.Frame, fs.File, fs.PageNo, fs.Valid, fs.PinCount, fs.Dirty, fs.RefBit)
	}
	fmt.Fprintf(&sb, "Total Number of Valid Frames:%d\n", this.ValidFrames)
	fmt.Fprintf(&sb, "Hits:%s Misses:%s HitRate:%.2f Evictions:%s WriteBacks:%s\n",
		humanize.Comma(int64(this.Hits)), humanize.Comma(int64(this.Misses)), this.HitRate(),
		humanize.Comma(int64(this.Evictions)), humanize.Comma(int64(this.WriteBacks)))
	return sb.String()
}
