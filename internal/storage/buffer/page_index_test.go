package buffer

import (
	"testing"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestPageIndex(t *testing.T) {
	a := file.NewMemFileManager("a")
	b := file.NewMemFileManager("b")
	pi := newPageIndex(4)

	_, ok := pi.lookup(pageKey{file: a, pageNo: 0})
	assert.False(t, ok, "empty index misses")

	pi.insert(pageKey{file: a, pageNo: 0}, 3)
	pi.insert(pageKey{file: b, pageNo: 0}, 1)

	frameIdx, ok := pi.lookup(pageKey{file: a, pageNo: 0})
	assert.True(t, ok)
	assert.Equal(t, util.FrameID(3), frameIdx)

	frameIdx, ok = pi.lookup(pageKey{file: b, pageNo: 0})
	assert.True(t, ok, "same page number in another file is a separate key")
	assert.Equal(t, util.FrameID(1), frameIdx)

	t.Run("InsertOverwrites", func(t *testing.T) {
		pi.insert(pageKey{file: a, pageNo: 0}, 2)
		frameIdx, ok := pi.lookup(pageKey{file: a, pageNo: 0})
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(2), frameIdx)
		assert.Equal(t, 2, pi.len())
	})

	t.Run("Remove", func(t *testing.T) {
		assert.NoError(t, pi.remove(pageKey{file: a, pageNo: 0}))
		_, ok := pi.lookup(pageKey{file: a, pageNo: 0})
		assert.False(t, ok)
		assert.ErrorIs(t, pi.remove(pageKey{file: a, pageNo: 0}), util.ErrPageNotFound, "absent key")
		assert.Equal(t, 1, pi.len())
	})
}
