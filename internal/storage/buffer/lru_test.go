package buffer

import (
	"testing"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUVictim(t *testing.T) {
	fm := file.NewMemFileManager("lru")
	ft := newFrameTable(3)
	lr := NewLRUReplacer(ft)
	assert.Equal(t, util.InvalidFrame, lr.Hand())

	for i := 0; i < 3; i++ {
		victim, err := lr.Victim()
		require.NoError(t, err)
		assert.Equal(t, util.FrameID(i), victim, "free frames first")
		ft.setOwner(victim, pageKey{file: fm, pageNo: util.PageID(i)})
		lr.Touch(victim)
	}

	_, err := lr.Victim()
	assert.ErrorIs(t, err, util.ErrBufferExceeded, "all pinned")

	unpinAll(t, ft)
	lr.Touch(0) // 1 is now the least recently used

	victim, err := lr.Victim()
	require.NoError(t, err)
	assert.Equal(t, util.FrameID(1), victim)

	ft.setOwner(1, pageKey{file: fm, pageNo: 7})
	lr.Touch(1)
	victim, err = lr.Victim()
	require.NoError(t, err)
	assert.Equal(t, util.FrameID(2), victim, "pinned frame 1 skipped")

	ft.markFree(0)
	victim, err = lr.Victim()
	require.NoError(t, err)
	assert.Equal(t, util.FrameID(0), victim, "freed frame preferred")
}
