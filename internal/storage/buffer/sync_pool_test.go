package buffer

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncPoolConcurrentWorkers(t *testing.T) {
	const workers, pagesPerWorker = 4, 16

	sp := NewSyncPool(newTestPool(t, 8, util.PolicyClock))
	f := file.NewMemFileManager("shared")

	var wg sync.WaitGroup
	owned := make([][]util.PageID, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < pagesPerWorker; i++ {
				pageNo, h, err := sp.AllocPage(f)
				if !assert.NoError(t, err) {
					return
				}
				p, err := sp.Page(h)
				if !assert.NoError(t, err) {
					return
				}
				binary.LittleEndian.PutUint64(p.Data[:8], uint64(w))
				binary.LittleEndian.PutUint64(p.Data[8:16], uint64(pageNo))
				assert.NoError(t, sp.UnpinPage(f, pageNo, true))
				owned[w] = append(owned[w], pageNo)
			}
		}(w)
	}
	wg.Wait()

	for w, pages := range owned {
		require.Len(t, pages, pagesPerWorker)
		for _, pageNo := range pages {
			h, err := sp.ReadPage(f, pageNo)
			require.NoError(t, err)
			p, err := sp.Page(h)
			require.NoError(t, err)
			assert.Equal(t, uint64(w), binary.LittleEndian.Uint64(p.Data[:8]), "owner of page %d", pageNo)
			assert.Equal(t, uint64(pageNo), binary.LittleEndian.Uint64(p.Data[8:16]))
			require.NoError(t, sp.UnpinPage(f, pageNo, false))
		}
	}

	r := sp.Introspect()
	assert.Equal(t, 0, r.PinnedFrames)
	assert.Equal(t, uint64(workers*pagesPerWorker), r.Hits+r.Misses, "every read accounted")

	require.NoError(t, sp.FlushFile(f))
	assert.Equal(t, 0, sp.Introspect().ValidFrames)

	pageNo := owned[0][0]
	require.NoError(t, sp.DisposePage(f, pageNo))
	_, err := sp.ReadPage(f, pageNo)
	assert.ErrorIs(t, err, util.ErrInvalidPage)

	sp.Close()
	_, _, err = sp.AllocPage(f)
	assert.ErrorIs(t, err, util.ErrPoolClosed)
}
