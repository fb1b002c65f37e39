package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/buffer"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func main() {
	opts := util.DefaultOptions()
	var (
		dir     = flag.String("dir", os.TempDir(), "directory holding the page file")
		name    = flag.String("file", "bufmgr.db", "page file name")
		pages   = flag.Int("pages", 32, "pages to allocate")
		policy  = flag.String("policy", string(util.PolicyClock), "replacement policy: clock or lru")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.IntVar(&opts.BufferPoolSize, "frames", 8, "buffer pool frames")
	flag.BoolVar(&opts.InMemory, "mem", false, "keep the page file in memory")
	flag.BoolVar(&opts.SyncWrites, "sync", false, "fsync after every page write")
	flag.Parse()

	opts.Path = *dir
	opts.Policy = util.ReplacementPolicy(*policy)
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		opts.Logger = logger
	}
	defer opts.Logger.Sync()

	if err := run(opts, *name, *pages); err != nil {
		opts.Logger.Error("workload failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts util.Options, name string, pages int) error {
	catalog := file.NewCatalog(opts)
	defer catalog.CloseAll()

	fm, err := catalog.Open(name)
	if err != nil {
		return err
	}

	bp, err := buffer.NewBufferPoolFromOptions(opts)
	if err != nil {
		return err
	}
	defer bp.Close()

	written := make([]util.PageID, 0, pages)
	for i := 0; i < pages; i++ {
		pageNo, h, err := bp.AllocPage(fm)
		if err != nil {
			return err
		}
		p, err := h.Page()
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(p.Data[:8], uint64(pageNo)*31+7)
		if err := bp.UnpinPage(fm, pageNo, true); err != nil {
			return err
		}
		written = append(written, pageNo)
	}

	for _, pageNo := range written {
		h, err := bp.ReadPage(fm, pageNo)
		if err != nil {
			return err
		}
		p, err := h.Page()
		if err != nil {
			return err
		}
		if got, want := binary.LittleEndian.Uint64(p.Data[:8]), uint64(pageNo)*31+7; got != want {
			return fmt.Errorf("page %d: marker %d, want %d", pageNo, got, want)
		}
		if err := bp.UnpinPage(fm, pageNo, false); err != nil {
			return err
		}
	}

	fmt.Print(bp.Introspect())
	if err := bp.FlushFile(fm); err != nil {
		return err
	}
	fmt.Printf("verified %d pages, %d live pages in %s\n", len(written), fm.NumPages(), fm.Filename())
	return nil
}
