package file

import (
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Filer is the page store a buffer pool reads from and writes back to.
// Implementations are used as map keys by the buffer pool, so they must be
// comparable (pointer receivers).
type Filer interface {
	ReadPage(pageId util.PageID) (*page.Page, error)
	WritePage(p *page.Page) error
	AllocatePage() (*page.Page, error)
	DeletePage(pageId util.PageID) error
	IsOpen() bool
	Filename() string
}
