package page

import (
	"encoding/binary"
	"fmt"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/spaolacci/murmur3"
)

const (
	HEADER_SIZE = 16 // Size of PageHeader struct: PageID(8) + Checksum(4) + Flags(2) + padding(2)
	DATA_SIZE   = util.PageSize - HEADER_SIZE
)

const (
	// FlagUsed is set on every allocated page and cleared when the page is deleted.
	FlagUsed uint16 = 1 << iota
)

// Page is block that read/write from disk
type Page struct {
	Header PageHeader
	Data   [DATA_SIZE]byte
}

type PageHeader struct {
	PageID   util.PageID // 8 bytes
	Checksum uint32      // 4 bytes
	Flags    uint16      // 2 bytes
	_        uint16      //2 bytes (padding)
}

// New returns a zeroed, used page carrying the given number.
func New(pageID util.PageID) Page {
	return Page{Header: PageHeader{PageID: pageID, Flags: FlagUsed}}
}

func (p *Page) PageNumber() util.PageID {
	return p.Header.PageID
}

// Copy writes data into the page body starting at offset, truncating at the page end.
func (p *Page) Copy(offset int, data []byte) int {
	if offset < 0 || offset >= len(p.Data) {
		return 0
	}
	return copy(p.Data[offset:], data)
}

func (h *PageHeader) IsUsed() bool {
	return h.Flags&FlagUsed != 0
}

func (h *PageHeader) SetUsedFlag() {
	h.Flags |= FlagUsed
}

func (h *PageHeader) ClearUsedFlag() {
	h.Flags &^= FlagUsed
}

// checksum is murmur3 x86_32 with seed 0. murmur3.Sum32 trips checkptr under -race,
// the streaming digest does not.
func checksum(buf []byte) uint32 {
	h := murmur3.New32()
	h.Write(buf)
	return h.Sum32()
}

// Serialize packs the page into a byte slice for writing
func (p *Page) Serialize() []byte {
	buf := make([]byte, util.PageSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.Header.PageID))
	binary.LittleEndian.PutUint16(buf[12:14], p.Header.Flags)
	copy(buf[HEADER_SIZE:], p.Data[:])

	// checksum covers everything but its own field, which is still zero here
	binary.LittleEndian.PutUint32(buf[8:12], checksum(buf))

	return buf
}

// Deserialize unpacks from bytes, validates checksum
func Deserialize(data []byte) (*Page, error) {
	if len(data) != util.PageSize {
		return nil, fmt.Errorf("[page] [Deserialize] got %d bytes: %w", len(data), util.ErrInvalidPageSize)
	}

	stored := binary.LittleEndian.Uint32(data[8:12])
	buf := make([]byte, util.PageSize)
	copy(buf, data)
	binary.LittleEndian.PutUint32(buf[8:12], 0)
	if sum := checksum(buf); sum != stored {
		return nil, fmt.Errorf("[page] [Deserialize] stored %#x computed %#x: %w", stored, sum, util.ErrChecksumMismatch)
	}

	p := &Page{
		Header: PageHeader{
			PageID:   util.PageID(binary.LittleEndian.Uint64(data[0:8])),
			Checksum: stored,
			Flags:    binary.LittleEndian.Uint16(data[12:14]),
		},
	}
	copy(p.Data[:], data[HEADER_SIZE:])

	return p, nil
}
