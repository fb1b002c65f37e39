package util

import "errors"

var (
	ErrInvalidPage      = errors.New("invalid page")
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrBadFileHeader    = errors.New("bad file header")
	ErrFileClosed       = errors.New("file is closed")
	ErrFileManagerNil   = errors.New("file manager is nil")
	ErrPageNotFound     = errors.New("page not found in buffer")
	ErrPageNotPinned    = errors.New("page is not pinned")
	ErrPagePinned       = errors.New("page is pinned")
	ErrBadBuffer        = errors.New("bad buffer")
	ErrBufferExceeded   = errors.New("buffer exceeded")
	ErrStaleHandle      = errors.New("handle no longer refers to a buffered page")
	ErrInvalidPoolSize  = errors.New("invalid pool size")
	ErrOutBoundOfFrame  = errors.New("frame idx out of bound")
	ErrUnknownPolicy    = errors.New("unknown replacement policy")
	ErrPoolClosed       = errors.New("buffer pool is closed")
)
