package util

import (
	"go.uber.org/zap"
)

// PageID represents a page number inside one file
type PageID uint64

// FrameID addresses a slot of the buffer pool, dense in [0, poolSize)
type FrameID int

// InvalidFrame marks the absence of a frame
const InvalidFrame FrameID = -1

// PageSize represents the standard page size (4KB)
const PageSize = 4096

// ReplacementPolicy names the victim selection strategy of a buffer pool
type ReplacementPolicy string

const (
	PolicyClock ReplacementPolicy = "clock"
	PolicyLRU   ReplacementPolicy = "lru"
)

// Options represents buffer manager configuration options
type Options struct {
	Path           string
	BufferPoolSize int
	Policy         ReplacementPolicy
	InMemory       bool
	SyncWrites     bool
	Logger         *zap.Logger
}

// DefaultOptions returns default buffer manager options
func DefaultOptions() Options {
	return Options{
		BufferPoolSize: 1000, // 4MB default buffer pool
		Policy:         PolicyClock,
		InMemory:       false,
		SyncWrites:     false,
		Logger:         zap.NewNop(),
	}
}

// Validate checks the options and fills the zero-valued optional fields.
func (o *Options) Validate() error {
	if o.BufferPoolSize <= 0 {
		return ErrInvalidPoolSize
	}
	switch o.Policy {
	case "":
		o.Policy = PolicyClock
	case PolicyClock, PolicyLRU:
	default:
		return ErrUnknownPolicy
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return nil
}
