package minidb

import (
	"fmt"
)

// SplitMode decides what happens when a non-root leaf overflows.
type SplitMode int

const (
	// SplitFull propagates splits up the tree, promoting a new root when needed.
	SplitFull SplitMode = iota + 1
	// SplitLegacy only supports splitting the root leaf, any deeper split
	// fails with ErrSplitUnimplemented.
	SplitLegacy
)

func (m SplitMode) String() string {
	switch m {
	case SplitFull:
		return "full"
	case SplitLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("SplitMode(%d)", int(m))
	}
}

func ParseSplitMode(s string) (SplitMode, error) {
	switch s {
	case "", "full":
		return SplitFull, nil
	case "legacy":
		return SplitLegacy, nil
	default:
		return 0, fmt.Errorf("unknown split mode %q", s)
	}
}

const minInternalCells = 3

type options struct {
	maxPages  uint32
	splitMode SplitMode
	maxICells uint32
}

func defaultOptions() options {
	return options{
		maxPages:  DefaultMaxPages,
		splitMode: SplitFull,
		maxICells: InternalNodeMaxCells,
	}
}

type Option func(*options)

// WithMaxPages bounds the number of pages the database file can grow to.
func WithMaxPages(maxPages uint32) Option {
	return func(o *options) {
		if maxPages > 0 {
			o.maxPages = maxPages
		}
	}
}

func WithSplitMode(mode SplitMode) Option {
	return func(o *options) {
		if mode == SplitFull || mode == SplitLegacy {
			o.splitMode = mode
		}
	}
}

// WithMaxInternalCells lowers the fan-out of internal nodes, useful to build
// deep trees with few rows.
func WithMaxInternalCells(maxICells uint32) Option {
	return func(o *options) {
		switch {
		case maxICells == 0:
		case maxICells < minInternalCells:
			o.maxICells = minInternalCells
		case maxICells > InternalNodeMaxCells:
			o.maxICells = InternalNodeMaxCells
		default:
			o.maxICells = maxICells
		}
	}
}
