package minidb

import (
	"context"
	"io"
)

type DBFile interface {
	io.ReadSeeker
	io.ReaderAt
	io.WriterAt
	io.Closer
}

type Pager interface {
	ReadPage(context.Context, PageIndex) (*Page, error)
	ModifyPage(context.Context, PageIndex) (*Page, error)
	AllocatePage(context.Context, NodeType) (*Page, error)
	TotalPages() uint32
	MaxPages() uint32
	Flush(context.Context, PageIndex) error
	Close() error
	Stats() PagerStats
}
