package minidb

import (
	"context"
	"errors"
	"fmt"
	"io"
)

type PagerStats struct {
	TotalPages  uint32
	MaxPages    uint32
	CachedPages uint32
	DirtyPages  uint32
	FileSize    int64
}

type pagerImpl struct {
	totalPages uint32 // total number of pages, on disk and allocated in memory
	maxPages   uint32

	pages []*Page
	dirty []bool

	file     DBFile
	fileSize int64
}

// NewPager checks the size of the database file, pages are loaded lazily.
func NewPager(file DBFile, maxPages uint32) (*pagerImpl, error) {
	aPager := &pagerImpl{
		maxPages: maxPages,
		file:     file,
		pages:    make([]*Page, 0, maxPages),
		dirty:    make([]bool, 0, maxPages),
	}

	fileSize, err := aPager.file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Op: "seek end of db file", Err: err}
	}
	aPager.fileSize = fileSize

	// Basic check to verify file size is a multiple of page size (4096B)
	if fileSize%PageSize != 0 {
		return nil, fmt.Errorf("%w size: %d", ErrCorruptFile, fileSize)
	}

	totalPages := fileSize / PageSize
	if totalPages > int64(maxPages) {
		return nil, fmt.Errorf("%w %d > %d", ErrCapacity, totalPages, maxPages)
	}
	aPager.totalPages = uint32(totalPages)

	return aPager, nil
}

func (p *pagerImpl) TotalPages() uint32 {
	return p.totalPages
}

func (p *pagerImpl) MaxPages() uint32 {
	return p.maxPages
}

func (p *pagerImpl) ReadPage(ctx context.Context, pageIdx PageIndex) (*Page, error) {
	return p.getPage(ctx, pageIdx)
}

func (p *pagerImpl) ModifyPage(ctx context.Context, pageIdx PageIndex) (*Page, error) {
	aPage, err := p.getPage(ctx, pageIdx)
	if err != nil {
		return nil, err
	}
	p.dirty[pageIdx] = true
	return aPage, nil
}

// AllocatePage hands out the next unused page number, initialized as an empty node.
func (p *pagerImpl) AllocatePage(ctx context.Context, kind NodeType) (*Page, error) {
	aPage, err := p.getPage(ctx, PageIndex(p.totalPages))
	if err != nil {
		return nil, err
	}
	if kind == NodeInternal {
		aPage.LeafNode = nil
		aPage.InternalNode = NewInternalNode()
	}
	return aPage, nil
}

func (p *pagerImpl) getPage(ctx context.Context, pageIdx PageIndex) (*Page, error) {
	if uint32(pageIdx) >= p.maxPages {
		return nil, fmt.Errorf("%w %d > %d", ErrCapacity, pageIdx, p.maxPages)
	}

	if len(p.pages) > int(pageIdx) && p.pages[pageIdx] != nil {
		return p.pages[pageIdx], nil
	}

	if uint32(pageIdx) > p.totalPages {
		return nil, fmt.Errorf("cannot skip index when getting page, index: %d, number of pages: %d", pageIdx, p.totalPages)
	}

	// Page past the end of the file, start with an empty leaf
	if uint32(pageIdx) == p.totalPages {
		aPage := &Page{Index: pageIdx, LeafNode: NewLeafNode()}
		p.cache(aPage)
		p.dirty[pageIdx] = true
		p.totalPages += 1
		return aPage, nil
	}

	buf := make([]byte, PageSize)
	if _, err := p.file.ReadAt(buf, int64(pageIdx)*PageSize); err != nil && !errors.Is(err, io.EOF) {
		return nil, &IOError{Op: fmt.Sprintf("read page %d", pageIdx), Err: err}
	}

	aPage, err := UnmarshalPage(pageIdx, buf)
	if err != nil {
		return nil, err
	}
	p.cache(aPage)

	return aPage, nil
}

func (p *pagerImpl) cache(aPage *Page) {
	for len(p.pages) <= int(aPage.Index) {
		p.pages = append(p.pages, nil)
		p.dirty = append(p.dirty, false)
	}
	p.pages[aPage.Index] = aPage
}

// Flush writes a cached dirty page back to the file, anything else is a no-op.
func (p *pagerImpl) Flush(ctx context.Context, pageIdx PageIndex) error {
	if int(pageIdx) >= len(p.pages) || p.pages[pageIdx] == nil || !p.dirty[pageIdx] {
		return nil
	}

	buf, err := p.pages[pageIdx].Marshal()
	if err != nil {
		return fmt.Errorf("error flushing page %d: %w", pageIdx, err)
	}

	offset := int64(pageIdx) * PageSize
	if _, err := p.file.WriteAt(buf, offset); err != nil {
		return &IOError{Op: fmt.Sprintf("write page %d", pageIdx), Err: err}
	}
	p.dirty[pageIdx] = false

	if end := offset + PageSize; end > p.fileSize {
		p.fileSize = end
	}

	return nil
}

func (p *pagerImpl) Close() error {
	if err := p.file.Close(); err != nil {
		return &IOError{Op: "close db file", Err: err}
	}
	return nil
}

func (p *pagerImpl) Stats() PagerStats {
	stats := PagerStats{
		TotalPages: p.totalPages,
		MaxPages:   p.maxPages,
		FileSize:   p.fileSize,
	}
	for idx, aPage := range p.pages {
		if aPage == nil {
			continue
		}
		stats.CachedPages += 1
		if p.dirty[idx] {
			stats.DirtyPages += 1
		}
	}
	return stats
}
