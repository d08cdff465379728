package minidb

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Open opens or creates the database file at path. A new file starts out with
// an empty root leaf on page 0.
func Open(ctx context.Context, logger *zap.Logger, path string, opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dbFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, &IOError{Op: "open db file", Err: err}
	}

	aPager, err := NewPager(dbFile, o.maxPages)
	if err != nil {
		return nil, multierr.Append(err, dbFile.Close())
	}

	aTable := NewTable(logger, aPager, 0, opts...)

	if aPager.TotalPages() == 0 {
		aRootPage, err := aPager.AllocatePage(ctx, NodeLeaf)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("allocate root page: %w", err), dbFile.Close())
		}
		aRootPage.LeafNode.Header.IsRoot = true
	} else if err := aTable.fitFanOut(ctx, aTable.RootPageIdx); err != nil {
		return nil, multierr.Append(err, dbFile.Close())
	}

	logger.Info("opened database",
		zap.String("path", path),
		zap.Uint32("pages", aPager.TotalPages()),
		zap.Uint32("max_pages", aPager.MaxPages()),
		zap.Stringer("split_mode", aTable.splitMode),
		zap.Uint32("max_internal_cells", aTable.maxICells),
	)

	return aTable, nil
}

// Close writes every dirty page back in ascending page order and releases the
// file. The file is closed even when some pages fail to flush.
func (t *Table) Close(ctx context.Context) error {
	var err error
	totalPages := t.pager.TotalPages()
	for pageIdx := uint32(0); pageIdx < totalPages; pageIdx++ {
		err = multierr.Append(err, t.pager.Flush(ctx, PageIndex(pageIdx)))
	}
	err = multierr.Append(err, t.pager.Close())

	if err != nil {
		t.logger.Error("closed database with errors", zap.Error(err))
		return err
	}
	t.logger.Info("closed database", zap.Uint32("pages", totalPages))
	return nil
}
