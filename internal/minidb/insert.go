package minidb

import (
	"context"
	"fmt"
)

// Insert stores a new row keyed by its ID. Validation and duplicate checks
// run before anything is modified.
func (t *Table) Insert(ctx context.Context, aRow Row) error {
	if err := aRow.Validate(); err != nil {
		return err
	}

	key := aRow.Key()
	aCursor, err := t.Seek(ctx, key)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	aPage, err := t.pager.ReadPage(ctx, aCursor.PageIdx)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if aCursor.CellIdx < aPage.LeafNode.Header.Cells && aPage.LeafNode.Cells[aCursor.CellIdx].Key == key {
		return ErrDuplicateKey
	}

	if err := aCursor.LeafNodeInsert(ctx, key, aRow); err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	return nil
}
