package minidb

import (
	"context"
	"fmt"
)

type Cursor struct {
	Table      *Table
	PageIdx    PageIndex
	CellIdx    uint32
	EndOfTable bool // one position past the last row
}

// Value returns the serialized row the cursor points at. The slice is a view
// into the cached page, it is only valid until the next write.
func (c *Cursor) Value(ctx context.Context) ([]byte, error) {
	aPage, err := c.Table.pager.ReadPage(ctx, c.PageIdx)
	if err != nil {
		return nil, fmt.Errorf("cursor value: %w", err)
	}
	if aPage.LeafNode == nil {
		return nil, fmt.Errorf("cursor value: page %d is not a leaf", c.PageIdx)
	}
	if c.CellIdx >= aPage.LeafNode.Header.Cells {
		return nil, fmt.Errorf("cursor value: cell %d out of %d cells", c.CellIdx, aPage.LeafNode.Header.Cells)
	}
	return aPage.LeafNode.Cells[c.CellIdx].Value[:], nil
}

func (c *Cursor) Row(ctx context.Context) (Row, error) {
	buf, err := c.Value(ctx)
	if err != nil {
		return Row{}, err
	}
	var aRow Row
	if err := UnmarshalRow(buf, &aRow); err != nil {
		return Row{}, fmt.Errorf("cursor row: %w", err)
	}
	return aRow, nil
}

// Advance moves the cursor to the next cell, following the next leaf pointer
// when the current leaf is exhausted.
func (c *Cursor) Advance(ctx context.Context) error {
	aPage, err := c.Table.pager.ReadPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("cursor advance: %w", err)
	}

	c.CellIdx += 1
	if c.CellIdx < aPage.LeafNode.Header.Cells {
		return nil
	}

	// If there is no leaf page to the right, set end of table flag and return
	if aPage.LeafNode.Header.NextLeaf == 0 {
		c.EndOfTable = true
		return nil
	}

	c.PageIdx = aPage.LeafNode.Header.NextLeaf
	c.CellIdx = 0

	return nil
}

func (c *Cursor) LeafNodeInsert(ctx context.Context, key uint32, aRow Row) error {
	aPage, err := c.Table.pager.ReadPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("leaf node insert: %w", err)
	}
	if aPage.LeafNode == nil {
		return fmt.Errorf("error inserting row to a non leaf node, key %d", key)
	}

	if aPage.LeafNode.IsFull() {
		if err := c.LeafNodeSplitInsert(ctx, key, aRow); err != nil {
			return fmt.Errorf("leaf node split insert: %w", err)
		}
		return nil
	}

	var aCell Cell
	if err := c.saveToCell(&aCell, key, aRow); err != nil {
		return err
	}

	aPage, err = c.Table.pager.ModifyPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("leaf node insert: %w", err)
	}

	// Make room for the new cell
	for i := aPage.LeafNode.Header.Cells; i > c.CellIdx; i-- {
		aPage.LeafNode.Cells[i] = aPage.LeafNode.Cells[i-1]
	}
	aPage.LeafNode.Cells[c.CellIdx] = aCell
	aPage.LeafNode.Header.Cells += 1

	return nil
}

// Create a new node and move half the cells over.
// Insert the new value in one of the two nodes.
// Update parent or create a new parent.
func (c *Cursor) LeafNodeSplitInsert(ctx context.Context, key uint32, aRow Row) error {
	var (
		aTable = c.Table
		aPager = aTable.pager
	)

	aSplitPage, err := aPager.ReadPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}

	// Checks that can fail happen before the tree is touched
	if !aSplitPage.LeafNode.Header.IsRoot && aTable.splitMode == SplitLegacy {
		return ErrSplitUnimplemented
	}
	needed, err := aTable.pagesNeededForSplit(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("pages needed for split: %w", err)
	}
	if total := aPager.TotalPages(); total+needed > aPager.MaxPages() {
		return fmt.Errorf("%w %d > %d", ErrCapacity, total+needed-1, aPager.MaxPages())
	}
	var newCell Cell
	if err := c.saveToCell(&newCell, key, aRow); err != nil {
		return err
	}

	aSplitPage, err = aPager.ModifyPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}

	originalMaxKey, err := aTable.GetMaxKey(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("get original max key: %w", err)
	}

	aNewPage, err := aPager.AllocatePage(ctx, NodeLeaf)
	if err != nil {
		return fmt.Errorf("get new page: %w", err)
	}

	aTable.logger.Sugar().With(
		"key", int(key),
		"old_max_key", int(originalMaxKey),
		"page_index", int(aSplitPage.Index),
		"new_page_index", int(aNewPage.Index),
	).Debug("leaf node split insert")

	aNewPage.LeafNode.Header.Parent = aSplitPage.LeafNode.Header.Parent
	aNewPage.LeafNode.Header.NextLeaf = aSplitPage.LeafNode.Header.NextLeaf
	aSplitPage.LeafNode.Header.NextLeaf = aNewPage.Index

	// All existing keys plus new key should should be divided
	// evenly between old (left) and new (right) nodes.
	// Starting from the right, move each key to correct position.
	for i := int(LeafNodeMaxCells); i >= 0; i-- {
		destPage := aSplitPage // left
		if i >= LeafNodeLeftSplitCount {
			destPage = aNewPage // right
		}
		destCell := &destPage.LeafNode.Cells[i%LeafNodeLeftSplitCount]

		switch {
		case i == int(c.CellIdx):
			*destCell = newCell
		case i > int(c.CellIdx):
			*destCell = aSplitPage.LeafNode.Cells[i-1]
		default:
			*destCell = aSplitPage.LeafNode.Cells[i]
		}
	}

	// Update cell count on both leaf nodes
	aSplitPage.LeafNode.Header.Cells = LeafNodeLeftSplitCount
	aNewPage.LeafNode.Header.Cells = LeafNodeRightSplitCount

	if aSplitPage.LeafNode.Header.IsRoot {
		_, err := aTable.CreateNewRoot(ctx, aNewPage.Index)
		return err
	}

	parentPageIdx := aSplitPage.LeafNode.Header.Parent
	aParentPage, err := aPager.ModifyPage(ctx, parentPageIdx)
	if err != nil {
		return fmt.Errorf("get parent page: %w", err)
	}

	// The split leaf kept the lower half, its separator shrinks
	oldPageNewMaxKey, err := aTable.GetMaxKey(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("get old page max key: %w", err)
	}
	aParentPage.InternalNode.UpdateKey(originalMaxKey, oldPageNewMaxKey)

	return aTable.InternalNodeInsert(ctx, parentPageIdx, aNewPage.Index)
}

func (c *Cursor) saveToCell(aCell *Cell, key uint32, aRow Row) error {
	if err := aRow.marshalTo(aCell.Value[:]); err != nil {
		return fmt.Errorf("save to cell: %w", err)
	}
	aCell.Key = key
	return nil
}
