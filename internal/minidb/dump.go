package minidb

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// DumpTree writes the subtree rooted at pageIdx, indented two spaces per level.
func (t *Table) DumpTree(ctx context.Context, w io.Writer, pageIdx PageIndex, indentLevel int) error {
	aPage, err := t.pager.ReadPage(ctx, pageIdx)
	if err != nil {
		return fmt.Errorf("dump tree: %w", err)
	}

	indent := strings.Repeat("  ", indentLevel)
	childIndent := strings.Repeat("  ", indentLevel+1)

	if aPage.LeafNode != nil {
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, aPage.LeafNode.Header.Cells)
		for _, key := range aPage.LeafNode.Keys() {
			fmt.Fprintf(w, "%s- %d\n", childIndent, key)
		}
		return nil
	}

	aNode := aPage.InternalNode
	fmt.Fprintf(w, "%s- internal (size %d)\n", indent, aNode.Header.KeysNum)
	if aNode.Header.RightChild == RightChildNotSet {
		return nil
	}
	for idx := uint32(0); idx < aNode.Header.KeysNum; idx++ {
		if err := t.DumpTree(ctx, w, aNode.ICells[idx].Child, indentLevel+1); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s- key %d\n", childIndent, aNode.ICells[idx].Key)
	}
	return t.DumpTree(ctx, w, aNode.Header.RightChild, indentLevel+1)
}

func DumpConstants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", CommonNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", LeafNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", LeafNodeCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", LeafNodeSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", LeafNodeMaxCells)
}

type Stats struct {
	PagerStats
	Depth     int
	SplitMode SplitMode
}

// Stats reports pager counters and the depth of the tree, a lone root leaf has depth 1.
func (t *Table) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		PagerStats: t.pager.Stats(),
		SplitMode:  t.splitMode,
	}

	aPage, err := t.pager.ReadPage(ctx, t.RootPageIdx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	stats.Depth = 1
	for aPage.InternalNode != nil {
		childIdx, err := aPage.InternalNode.Child(0)
		if err != nil {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
		aPage, err = t.pager.ReadPage(ctx, childIdx)
		if err != nil {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
		stats.Depth += 1
	}

	return stats, nil
}

func (s Stats) Dump(w io.Writer) {
	fmt.Fprintf(w, "pages: %d/%d\n", s.TotalPages, s.MaxPages)
	fmt.Fprintf(w, "cached pages: %d\n", s.CachedPages)
	fmt.Fprintf(w, "dirty pages: %d\n", s.DirtyPages)
	fmt.Fprintf(w, "file size: %s\n", humanize.IBytes(uint64(s.FileSize)))
	fmt.Fprintf(w, "tree depth: %d\n", s.Depth)
	fmt.Fprintf(w, "split mode: %s\n", s.SplitMode)
}
