package minidb

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Table struct {
	RootPageIdx PageIndex
	pager       Pager
	maxICells   uint32
	splitMode   SplitMode
	logger      *zap.Logger
}

func NewTable(logger *zap.Logger, pager Pager, rootPageIdx PageIndex, opts ...Option) *Table {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Table{
		RootPageIdx: rootPageIdx,
		pager:       pager,
		maxICells:   o.maxICells,
		splitMode:   o.splitMode,
		logger:      logger,
	}
}

func (t *Table) SplitMode() SplitMode {
	return t.splitMode
}

func (t *Table) Root() PageIndex {
	return t.RootPageIdx
}

// SeekFirst returns a cursor pointing at the first cell of the leftmost leaf.
func (t *Table) SeekFirst(ctx context.Context) (*Cursor, error) {
	pageIdx := t.RootPageIdx
	aPage, err := t.pager.ReadPage(ctx, pageIdx)
	if err != nil {
		return nil, fmt.Errorf("seek first: %w", err)
	}
	for aPage.LeafNode == nil {
		pageIdx, err = aPage.InternalNode.Child(0)
		if err != nil {
			return nil, fmt.Errorf("seek first: %w", err)
		}
		aPage, err = t.pager.ReadPage(ctx, pageIdx)
		if err != nil {
			return nil, fmt.Errorf("seek first: %w", err)
		}
	}
	return &Cursor{
		Table:      t,
		PageIdx:    pageIdx,
		CellIdx:    0,
		EndOfTable: aPage.LeafNode.Header.Cells == 0,
	}, nil
}

// Seek the cursor for a key, if it does not exist then return the cursor
// for the page and cell where it should be inserted
func (t *Table) Seek(ctx context.Context, key uint32) (*Cursor, error) {
	aRootPage, err := t.pager.ReadPage(ctx, t.RootPageIdx)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	if aRootPage.LeafNode != nil {
		return t.leafNodeSeek(t.RootPageIdx, aRootPage, key), nil
	}
	return t.internalNodeSeek(ctx, aRootPage, key)
}

func (t *Table) leafNodeSeek(pageIdx PageIndex, aPage *Page, key uint32) *Cursor {
	return &Cursor{
		Table:   t,
		PageIdx: pageIdx,
		CellIdx: aPage.LeafNode.Find(key),
	}
}

func (t *Table) internalNodeSeek(ctx context.Context, aPage *Page, key uint32) (*Cursor, error) {
	childIdx := aPage.InternalNode.IndexOfChild(key)
	childPageIdx, err := aPage.InternalNode.Child(childIdx)
	if err != nil {
		return nil, fmt.Errorf("internal node seek: %w", err)
	}

	aChildPage, err := t.pager.ReadPage(ctx, childPageIdx)
	if err != nil {
		return nil, fmt.Errorf("internal node seek: %w", err)
	}

	if aChildPage.InternalNode != nil {
		return t.internalNodeSeek(ctx, aChildPage, key)
	}
	return t.leafNodeSeek(childPageIdx, aChildPage, key), nil
}

// Handle splitting the root.
// Old root copied to new page, becomes left child.
// Address of right child passed in.
// Re-initialize root page to contain the new root node.
// New root node points to two children.
func (t *Table) CreateNewRoot(ctx context.Context, rightChildPageIdx PageIndex) (*Page, error) {
	oldRootPage, err := t.pager.ModifyPage(ctx, t.RootPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	rightChildPage, err := t.pager.ModifyPage(ctx, rightChildPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	leftChildPage, err := t.pager.AllocatePage(ctx, oldRootPage.Type())
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	t.logger.Sugar().With(
		"left_child_index", int(leftChildPage.Index),
		"right_child_index", int(rightChildPageIdx),
	).Debug("create new root")

	// Copy all node contents to left child
	if oldRootPage.LeafNode != nil {
		*leftChildPage.LeafNode = *oldRootPage.LeafNode
		leftChildPage.LeafNode.Header.IsRoot = false
	} else {
		*leftChildPage.InternalNode = *oldRootPage.InternalNode
		leftChildPage.InternalNode.Header.IsRoot = false
		// Children, the right child included, now hang off the left child
		for _, childPageIdx := range leftChildPage.InternalNode.Children() {
			aChildPage, err := t.pager.ModifyPage(ctx, childPageIdx)
			if err != nil {
				return nil, fmt.Errorf("create new root: %w", err)
			}
			aChildPage.setParent(leftChildPage.Index)
		}
	}

	leftChildMaxKey, err := t.GetMaxKey(ctx, leftChildPage)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	// Change root node to a new internal node
	newRootNode := NewInternalNode()
	newRootNode.Header.IsRoot = true
	newRootNode.Header.KeysNum = 1
	newRootNode.ICells[0] = ICell{Child: leftChildPage.Index, Key: leftChildMaxKey}
	newRootNode.Header.RightChild = rightChildPageIdx
	oldRootPage.LeafNode = nil
	oldRootPage.InternalNode = newRootNode

	// Set parent for both left and right child
	leftChildPage.setParent(t.RootPageIdx)
	rightChildPage.setParent(t.RootPageIdx)
	rightChildPage.setRoot(false)

	return leftChildPage, nil
}

// InternalNodeInsert adds a new child/key pair to parent that corresponds to child.
func (t *Table) InternalNodeInsert(ctx context.Context, parentPageIdx, childPageIdx PageIndex) error {
	aParentPage, err := t.pager.ModifyPage(ctx, parentPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	if aParentPage.InternalNode.Header.KeysNum >= t.maxICells {
		return t.InternalNodeSplitInsert(ctx, parentPageIdx, childPageIdx)
	}

	aChildPage, err := t.pager.ModifyPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	aChildPage.setParent(parentPageIdx)

	aParent := aParentPage.InternalNode

	// An internal node with a right child not set is empty
	if aParent.Header.RightChild == RightChildNotSet {
		aParent.Header.RightChild = childPageIdx
		return nil
	}

	childMaxKey, err := t.GetMaxKey(ctx, aChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	rightChildPage, err := t.pager.ReadPage(ctx, aParent.Header.RightChild)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	rightChildMaxKey, err := t.GetMaxKey(ctx, rightChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	var (
		index            = aParent.IndexOfChild(childMaxKey)
		originalKeyCount = aParent.Header.KeysNum
	)
	aParent.Header.KeysNum += 1

	if childMaxKey > rightChildMaxKey {
		// Replace right child
		aParent.ICells[originalKeyCount] = ICell{Child: aParent.Header.RightChild, Key: rightChildMaxKey}
		aParent.Header.RightChild = childPageIdx
		return nil
	}

	// Make room for the new cell
	for i := originalKeyCount; i > index; i-- {
		aParent.ICells[i] = aParent.ICells[i-1]
	}
	aParent.ICells[index] = ICell{Child: childPageIdx, Key: childMaxKey}

	return nil
}

// InternalNodeSplitInsert splits a full internal node in two halves and
// inserts the child into the half it belongs to. The upper half moves to a
// new sibling which is then inserted into the parent, splitting the root
// creates a new root first.
func (t *Table) InternalNodeSplitInsert(ctx context.Context, pageIdx, childPageIdx PageIndex) error {
	oldPageIdx := pageIdx
	oldPage, err := t.pager.ModifyPage(ctx, oldPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	oldMaxKey, err := t.GetMaxKey(ctx, oldPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	childPage, err := t.pager.ReadPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	childMaxKey, err := t.GetMaxKey(ctx, childPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	newPage, err := t.pager.AllocatePage(ctx, NodeInternal)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	splittingRoot := oldPage.InternalNode.Header.IsRoot

	t.logger.Sugar().With(
		"page_index", int(oldPageIdx),
		"new_page_index", int(newPage.Index),
		"splitting_root", splittingRoot,
	).Debug("internal node split insert")

	var parentPageIdx PageIndex
	if splittingRoot {
		// The root keeps its page number, its contents move to a new left
		// child which is the node being split from now on
		leftChildPage, err := t.CreateNewRoot(ctx, newPage.Index)
		if err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		parentPageIdx = t.RootPageIdx
		oldPageIdx = leftChildPage.Index
		oldPage = leftChildPage
	} else {
		parentPageIdx = oldPage.InternalNode.Header.Parent
	}
	oldNode := oldPage.InternalNode

	// The right child moves over first, it becomes right child of the new node
	if err := t.InternalNodeInsert(ctx, newPage.Index, oldNode.Header.RightChild); err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	oldNode.Header.RightChild = RightChildNotSet

	// Then the upper half of the cells
	keysNum := oldNode.Header.KeysNum
	for i := keysNum - 1; i > keysNum/2; i-- {
		if err := t.InternalNodeInsert(ctx, newPage.Index, oldNode.ICells[i].Child); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		oldNode.ICells[i] = ICell{}
		oldNode.Header.KeysNum -= 1
	}

	// The child of the last remaining cell becomes the right child
	lastIdx := oldNode.Header.KeysNum - 1
	oldNode.Header.RightChild = oldNode.ICells[lastIdx].Child
	oldNode.ICells[lastIdx] = ICell{}
	oldNode.Header.KeysNum -= 1

	maxAfterSplit, err := t.GetMaxKey(ctx, oldPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	destinationPageIdx := newPage.Index
	if childMaxKey < maxAfterSplit {
		destinationPageIdx = oldPageIdx
	}
	if err := t.InternalNodeInsert(ctx, destinationPageIdx, childPageIdx); err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	newOldMaxKey, err := t.GetMaxKey(ctx, oldPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	aParentPage, err := t.pager.ModifyPage(ctx, parentPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	aParentPage.InternalNode.UpdateKey(oldMaxKey, newOldMaxKey)

	if splittingRoot {
		return nil
	}

	return t.InternalNodeInsert(ctx, parentPageIdx, newPage.Index)
}

// fitFanOut raises the internal node fan-out to the largest key count found in
// the tree. Files written with a larger fan-out keep working when reopened
// with a smaller one, a split always starts from a node holding maxICells keys.
func (t *Table) fitFanOut(ctx context.Context, pageIdx PageIndex) error {
	aPage, err := t.pager.ReadPage(ctx, pageIdx)
	if err != nil {
		return fmt.Errorf("fit fan-out: %w", err)
	}
	if aPage.InternalNode == nil {
		return nil
	}
	if keysNum := aPage.InternalNode.Header.KeysNum; keysNum > t.maxICells {
		t.logger.Warn("internal node holds more keys than configured, raising fan-out",
			zap.Uint32("page_index", uint32(pageIdx)),
			zap.Uint32("keys", keysNum),
			zap.Uint32("configured", t.maxICells),
		)
		t.maxICells = keysNum
	}
	for _, childPageIdx := range aPage.InternalNode.Children() {
		childPage, err := t.pager.ReadPage(ctx, childPageIdx)
		if err != nil {
			return fmt.Errorf("fit fan-out: %w", err)
		}
		// Leaves are the bulk of the file, no need to descend into them
		if childPage.InternalNode == nil {
			break
		}
		if err := t.fitFanOut(ctx, childPageIdx); err != nil {
			return err
		}
	}
	return nil
}

// GetMaxKey returns the greatest key stored under the page.
func (t *Table) GetMaxKey(ctx context.Context, aPage *Page) (uint32, error) {
	if aPage.LeafNode != nil {
		maxKey, ok := aPage.LeafNode.MaxKey()
		if !ok {
			return 0, fmt.Errorf("get max key: leaf node %d has no cells", aPage.Index)
		}
		return maxKey, nil
	}
	if aPage.InternalNode.Header.RightChild == RightChildNotSet {
		return 0, fmt.Errorf("get max key: internal node %d is empty", aPage.Index)
	}
	rightChild, err := t.pager.ReadPage(ctx, aPage.InternalNode.Header.RightChild)
	if err != nil {
		return 0, err
	}
	return t.GetMaxKey(ctx, rightChild)
}

// pagesNeededForSplit counts pages a split of the leaf would allocate: the new
// leaf, one per full ancestor and one more if the split reaches the root.
func (t *Table) pagesNeededForSplit(ctx context.Context, aLeafPage *Page) (uint32, error) {
	needed := uint32(1)
	aPage := aLeafPage
	for !aPage.IsRoot() {
		aParentPage, err := t.pager.ReadPage(ctx, aPage.Parent())
		if err != nil {
			return 0, err
		}
		if aParentPage.InternalNode.Header.KeysNum < t.maxICells {
			return needed, nil
		}
		needed += 1
		aPage = aParentPage
	}
	return needed + 1, nil
}
