package minidb

import (
	"fmt"
)

// Leaf node layout
const (
	leafNodeNumCellsSize    = 4
	leafNodeNumCellsOffset  = CommonNodeHeaderSize
	leafNodeNextLeafSize    = 4
	leafNodeNextLeafOffset  = leafNodeNumCellsOffset + leafNodeNumCellsSize
	LeafNodeHeaderSize      = CommonNodeHeaderSize + leafNodeNumCellsSize + leafNodeNextLeafSize
	LeafNodeKeySize         = 4
	LeafNodeCellSize        = LeafNodeKeySize + RowSize
	LeafNodeSpaceForCells   = PageSize - LeafNodeHeaderSize
	LeafNodeMaxCells        = LeafNodeSpaceForCells / LeafNodeCellSize
	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) / 2
	LeafNodeLeftSplitCount  = (LeafNodeMaxCells + 1) - LeafNodeRightSplitCount
)

type LeafNodeHeader struct {
	Header
	Cells    uint32
	NextLeaf PageIndex // 0 marks the rightmost leaf, page 0 is always the root
}

func (h *LeafNodeHeader) Size() uint64 {
	return LeafNodeHeaderSize
}

func (h *LeafNodeHeader) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	if _, err := h.Header.Marshal(buf); err != nil {
		return nil, err
	}

	marshalUint32(buf, h.Cells, leafNodeNumCellsOffset)
	marshalUint32(buf, uint32(h.NextLeaf), leafNodeNextLeafOffset)

	return buf[:size], nil
}

func (h *LeafNodeHeader) Unmarshal(buf []byte) (uint64, error) {
	if uint64(len(buf)) < h.Size() {
		return 0, errShortBuffer("leaf node header", h.Size(), len(buf))
	}

	if _, err := h.Header.Unmarshal(buf); err != nil {
		return 0, err
	}

	h.Cells = unmarshalUint32(buf, leafNodeNumCellsOffset)
	h.NextLeaf = PageIndex(unmarshalUint32(buf, leafNodeNextLeafOffset))

	return h.Size(), nil
}

// Cell is a key followed by the serialized row. Value is an array so cells
// can be moved around by plain assignment.
type Cell struct {
	Key   uint32
	Value [RowSize]byte
}

func (c *Cell) Size() uint64 {
	return LeafNodeCellSize
}

func (c *Cell) Marshal(buf []byte) ([]byte, error) {
	size := c.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	marshalUint32(buf, c.Key, 0)
	copy(buf[LeafNodeKeySize:], c.Value[:])

	return buf[:size], nil
}

func (c *Cell) Unmarshal(buf []byte) (uint64, error) {
	if uint64(len(buf)) < c.Size() {
		return 0, errShortBuffer("leaf cell", c.Size(), len(buf))
	}

	c.Key = unmarshalUint32(buf, 0)
	copy(c.Value[:], buf[LeafNodeKeySize:LeafNodeCellSize])

	return c.Size(), nil
}

type LeafNode struct {
	Header LeafNodeHeader
	Cells  [LeafNodeMaxCells]Cell
}

func NewLeafNode() *LeafNode {
	return new(LeafNode)
}

func (n *LeafNode) Size() uint64 {
	return n.Header.Size() + uint64(n.Header.Cells)*LeafNodeCellSize
}

// Marshal writes the header and the occupied cells, bytes past the last cell
// are left as they are in buf.
func (n *LeafNode) Marshal(buf []byte) ([]byte, error) {
	size := n.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	i := uint64(0)

	hbuf, err := n.Header.Marshal(buf[i:])
	if err != nil {
		return nil, err
	}
	i += uint64(len(hbuf))

	for idx := uint32(0); idx < n.Header.Cells; idx++ {
		cbuf, err := n.Cells[idx].Marshal(buf[i:])
		if err != nil {
			return nil, err
		}
		i += uint64(len(cbuf))
	}

	return buf[:i], nil
}

func (n *LeafNode) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := n.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	if n.Header.Cells > LeafNodeMaxCells {
		return 0, fmt.Errorf("leaf node has %d cells, max is %d", n.Header.Cells, LeafNodeMaxCells)
	}

	for idx := uint32(0); idx < n.Header.Cells; idx++ {
		ci, err := n.Cells[idx].Unmarshal(buf[i:])
		if err != nil {
			return 0, err
		}
		i += ci
	}

	return i, nil
}

func (n *LeafNode) Keys() []uint32 {
	keys := make([]uint32, 0, n.Header.Cells)
	for idx := uint32(0); idx < n.Header.Cells; idx++ {
		keys = append(keys, n.Cells[idx].Key)
	}
	return keys
}

// MaxKey returns the last key, false for an empty leaf.
func (n *LeafNode) MaxKey() (uint32, bool) {
	if n.Header.Cells == 0 {
		return 0, false
	}
	return n.Cells[n.Header.Cells-1].Key, true
}

// Find returns the index of the cell holding key or the position where it
// should be inserted to keep the keys sorted.
func (n *LeafNode) Find(key uint32) uint32 {
	var (
		minIdx = uint32(0)
		maxIdx = n.Header.Cells
	)
	for minIdx != maxIdx {
		idx := (minIdx + maxIdx) / 2
		keyAtIdx := n.Cells[idx].Key
		if key == keyAtIdx {
			return idx
		}
		if key < keyAtIdx {
			maxIdx = idx
		} else {
			minIdx = idx + 1
		}
	}
	return minIdx
}

func (n *LeafNode) IsFull() bool {
	return n.Header.Cells >= LeafNodeMaxCells
}
