package minidb

import (
	"fmt"
	"math"
)

// Internal node layout
const (
	internalNodeNumKeysSize      = 4
	internalNodeNumKeysOffset    = CommonNodeHeaderSize
	internalNodeRightChildSize   = 4
	internalNodeRightChildOffset = internalNodeNumKeysOffset + internalNodeNumKeysSize
	InternalNodeHeaderSize       = CommonNodeHeaderSize + internalNodeNumKeysSize + internalNodeRightChildSize
	internalNodeChildSize        = 4
	internalNodeKeySize          = 4
	InternalNodeCellSize         = internalNodeChildSize + internalNodeKeySize
	InternalNodeMaxCells         = (PageSize - InternalNodeHeaderSize) / InternalNodeCellSize

	// RightChildNotSet marks an empty internal node, only seen while splitting.
	RightChildNotSet = PageIndex(math.MaxUint32)
)

type InternalNodeHeader struct {
	Header
	KeysNum    uint32
	RightChild PageIndex
}

func (h *InternalNodeHeader) Size() uint64 {
	return InternalNodeHeaderSize
}

func (h *InternalNodeHeader) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	if _, err := h.Header.Marshal(buf); err != nil {
		return nil, err
	}

	marshalUint32(buf, h.KeysNum, internalNodeNumKeysOffset)
	marshalUint32(buf, uint32(h.RightChild), internalNodeRightChildOffset)

	return buf[:size], nil
}

func (h *InternalNodeHeader) Unmarshal(buf []byte) (uint64, error) {
	if uint64(len(buf)) < h.Size() {
		return 0, errShortBuffer("internal node header", h.Size(), len(buf))
	}

	if _, err := h.Header.Unmarshal(buf); err != nil {
		return 0, err
	}

	h.KeysNum = unmarshalUint32(buf, internalNodeNumKeysOffset)
	h.RightChild = PageIndex(unmarshalUint32(buf, internalNodeRightChildOffset))

	return h.Size(), nil
}

// ICell points to a child whose subtree holds keys up to and including Key.
type ICell struct {
	Child PageIndex
	Key   uint32
}

func (c *ICell) Size() uint64 {
	return InternalNodeCellSize
}

func (c *ICell) Marshal(buf []byte) ([]byte, error) {
	size := c.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	marshalUint32(buf, uint32(c.Child), 0)
	marshalUint32(buf, c.Key, internalNodeChildSize)

	return buf[:size], nil
}

func (c *ICell) Unmarshal(buf []byte) (uint64, error) {
	if uint64(len(buf)) < c.Size() {
		return 0, errShortBuffer("internal cell", c.Size(), len(buf))
	}

	c.Child = PageIndex(unmarshalUint32(buf, 0))
	c.Key = unmarshalUint32(buf, internalNodeChildSize)

	return c.Size(), nil
}

type InternalNode struct {
	Header InternalNodeHeader
	ICells [InternalNodeMaxCells]ICell
}

func NewInternalNode() *InternalNode {
	aNode := new(InternalNode)
	aNode.Header.IsInternal = true
	aNode.Header.RightChild = RightChildNotSet
	return aNode
}

func (n *InternalNode) Size() uint64 {
	return n.Header.Size() + uint64(n.Header.KeysNum)*InternalNodeCellSize
}

func (n *InternalNode) Marshal(buf []byte) ([]byte, error) {
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

	for idx := uint32(0); idx < n.Header.KeysNum; idx++ {
		cbuf, err := n.ICells[idx].Marshal(buf[i:])
		if err != nil {
			return nil, err
		}
		i += uint64(len(cbuf))
	}

	return buf[:i], nil
}

func (n *InternalNode) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := n.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	if n.Header.KeysNum > InternalNodeMaxCells {
		return 0, fmt.Errorf("internal node has %d keys, max is %d", n.Header.KeysNum, InternalNodeMaxCells)
	}

	for idx := uint32(0); idx < n.Header.KeysNum; idx++ {
		ci, err := n.ICells[idx].Unmarshal(buf[i:])
		if err != nil {
			return 0, err
		}
		i += ci
	}

	return i, nil
}

// IndexOfChild returns the index of the child which should contain the given key.
// For example, if node has 2 keys, this could return 0 for the leftmost child,
// 1 for the middle child or 2 for the rightmost child.
// The returned value is not a page index!
func (n *InternalNode) IndexOfChild(key uint32) uint32 {
	var (
		minIdx = uint32(0)
		maxIdx = n.Header.KeysNum
	)
	for minIdx != maxIdx {
		idx := (minIdx + maxIdx) / 2
		rightKey := n.ICells[idx].Key
		if rightKey >= key {
			maxIdx = idx
		} else {
			minIdx = idx + 1
		}
	}

	return minIdx
}

// Child returns a page index of nth child of the node
// (0 for the leftmost child, index equal to number of keys means the right child).
func (n *InternalNode) Child(childIdx uint32) (PageIndex, error) {
	keysNum := n.Header.KeysNum
	if childIdx > keysNum {
		return 0, fmt.Errorf("childIdx %d out of keysNum %d", childIdx, keysNum)
	}

	if childIdx == keysNum {
		if n.Header.RightChild == RightChildNotSet {
			return 0, fmt.Errorf("right child of an empty internal node is not set")
		}
		return n.Header.RightChild, nil
	}

	return n.ICells[childIdx].Child, nil
}

// Children returns page indexes of all children including the right child.
func (n *InternalNode) Children() []PageIndex {
	children := make([]PageIndex, 0, n.Header.KeysNum+1)
	for idx := uint32(0); idx < n.Header.KeysNum; idx++ {
		children = append(children, n.ICells[idx].Child)
	}
	if n.Header.RightChild != RightChildNotSet {
		children = append(children, n.Header.RightChild)
	}
	return children
}

func (n *InternalNode) Keys() []uint32 {
	keys := make([]uint32, 0, n.Header.KeysNum)
	for idx := uint32(0); idx < n.Header.KeysNum; idx++ {
		keys = append(keys, n.ICells[idx].Key)
	}
	return keys
}

// UpdateKey replaces the separator equal to oldKey, a separator for the right
// child does not exist so there is nothing to update in that case.
func (n *InternalNode) UpdateKey(oldKey, newKey uint32) {
	idx := n.IndexOfChild(oldKey)
	if idx < n.Header.KeysNum {
		n.ICells[idx].Key = newKey
	}
}
