package minidb

import (
	"encoding/binary"
)

// NodeType is the on-disk type tag stored in the first byte of every page.
type NodeType uint8

const (
	NodeInternal NodeType = iota
	NodeLeaf
)

func (t NodeType) String() string {
	switch t {
	case NodeInternal:
		return "internal"
	case NodeLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Common node header layout
const (
	nodeTypeSize         = 1
	nodeTypeOffset       = 0
	isRootSize           = 1
	isRootOffset         = nodeTypeOffset + nodeTypeSize
	parentPointerSize    = 4
	parentPointerOffset  = isRootOffset + isRootSize
	CommonNodeHeaderSize = nodeTypeSize + isRootSize + parentPointerSize
)

type Header struct {
	IsInternal bool
	IsRoot     bool
	Parent     PageIndex
}

func (h *Header) Size() uint64 {
	return CommonNodeHeaderSize
}

func (h *Header) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	if h.IsInternal {
		buf[nodeTypeOffset] = byte(NodeInternal)
	} else {
		buf[nodeTypeOffset] = byte(NodeLeaf)
	}

	if h.IsRoot {
		buf[isRootOffset] = 1
	} else {
		buf[isRootOffset] = 0
	}

	marshalUint32(buf, uint32(h.Parent), parentPointerOffset)

	return buf[:size], nil
}

func (h *Header) Unmarshal(buf []byte) (uint64, error) {
	if uint64(len(buf)) < h.Size() {
		return 0, errShortBuffer("node header", h.Size(), len(buf))
	}

	h.IsInternal = NodeType(buf[nodeTypeOffset]) == NodeInternal
	h.IsRoot = buf[isRootOffset] == 1
	h.Parent = PageIndex(unmarshalUint32(buf, parentPointerOffset))

	return h.Size(), nil
}

func marshalUint32(buf []byte, v uint32, i uint64) {
	binary.LittleEndian.PutUint32(buf[i:i+4], v)
}

func unmarshalUint32(buf []byte, i uint64) uint32 {
	return binary.LittleEndian.Uint32(buf[i : i+4])
}
