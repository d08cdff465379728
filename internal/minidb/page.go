package minidb

import (
	"fmt"
)

type PageIndex uint32

const (
	PageSize        = 4096 // 4 kilobytes
	DefaultMaxPages = 100
)

// Page is a tagged variant, exactly one of InternalNode and LeafNode is set.
type Page struct {
	Index        PageIndex
	InternalNode *InternalNode
	LeafNode     *LeafNode
}

func (p *Page) Type() NodeType {
	if p.InternalNode != nil {
		return NodeInternal
	}
	return NodeLeaf
}

func (p *Page) IsRoot() bool {
	if p.InternalNode != nil {
		return p.InternalNode.Header.IsRoot
	}
	return p.LeafNode.Header.IsRoot
}

func (p *Page) setRoot(isRoot bool) {
	if p.InternalNode != nil {
		p.InternalNode.Header.IsRoot = isRoot
		return
	}
	p.LeafNode.Header.IsRoot = isRoot
}

func (p *Page) Parent() PageIndex {
	if p.InternalNode != nil {
		return p.InternalNode.Header.Parent
	}
	return p.LeafNode.Header.Parent
}

func (p *Page) setParent(parentIdx PageIndex) {
	if p.InternalNode != nil {
		p.InternalNode.Header.Parent = parentIdx
		return
	}
	p.LeafNode.Header.Parent = parentIdx
}

// Marshal serializes the node into a full page sized buffer.
func (p *Page) Marshal() ([]byte, error) {
	buf := make([]byte, PageSize)
	if p.InternalNode != nil {
		if _, err := p.InternalNode.Marshal(buf); err != nil {
			return nil, fmt.Errorf("marshal internal node %d: %w", p.Index, err)
		}
		return buf, nil
	}
	if p.LeafNode == nil {
		return nil, fmt.Errorf("page %d holds no node", p.Index)
	}
	if _, err := p.LeafNode.Marshal(buf); err != nil {
		return nil, fmt.Errorf("marshal leaf node %d: %w", p.Index, err)
	}
	return buf, nil
}

func UnmarshalPage(pageIdx PageIndex, buf []byte) (*Page, error) {
	if len(buf) < CommonNodeHeaderSize {
		return nil, errShortBuffer("page", CommonNodeHeaderSize, len(buf))
	}

	aPage := &Page{Index: pageIdx}
	switch NodeType(buf[nodeTypeOffset]) {
	case NodeInternal:
		aPage.InternalNode = NewInternalNode()
		if _, err := aPage.InternalNode.Unmarshal(buf); err != nil {
			return nil, fmt.Errorf("unmarshal internal node %d: %w", pageIdx, err)
		}
	case NodeLeaf:
		aPage.LeafNode = NewLeafNode()
		if _, err := aPage.LeafNode.Unmarshal(buf); err != nil {
			return nil, fmt.Errorf("unmarshal leaf node %d: %w", pageIdx, err)
		}
	default:
		return nil, fmt.Errorf("unknown node type %d on page %d", buf[nodeTypeOffset], pageIdx)
	}

	return aPage, nil
}
