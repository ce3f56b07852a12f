// Package quadtree implements the quadtree model (leaf/internal nodes) and
// the prove-or-split builder that materializes a tree against an oracle.
package quadtree

import "github.com/sbma44/adm0-reverse/rect"

// Node is a tagged leaf/internal variant. A Leaf carries one country id; an
// Internal carries up to four children in the fixed NW, NE, SW, SE order
// (absent slots, from a degenerate-axis split, are nil).
type Node struct {
	leaf      bool
	countryID uint16

	children [4]*Node
	present  [4]bool
}

// NewLeaf returns a leaf node carrying id.
func NewLeaf(id uint16) *Node {
	return &Node{leaf: true, countryID: id}
}

// NewInternal returns an internal node with the given children and
// presence mask (see rect.Rect.Split).
func NewInternal(children [4]*Node, present [4]bool) *Node {
	return &Node{children: children, present: present}
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return n.leaf }

// CountryID returns the leaf's country id. Only meaningful when IsLeaf().
func (n *Node) CountryID() uint16 { return n.countryID }

// Child returns the child at index i (rect.NW..rect.SE) and whether it is
// present. Only meaningful when !IsLeaf().
func (n *Node) Child(i rect.Children) (*Node, bool) {
	return n.children[i], n.present[i]
}

// Equal reports whether n and o describe the same abstract tree (same tags,
// same country ids at corresponding leaves, same child presence and
// structure). Used by round-trip tests (property 5).
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.leaf != o.leaf {
		return false
	}
	if n.leaf {
		return n.countryID == o.countryID
	}
	for i := 0; i < 4; i++ {
		if n.present[i] != o.present[i] {
			return false
		}
		if n.present[i] && !n.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// CountLeaves returns the number of leaves in the subtree rooted at n.
func (n *Node) CountLeaves() int {
	if n == nil {
		return 0
	}
	if n.leaf {
		return 1
	}
	total := 0
	for i := 0; i < 4; i++ {
		if n.present[i] {
			total += n.children[i].CountLeaves()
		}
	}
	return total
}
