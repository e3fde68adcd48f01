package rbtree

import "cmp"

type Color uint8

const (
	Red   Color = 0
	Black Color = 1
)

func (c Color) String() string {
	if c == Red {
		return "RED"
	}
	return "BLACK"
}

// Node is a single tree entry. The key is immutable once inserted;
// only the color and the relation pointers change during fix-up.
type Node[K cmp.Ordered] struct {
	key    K
	color  Color
	parent *Node[K]
	left   *Node[K]
	right  *Node[K]
}

func (n *Node[K]) Key() K       { return n.key }
func (n *Node[K]) Color() Color { return n.color }

// Stats counts the balancing work done since the tree was created.
type Stats struct {
	LeftRotations  uint64
	RightRotations uint64
	Recolors       uint64
}

// Tree is an ordered multiset keyed by K. Every absent child is the
// tree's black sentinel node, so the fix-up logic never branches on
// nil: "absent is BLACK" holds structurally.
type Tree[K cmp.Ordered] struct {
	root     *Node[K]
	sentinel *Node[K]
	size     int
	stats    Stats
}

// New constructs an empty tree with a black sentinel.
func New[K cmp.Ordered]() *Tree[K] {
	s := &Node[K]{color: Black}
	return &Tree[K]{root: s, sentinel: s}
}

func (t *Tree[K]) Len() int { return t.size }

// Stats returns a copy of the balancing counters.
func (t *Tree[K]) Stats() Stats { return t.stats }

// Root returns the root node, or nil if the tree is empty.
func (t *Tree[K]) Root() *Node[K] {
	if t.root == t.sentinel {
		return nil
	}
	return t.root
}

// Insert adds key to the multiset. It always succeeds: duplicates are
// accepted and walk right, never replacing an existing node.
func (t *Tree[K]) Insert(key K) {
	y := t.sentinel
	x := t.root
	for x != t.sentinel {
		y = x
		if key < x.key {
			x = x.left
		} else {
			x = x.right
		}
	}

	z := &Node[K]{
		key:    key,
		color:  Red,
		parent: y,
		left:   t.sentinel,
		right:  t.sentinel,
	}
	if y == t.sentinel {
		t.root = z
	} else if key < y.key {
		y.left = z
	} else {
		y.right = z
	}
	t.size++
	t.insertFixup(z)
}

// Search returns the matching node on the unique search path, or nil.
// With duplicates present this is whichever equal node the path hits
// first; no first-inserted or last-inserted contract is implied.
func (t *Tree[K]) Search(key K) *Node[K] {
	n := t.root
	for n != t.sentinel {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Min returns the node with the smallest key, or nil if empty.
func (t *Tree[K]) Min() *Node[K] {
	n := t.minNode(t.root)
	if n == t.sentinel {
		return nil
	}
	return n
}

// Max returns the node with the largest key, or nil if empty.
func (t *Tree[K]) Max() *Node[K] {
	n := t.maxNode(t.root)
	if n == t.sentinel {
		return nil
	}
	return n
}

// Successor returns the node with the smallest key strictly greater
// than key, or nil.
func (t *Tree[K]) Successor(key K) *Node[K] {
	n := t.root
	succ := t.sentinel
	for n != t.sentinel {
		if key < n.key {
			succ = n
			n = n.left
		} else {
			n = n.right
		}
	}
	if succ == t.sentinel {
		return nil
	}
	return succ
}

// Predecessor returns the node with the largest key strictly smaller
// than key, or nil.
func (t *Tree[K]) Predecessor(key K) *Node[K] {
	n := t.root
	pred := t.sentinel
	for n != t.sentinel {
		if key > n.key {
			pred = n
			n = n.right
		} else {
			n = n.left
		}
	}
	if pred == t.sentinel {
		return nil
	}
	return pred
}

// Clear resets the tree to empty. Nodes become unreachable and are
// reclaimed by the garbage collector.
func (t *Tree[K]) Clear() {
	t.root = t.sentinel
	t.size = 0
}

/******************** Internal helpers ********************/

func (t *Tree[K]) minNode(n *Node[K]) *Node[K] {
	if n == t.sentinel {
		return t.sentinel
	}
	for n.left != t.sentinel {
		n = n.left
	}
	return n
}

func (t *Tree[K]) maxNode(n *Node[K]) *Node[K] {
	if n == t.sentinel {
		return t.sentinel
	}
	for n.right != t.sentinel {
		n = n.right
	}
	return n
}

func (t *Tree[K]) next(n *Node[K]) *Node[K] {
	if n == nil || n == t.sentinel {
		return t.sentinel
	}
	if n.right != t.sentinel {
		return t.minNode(n.right)
	}
	p := n.parent
	for p != t.sentinel && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *Tree[K]) prev(n *Node[K]) *Node[K] {
	if n == nil || n == t.sentinel {
		return t.sentinel
	}
	if n.left != t.sentinel {
		return t.maxNode(n.left)
	}
	p := n.parent
	for p != t.sentinel && n == p.left {
		n = p
		p = p.parent
	}
	return p
}
