package rbtree

import (
	"fmt"
	"io"
)

// Order selects a traversal order for Walk.
type Order uint8

const (
	InOrder Order = iota
	PreOrder
	PostOrder
)

// Walk visits every (key, color) pair in the given order. Returning
// false from fn stops the walk early. The walk is read-only and can
// be restarted any number of times.
func (t *Tree[K]) Walk(order Order, fn func(key K, color Color) bool) {
	t.walk(t.root, order, fn)
}

func (t *Tree[K]) walk(n *Node[K], order Order, fn func(K, Color) bool) bool {
	if n == t.sentinel {
		return true
	}
	switch order {
	case PreOrder:
		return fn(n.key, n.color) &&
			t.walk(n.left, order, fn) &&
			t.walk(n.right, order, fn)
	case PostOrder:
		return t.walk(n.left, order, fn) &&
			t.walk(n.right, order, fn) &&
			fn(n.key, n.color)
	default:
		return t.walk(n.left, order, fn) &&
			fn(n.key, n.color) &&
			t.walk(n.right, order, fn)
	}
}

// ForEachAscending visits nodes in increasing key order until fn
// returns false.
func (t *Tree[K]) ForEachAscending(fn func(*Node[K]) bool) {
	for n := t.minNode(t.root); n != t.sentinel; n = t.next(n) {
		if !fn(n) {
			return
		}
	}
}

// ForEachDescending visits nodes in decreasing key order until fn
// returns false.
func (t *Tree[K]) ForEachDescending(fn func(*Node[K]) bool) {
	for n := t.maxNode(t.root); n != t.sentinel; n = t.prev(n) {
		if !fn(n) {
			return
		}
	}
}

// Keys returns all keys in ascending order.
func (t *Tree[K]) Keys() []K {
	out := make([]K, 0, t.size)
	t.ForEachAscending(func(n *Node[K]) bool {
		out = append(out, n.key)
		return true
	})
	return out
}

// Dump writes a pre-order rendering of the tree, one node per line
// with its parent and child relations. Absent children render as
// NIL(BLACK). Diagnostics only.
func (t *Tree[K]) Dump(w io.Writer) {
	t.dump(w, t.root)
}

func (t *Tree[K]) dump(w io.Writer, n *Node[K]) {
	if n == t.sentinel {
		return
	}
	fmt.Fprintf(w, "[ %s\tP:%s\tL:%s\tR:%s ]\n",
		t.label(n), t.label(n.parent), t.label(n.left), t.label(n.right))
	t.dump(w, n.left)
	t.dump(w, n.right)
}

func (t *Tree[K]) label(n *Node[K]) string {
	if n == t.sentinel {
		return "NIL(BLACK)"
	}
	return fmt.Sprintf("%v(%s)", n.key, n.color)
}
