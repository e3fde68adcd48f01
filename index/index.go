// Package index wraps the red-black tree as the engine's in-memory
// state: an ordered multiset of int64 keys plus the last applied
// sequence number. Single-writer; locking is the service's job.
package index

import (
	"sync/atomic"

	"arbor/rbtree"
)

// Entry is one indexed key with its current node color, as exposed to
// snapshots and the API.
type Entry struct {
	Key   int64
	Color rbtree.Color
}

type Index struct {
	tree    *rbtree.Tree[int64]
	lastSeq atomic.Uint64
}

func New() *Index {
	return &Index{tree: rbtree.New[int64]()}
}

// Apply inserts key and records seq as the last applied sequence.
// Replay and the follower both funnel through here, so state rebuilt
// from the WAL or the event stream is bit-for-bit the same tree.
func (ix *Index) Apply(seq uint64, key int64) {
	ix.tree.Insert(key)
	ix.lastSeq.Store(seq)
}

// Lookup reports whether key is present and, if so, its node color.
func (ix *Index) Lookup(key int64) (rbtree.Color, bool) {
	n := ix.tree.Search(key)
	if n == nil {
		return rbtree.Black, false
	}
	return n.Color(), true
}

func (ix *Index) LastSeq() uint64 { return ix.lastSeq.Load() }

func (ix *Index) Len() int { return ix.tree.Len() }

func (ix *Index) Stats() rbtree.Stats { return ix.tree.Stats() }

// SnapshotEntries returns all entries in ascending key order.
func (ix *Index) SnapshotEntries() []Entry {
	out := make([]Entry, 0, ix.tree.Len())
	ix.tree.ForEachAscending(func(n *rbtree.Node[int64]) bool {
		out = append(out, Entry{Key: n.Key(), Color: n.Color()})
		return true
	})
	return out
}

// Min returns the smallest key, or false when empty.
func (ix *Index) Min() (int64, bool) {
	n := ix.tree.Min()
	if n == nil {
		return 0, false
	}
	return n.Key(), true
}

// Max returns the largest key, or false when empty.
func (ix *Index) Max() (int64, bool) {
	n := ix.tree.Max()
	if n == nil {
		return 0, false
	}
	return n.Key(), true
}

// Validate re-checks the tree invariants. Used by tests and by the
// server's replay path as a post-rebuild sanity check.
func (ix *Index) Validate() error { return ix.tree.Validate() }

// Clear resets the index for a rebuild from snapshot + WAL.
func (ix *Index) Clear() {
	ix.tree.Clear()
	ix.lastSeq.Store(0)
}
