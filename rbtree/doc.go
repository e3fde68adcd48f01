// Package rbtree implements an ordered multiset as a red-black tree
// with insertion-path balancing. Keys compare with < and duplicates
// are routed to the right subtree, so equal keys keep a stable
// right-biased placement. Deletion is intentionally not provided.
//
// The tree is a single-writer structure. Rotations mutate several
// node relations non-atomically, so callers that share a tree across
// goroutines must wrap every operation in their own lock (the service
// layer does exactly that).
package rbtree
