package rbtree

import "fmt"

// Validate walks the whole tree and verifies the red-black invariants:
// search order with right-biased duplicates, a black root, a black
// sentinel, no red node with a red parent, consistent parent links,
// and a uniform black count on every root-to-sentinel path. It returns
// the first violation found, or nil. Intended for tests and debugging;
// it is O(n) and never mutates the tree.
func (t *Tree[K]) Validate() error {
	if t.sentinel.color != Black {
		return fmt.Errorf("rbtree: sentinel is %s, want BLACK", t.sentinel.color)
	}
	if t.root == t.sentinel {
		return nil
	}
	if t.root.color != Black {
		return fmt.Errorf("rbtree: root %v is RED", t.root.key)
	}
	if err := t.checkOrder(t.root, nil, nil); err != nil {
		return err
	}
	if err := t.checkLinks(t.root); err != nil {
		return err
	}
	_, err := t.checkBlackHeight(t.root)
	return err
}

// checkOrder enforces: left subtree strictly below the node's key,
// right subtree at or above it (ties go right on insertion).
func (t *Tree[K]) checkOrder(n *Node[K], lo, hi *K) error {
	if n == t.sentinel {
		return nil
	}
	if lo != nil && n.key < *lo {
		return fmt.Errorf("rbtree: key %v below lower bound %v", n.key, *lo)
	}
	if hi != nil && !(n.key < *hi) {
		return fmt.Errorf("rbtree: key %v at or above upper bound %v", n.key, *hi)
	}
	if err := t.checkOrder(n.left, lo, &n.key); err != nil {
		return err
	}
	return t.checkOrder(n.right, &n.key, hi)
}

func (t *Tree[K]) checkLinks(n *Node[K]) error {
	if n == t.sentinel {
		return nil
	}
	if n.color == Red && n.parent.color == Red {
		return fmt.Errorf("rbtree: red node %v has red parent %v", n.key, n.parent.key)
	}
	if n.left != t.sentinel && n.left.parent != n {
		return fmt.Errorf("rbtree: broken parent link at %v.left", n.key)
	}
	if n.right != t.sentinel && n.right.parent != n {
		return fmt.Errorf("rbtree: broken parent link at %v.right", n.key)
	}
	if err := t.checkLinks(n.left); err != nil {
		return err
	}
	return t.checkLinks(n.right)
}

// checkBlackHeight returns the black node count from n down to the
// sentinel, counting n itself when black. Both subtrees must agree.
func (t *Tree[K]) checkBlackHeight(n *Node[K]) (int, error) {
	if n == t.sentinel {
		return 1, nil
	}
	lh, err := t.checkBlackHeight(n.left)
	if err != nil {
		return 0, err
	}
	rh, err := t.checkBlackHeight(n.right)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, fmt.Errorf("rbtree: black height mismatch at %v: left %d, right %d", n.key, lh, rh)
	}
	if n.color == Black {
		lh++
	}
	return lh, nil
}
