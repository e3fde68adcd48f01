package rbtree

// insertFixup restores the red-black invariants after z was attached
// as a red leaf. The only possible violation at entry is a red z under
// a red parent. Case 1 (red uncle) recolors and moves the violation up
// two levels; cases 2 and 3 (black uncle) rotate it away and terminate.
// The left-parent and right-parent branches are exact mirrors.
func (t *Tree[K]) insertFixup(z *Node[K]) {
	for z.parent.color == Red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right // uncle
			if y.color == Red {
				// Case 1: recolor, violation may move to grandparent.
				z.parent.color = Black
				y.color = Black
				z.parent.parent.color = Red
				t.stats.Recolors++
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					// Case 2: inner grandchild, make it outer.
					z = z.parent
					t.rotateLeft(z)
				}
				// Case 3: outer grandchild, terminal.
				z.parent.color = Black
				z.parent.parent.color = Red
				t.rotateRight(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left // uncle
			if y.color == Red {
				z.parent.color = Black
				y.color = Black
				z.parent.parent.color = Red
				t.stats.Recolors++
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.color = Black
				z.parent.parent.color = Red
				t.rotateLeft(z.parent.parent)
			}
		}
	}
	// Case 1 can step z onto the root without a later recoloring pass,
	// so the root is unconditionally forced black here.
	t.root.color = Black
}

// rotateLeft pivots on x.right. Four parent/child pointer pairs move,
// plus the root reference when x was the root. The pivot child must
// exist; fix-up guarantees that structurally.
func (t *Tree[K]) rotateLeft(x *Node[K]) {
	y := x.right
	if y == t.sentinel {
		panic("rbtree: rotateLeft requires a right child")
	}
	x.right = y.left
	if y.left != t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.sentinel {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
	t.stats.LeftRotations++
}

// rotateRight is the exact mirror of rotateLeft, pivoting on x.left.
func (t *Tree[K]) rotateRight(x *Node[K]) {
	y := x.left
	if y == t.sentinel {
		panic("rbtree: rotateRight requires a left child")
	}
	x.left = y.right
	if y.right != t.sentinel {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == t.sentinel {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
	t.stats.RightRotations++
}
