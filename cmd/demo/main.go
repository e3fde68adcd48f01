// A standalone walkthrough of the red-black tree: builds two sample
// trees, prints their shape, and reports balancing activity. Useful
// for eyeballing rotations without standing up the server.
package main

import (
	"fmt"
	"os"

	"arbor/rbtree"
)

func buildAndShow(title string, keys []int64) {
	fmt.Printf("== %s ==\n", title)
	fmt.Printf("insert order: %v\n\n", keys)

	t := rbtree.New[int64]()
	for _, k := range keys {
		t.Insert(k)
	}

	fmt.Println("pre-order dump:")
	t.Dump(os.Stdout)

	fmt.Println("\nin-order keys:")
	fmt.Printf("  %v\n", t.Keys())

	st := t.Stats()
	fmt.Printf("\nsize=%d rotations(left=%d right=%d) recolors=%d\n",
		t.Len(), st.LeftRotations, st.RightRotations, st.Recolors)
	if r := t.Root(); r != nil {
		fmt.Printf("root=%d(%s)\n", r.Key(), r.Color())
	}

	if err := t.Validate(); err != nil {
		fmt.Printf("INVALID TREE: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
}

func searchReport(t *rbtree.Tree[int64], keys ...int64) {
	for _, k := range keys {
		if n := t.Search(k); n != nil {
			fmt.Printf("search %3d: found, color=%s\n", k, n.Color())
		} else {
			fmt.Printf("search %3d: not found\n", k)
		}
	}
}

func main() {
	buildAndShow("ascending tens", []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})
	buildAndShow("mixed inserts", []int64{40, 20, 70, 10, 30, 35, 37})

	t := rbtree.New[int64]()
	for _, k := range []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} {
		t.Insert(k)
	}
	searchReport(t, 20, 50, 15)
}
