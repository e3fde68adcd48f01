package rbtree

import (
	"math/rand"
	"testing"
)

func BenchmarkInsertSequential(b *testing.B) {
	tree := New[int]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(i)
	}
}

func BenchmarkInsertRandom(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	keys := make([]int, b.N)
	for i := range keys {
		keys[i] = rng.Int()
	}
	tree := New[int]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(keys[i])
	}
}

func BenchmarkSearch(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	tree := New[int]()
	const n = 1 << 16
	keys := make([]int, n)
	for i := range keys {
		keys[i] = rng.Int()
		tree.Insert(keys[i])
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Search(keys[i&(n-1)])
	}
}

func BenchmarkWalkInOrder(b *testing.B) {
	tree := New[int]()
	for i := 0; i < 50000; i++ {
		tree.Insert(i * 7 % 50000)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count := 0
		tree.Walk(InOrder, func(int, Color) bool {
			count++
			return true
		})
		if count == 0 {
			b.Fatal("walk visited nothing")
		}
	}
}
