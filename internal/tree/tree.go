// Package tree provides an ordered multi-way tree with a depth-first
// cursor that reports each node's nesting depth and whether it is the last
// child of its parent.
package tree

import "iter"

// Node is a single element of a Tree. Children are owned by the node.
type Node[T any] struct {
	Value    T
	Children Tree[T]
}

// Tree is an ordered list of sibling nodes. Order is display order.
type Tree[T any] []*Node[T]

// NewNode returns a node holding v with the given children.
func NewNode[T any](v T, children ...*Node[T]) *Node[T] {
	return &Node[T]{Value: v, Children: children}
}

// Add appends a child holding v and returns it.
func (n *Node[T]) Add(v T) *Node[T] {
	child := &Node[T]{Value: v}
	n.Children = append(n.Children, child)
	return child
}

// Add appends a top-level node holding v and returns it.
func (t *Tree[T]) Add(v T) *Node[T] {
	n := &Node[T]{Value: v}
	*t = append(*t, n)
	return n
}

// Len returns the total number of nodes in the tree.
func (t Tree[T]) Len() int {
	n := 0
	for _, node := range t {
		n += 1 + node.Children.Len()
	}
	return n
}

// Visit is one step of a traversal.
type Visit[T any] struct {
	Value T
	Node  *Node[T]
	Depth int
	Last  bool
}

// All returns a depth-first pre-order sequence over the tree. The sequence
// can be ranged over any number of times as long as the tree is not
// modified while a traversal is in progress.
func (t Tree[T]) All() iter.Seq[Visit[T]] {
	return func(yield func(Visit[T]) bool) {
		for c := t.Begin(); !c.Done(); c.Next() {
			v := Visit[T]{
				Value: c.Value(),
				Node:  c.Node(),
				Depth: c.Depth(),
				Last:  c.IsLast(),
			}
			if !yield(v) {
				return
			}
		}
	}
}

// At returns the node at flat pre-order index i, or nil when i is out of
// range.
func (t Tree[T]) At(i int) *Node[T] {
	if i < 0 {
		return nil
	}
	for c := t.Begin(); !c.Done(); c.Next() {
		if i == 0 {
			return c.Node()
		}
		i--
	}
	return nil
}

// Index returns the flat pre-order index of the first node for which match
// returns true, or -1.
func (t Tree[T]) Index(match func(T) bool) int {
	i := 0
	for c := t.Begin(); !c.Done(); c.Next() {
		if match(c.Value()) {
			return i
		}
		i++
	}
	return -1
}
