package tree

import "slices"

// branch is an open range of siblings on the path from a root to the
// current node.
type branch[T any] struct {
	nodes Tree[T]
	pos   int
}

func (b branch[T]) exhausted() bool {
	return b.pos >= len(b.nodes)
}

// Cursor walks a Tree depth-first in pre-order. The zero value is a
// finished cursor. Cursors are values: a copy keeps its position when the
// original advances.
//
// The top of the stack always points at a valid node, or the stack is
// empty and the traversal is over.
type Cursor[T any] struct {
	stack []branch[T]
	last  bool
}

// Begin returns a cursor positioned at the first root of t.
func (t Tree[T]) Begin() Cursor[T] {
	if len(t) == 0 {
		return Cursor[T]{}
	}
	return Cursor[T]{
		stack: []branch[T]{{nodes: t}},
		last:  len(t) == 1,
	}
}

// End returns the finished cursor.
func End[T any]() Cursor[T] {
	return Cursor[T]{}
}

// Done reports whether the traversal has finished.
func (c *Cursor[T]) Done() bool {
	return len(c.stack) == 0
}

// Equal reports whether both cursors are finished. Two cursors that are
// still walking never compare equal, whatever their position.
func (c Cursor[T]) Equal(o Cursor[T]) bool {
	return len(c.stack) == 0 && len(o.stack) == 0
}

// Node returns the current node. It panics on a finished cursor.
func (c *Cursor[T]) Node() *Node[T] {
	if c.Done() {
		panic("tree: dereferencing a finished cursor")
	}
	top := c.stack[len(c.stack)-1]
	return top.nodes[top.pos]
}

// Value returns the current node's value. It panics on a finished cursor.
func (c *Cursor[T]) Value() T {
	return c.Node().Value
}

// Depth returns the number of ancestors of the current node; roots are at
// depth 0.
func (c *Cursor[T]) Depth() int {
	return len(c.stack) - 1
}

// IsLast reports whether the current node is the last child of its parent
// (or the last root).
func (c *Cursor[T]) IsLast() bool {
	return c.last
}

// Next moves to the next node in pre-order. It panics on a finished
// cursor.
func (c *Cursor[T]) Next() {
	node := c.Node()

	c.stack = slices.Clone(c.stack)
	c.stack[len(c.stack)-1].pos++
	c.stack = append(c.stack, branch[T]{nodes: node.Children})

	for len(c.stack) > 0 && c.stack[len(c.stack)-1].exhausted() {
		c.stack = c.stack[:len(c.stack)-1]
	}

	if len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		c.last = top.pos+1 == len(top.nodes)
	} else {
		c.last = false
	}
}
