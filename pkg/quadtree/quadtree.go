// Package quadtree implements a bounded-capacity region quadtree over 2D
// points. Each stored value carries the position it was inserted at; the
// tree never reads positions back from the values, so callers that move
// their items must rebuild (Clear + Insert, or ChangeBounds).
//
// Sequences returned by Query and All are lazy and restartable. They stay
// valid until the next mutating call (Insert, Clear, ChangeBounds).
package quadtree

import (
	"errors"
	"fmt"
	"iter"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/geometry"
)

// MaxDepth stops subdivision. Points that coincide beyond this depth
// share a leaf that may hold more than the capacity.
const MaxDepth = 16

var (
	ErrOutOfRegion     = errors.New("position outside quadtree region")
	ErrInvalidCapacity = errors.New("quadtree leaf capacity must be positive")
)

// Entry is a stored value and the position it was indexed at.
type Entry[T any] struct {
	Pos   geometry.Vector2D
	Value T
}

// Quadrant indices, in the order of geometry.Rect.Quadrants.
const (
	NorthWest = iota
	NorthEast
	SouthWest
	SouthEast
)

type node[T any] struct {
	region   geometry.Rect
	depth    int
	entries  []Entry[T]
	children *[4]node[T] // nil while the node is a leaf
}

// Tree is a region quadtree. The zero value is not usable, call New.
type Tree[T any] struct {
	root     node[T]
	capacity int
	size     int
}

// New builds a tree covering region by inserting entries one at a time
// into an initially empty leaf.
func New[T any](region geometry.Rect, capacity int, entries ...Entry[T]) (*Tree[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	t := &Tree[T]{
		root:     node[T]{region: region},
		capacity: capacity,
	}
	for i, e := range entries {
		if err := t.Insert(e.Pos, e.Value); err != nil {
			return nil, fmt.Errorf("inserting entry %d: %w", i, err)
		}
	}
	return t, nil
}

// Region returns the box covered by the root node.
func (t *Tree[T]) Region() geometry.Rect { return t.root.region }

// Capacity returns the leaf capacity.
func (t *Tree[T]) Capacity() int { return t.capacity }

// Len returns the number of stored entries.
func (t *Tree[T]) Len() int { return t.size }

// Insert stores v at pos. It fails with ErrOutOfRegion when pos is outside
// the tree region; the tree is left unchanged in that case.
func (t *Tree[T]) Insert(pos geometry.Vector2D, v T) error {
	if !t.root.region.Contains(pos) {
		return fmt.Errorf("%w: %s not in %s", ErrOutOfRegion, pos, t.root.region)
	}
	t.root.insert(Entry[T]{Pos: pos, Value: v}, t.capacity)
	t.size++
	return nil
}

// Clear drops every entry and keeps the region.
func (t *Tree[T]) Clear() {
	t.root = node[T]{region: t.root.region}
	t.size = 0
}

// ChangeBounds rebuilds the tree for region and reinserts every entry.
// Entries now outside region are clamped onto its border before
// reinsertion; their values are returned so the caller can move the
// items they stand for.
func (t *Tree[T]) ChangeBounds(region geometry.Rect) (clamped []T) {
	old := make([]Entry[T], 0, t.size)
	for e := range t.Entries() {
		old = append(old, e)
	}

	t.root = node[T]{region: region}
	t.size = 0
	for _, e := range old {
		if !region.Contains(e.Pos) {
			e.Pos = e.Pos.Clamp(region)
			clamped = append(clamped, e.Value)
		}
		t.root.insert(e, t.capacity)
		t.size++
	}
	return clamped
}

// Query yields the values whose position lies inside window, edges included.
// Children whose region does not overlap window are never visited.
func (t *Tree[T]) Query(window geometry.Rect) iter.Seq[T] {
	return func(yield func(T) bool) {
		t.root.query(window, func(e Entry[T]) bool { return yield(e.Value) })
	}
}

// QueryEntries is Query with positions attached.
func (t *Tree[T]) QueryEntries(window geometry.Rect) iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		t.root.query(window, yield)
	}
}

// All yields every stored value regardless of position.
func (t *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		t.root.walk(func(e Entry[T]) bool { return yield(e.Value) })
	}
}

// Entries yields every stored entry regardless of position.
func (t *Tree[T]) Entries() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		t.root.walk(yield)
	}
}

// quadrant picks the child for p. Points on a split line go to the
// lower coordinate side, so every point has exactly one home.
func (n *node[T]) quadrant(p geometry.Vector2D) int {
	c := n.region.Center()
	q := NorthWest
	if p.X > c.X {
		q |= NorthEast
	}
	if p.Y > c.Y {
		q |= SouthWest
	}
	return q
}

func (n *node[T]) insert(e Entry[T], capacity int) {
	for n.children != nil {
		n = &n.children[n.quadrant(e.Pos)]
	}
	if len(n.entries) < capacity || n.depth >= MaxDepth {
		n.entries = append(n.entries, e)
		return
	}
	n.subdivide(capacity)
	n.children[n.quadrant(e.Pos)].insert(e, capacity)
}

// subdivide turns a full leaf into an internal node and moves its
// entries down into the four children.
func (n *node[T]) subdivide(capacity int) {
	quads := n.region.Quadrants()
	n.children = &[4]node[T]{}
	for i := range n.children {
		n.children[i] = node[T]{region: quads[i], depth: n.depth + 1}
	}
	for _, e := range n.entries {
		n.children[n.quadrant(e.Pos)].insert(e, capacity)
	}
	n.entries = nil
}

func (n *node[T]) query(window geometry.Rect, yield func(Entry[T]) bool) bool {
	if !n.region.Intersects(window) {
		return true
	}
	if n.children == nil {
		for _, e := range n.entries {
			if window.Contains(e.Pos) && !yield(e) {
				return false
			}
		}
		return true
	}
	for i := range n.children {
		if !n.children[i].query(window, yield) {
			return false
		}
	}
	return true
}

func (n *node[T]) walk(yield func(Entry[T]) bool) bool {
	if n.children == nil {
		for _, e := range n.entries {
			if !yield(e) {
				return false
			}
		}
		return true
	}
	for i := range n.children {
		if !n.children[i].walk(yield) {
			return false
		}
	}
	return true
}
