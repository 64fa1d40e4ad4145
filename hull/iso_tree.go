package hull

import (
	"math"

	. "github.com/ttpr0/go-coverage/util"
)

//**********************************************************
// sparse cell quadtree
//**********************************************************

type IsoNode[T any] struct {
	Value T
	level int32
	// index of the lower left cell at maxlevel closest to the node center
	x int32
	y int32
	// index of the node within its level
	cellx int32
	celly int32
	// [ 3 ] [ 2 ]
	// [ 0 ] [ 1 ]
	children [4]*IsoNode[T]
}

func _NewIsoNode[T any](level, cellx, celly int32, maxlevel int32) *IsoNode[T] {
	factor := int32(1) << (maxlevel - level)
	x := cellx
	y := celly
	if factor > 1 {
		x = cellx*factor + factor/2 - 1
		y = celly*factor + factor/2 - 1
	}
	return &IsoNode[T]{
		level: level,
		x:     x,
		y:     y,
		cellx: cellx,
		celly: celly,
	}
}

func (self *IsoNode[T]) _Quadrant(x, y int32) int {
	switch {
	case x <= self.x && y <= self.y:
		return 0
	case x > self.x && y <= self.y:
		return 1
	case x > self.x && y > self.y:
		return 2
	default:
		return 3
	}
}

func (self *IsoNode[T]) _CreateChild(quadrant int, maxlevel int32) *IsoNode[T] {
	cellx := 2 * self.cellx
	celly := 2 * self.celly
	if quadrant == 1 || quadrant == 2 {
		cellx += 1
	}
	if quadrant == 2 || quadrant == 3 {
		celly += 1
	}
	child := _NewIsoNode[T](self.level+1, cellx, celly, maxlevel)
	self.children[quadrant] = child
	return child
}

// Sparse grid of cell values stored in a quadtree, cells outside of the extent are ignored.
type IsoTree[T any] struct {
	root *IsoNode[T]
	// lower and upper bound in x and y direction ([minx, miny, maxx, maxy])
	extent [4]int32
	depth  int32
}

// Creates and returns a new IsoTree.
//
// extent should contain lower and upper bound in x and y direction ([minx, miny, maxx, maxy]), both inclusive.
//
// depth is the smallest power of 2 covering the extent.
func NewIsoTree[T any](extent [4]int32) *IsoTree[T] {
	dx := extent[2] - extent[0]
	dy := extent[3] - extent[1]
	d := Max(dx, dy)
	depth := int32(math.Ceil(math.Log2(float64(d + 1))))
	if depth < 1 {
		depth = 1
	}
	return &IsoTree[T]{
		extent: extent,
		depth:  depth,
	}
}

func (self *IsoTree[T]) _InExtent(x, y int32) bool {
	return x >= self.extent[0] && x <= self.extent[2] && y >= self.extent[1] && y <= self.extent[3]
}

// Returns the value at the given cell and a bool indicating if the cell is set.
func (self *IsoTree[T]) Get(x int32, y int32) (T, bool) {
	var t T
	if !self._InExtent(x, y) {
		return t, false
	}
	cx := x - self.extent[0]
	cy := y - self.extent[1]
	node := self.root
	for node != nil && node.level < self.depth {
		node = node.children[node._Quadrant(cx, cy)]
	}
	if node == nil {
		return t, false
	}
	return node.Value, true
}

// Inserts or updates the cell, value receives the old value (zero value for new cells).
func (self *IsoTree[T]) Insert(x, y int32, value func(T) T) {
	if !self._InExtent(x, y) {
		return
	}
	cx := x - self.extent[0]
	cy := y - self.extent[1]
	if self.root == nil {
		self.root = _NewIsoNode[T](0, 0, 0, self.depth)
	}
	node := self.root
	for node.level < self.depth {
		quadrant := node._Quadrant(cx, cy)
		child := node.children[quadrant]
		if child == nil {
			child = node._CreateChild(quadrant, self.depth)
		}
		node = child
	}
	node.Value = value(node.Value)
}

func (self *IsoTree[T]) InsertValue(x, y int32, value T) {
	self.Insert(x, y, func(T) T {
		return value
	})
}

// Iterates all set cells as (x, y, value).
func (self *IsoTree[T]) Traverse() func(yield func(Triple[int32, int32, T]) bool) {
	var traverse func(node *IsoNode[T], yield func(Triple[int32, int32, T]) bool) bool
	traverse = func(node *IsoNode[T], yield func(Triple[int32, int32, T]) bool) bool {
		if node == nil {
			return true
		}
		if node.level == self.depth {
			return yield(MakeTriple(node.x+self.extent[0], node.y+self.extent[1], node.Value))
		}
		for _, child := range node.children {
			if !traverse(child, yield) {
				return false
			}
		}
		return true
	}
	return func(yield func(Triple[int32, int32, T]) bool) {
		traverse(self.root, yield)
	}
}

// Number of set cells.
func (self *IsoTree[T]) Count() int {
	count := 0
	self.Traverse()(func(Triple[int32, int32, T]) bool {
		count += 1
		return true
	})
	return count
}
