package graph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
	"github.com/ttpr0/go-coverage/geo"
)

// *******************************************
// graph index interface
// *******************************************

type IGraphIndex interface {
	// Returns the node closest to the lon/lat point, false if the graph is empty.
	GetClosestNode(point orb.Point) (int32, bool)
}

//*******************************************
// graph index
//*******************************************

type _IndexedNode struct {
	point orb.Point
	id    int32
}

func (self _IndexedNode) Point() orb.Point {
	return self.point
}

// Nearest-node lookup on projected node coordinates.
type QuadGraphIndex struct {
	tree *quadtree.Quadtree
	proj geo.IProjection
	size int
}

func NewQuadGraphIndex(nodes []Node, proj geo.IProjection) *QuadGraphIndex {
	points := make(orb.MultiPoint, len(nodes))
	for i, node := range nodes {
		points[i] = node.Point
	}
	tree := quadtree.New(points.Bound())
	for i, node := range nodes {
		// the bound contains every node
		_ = tree.Add(_IndexedNode{point: node.Point, id: int32(i)})
	}
	return &QuadGraphIndex{
		tree: tree,
		proj: proj,
		size: len(nodes),
	}
}

func (self *QuadGraphIndex) GetClosestNode(point orb.Point) (int32, bool) {
	if self.size == 0 {
		return -1, false
	}
	found := self.tree.Find(self.proj.Proj(point))
	if found == nil {
		return -1, false
	}
	return found.(_IndexedNode).id, true
}
