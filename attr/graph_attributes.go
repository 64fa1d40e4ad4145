package attr

import (
	"github.com/paulmach/orb"
	. "github.com/ttpr0/go-coverage/util"
)

type IAttributes interface {
	GetEdgeAttribs(edge int32) EdgeAttribs
	// longitude/latitude of the node
	GetNodeLoc(node int32) orb.Point
	// projected location of the node
	GetNodePoint(node int32) orb.Point
}

type GraphAttributes struct {
	edge_attribs Array[EdgeAttribs]
	node_locs    Array[orb.Point]
	node_points  Array[orb.Point]
}

func New(edges Array[EdgeAttribs], node_locs Array[orb.Point], node_points Array[orb.Point]) *GraphAttributes {
	return &GraphAttributes{
		edge_attribs: edges,
		node_locs:    node_locs,
		node_points:  node_points,
	}
}

func (self *GraphAttributes) GetEdgeAttribs(edge int32) EdgeAttribs {
	return self.edge_attribs[edge]
}
func (self *GraphAttributes) GetNodeLoc(node int32) orb.Point {
	return self.node_locs[node]
}
func (self *GraphAttributes) GetNodePoint(node int32) orb.Point {
	return self.node_points[node]
}
func (self *GraphAttributes) NodePoints() Array[orb.Point] {
	return self.node_points
}
