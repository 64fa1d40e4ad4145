package graph

import (
	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/attr"
	"github.com/ttpr0/go-coverage/geo"
	. "github.com/ttpr0/go-coverage/util"
)

//*******************************************
// graph interfaces
//******************************************

type IGraph interface {
	GetGraphExplorer() IGraphExplorer
	NodeCount() int
	EdgeCount() int
	IsNode(node int32) bool
	GetNode(node int32) Node
	GetEdge(edge int32) Edge
	GetNodeGeom(node int32) orb.Point
	GetClosestNode(point orb.Point) (int32, bool)
}

// not thread safe, use only one instance per goroutine
type IGraphExplorer interface {
	// Iterates through the adjacency of a node calling the callback for every edge.
	//
	// direction tells the traversel direction (FORWARD means outgoing edges, BACKWARD ingoing edges)
	ForAdjacentEdges(node int32, dir Direction, callback func(EdgeRef))
	GetEdgeWeight(edge EdgeRef) float64
	GetOtherNode(edge EdgeRef, node int32) int32
}

//*******************************************
// road graph
//******************************************

// Immutable weighted road graph of one region, weights are travel times or edge lengths.
//
// Nodes carry lon/lat and projected coordinates, the projection is local to the region.
type RoadGraph struct {
	nodes      Array[Node]
	edges      Array[Edge]
	topology   _AdjacencyArray
	attributes *attr.GraphAttributes
	weight     IWeighting
	proj       geo.IProjection
	index      IGraphIndex
}

func (self *RoadGraph) GetGraphExplorer() IGraphExplorer {
	return &RoadGraphExplorer{
		graph:  self,
		weight: self.weight,
	}
}
func (self *RoadGraph) Weighting() WeightType {
	return self.weight.Type()
}
func (self *RoadGraph) NodeCount() int {
	return len(self.nodes)
}
func (self *RoadGraph) EdgeCount() int {
	return len(self.edges)
}
func (self *RoadGraph) IsNode(node int32) bool {
	return node >= 0 && int(node) < len(self.nodes)
}
func (self *RoadGraph) GetNode(node int32) Node {
	return self.nodes[node]
}
func (self *RoadGraph) GetEdge(edge int32) Edge {
	return self.edges[edge]
}
func (self *RoadGraph) GetNodeGeom(node int32) orb.Point {
	return self.nodes[node].Loc
}
func (self *RoadGraph) GetNodePoint(node int32) orb.Point {
	return self.nodes[node].Point
}
func (self *RoadGraph) GetEdgeAttribs(edge int32) attr.EdgeAttribs {
	return self.attributes.GetEdgeAttribs(edge)
}
func (self *RoadGraph) GetNodeDegree(node int32, dir Direction) int32 {
	return self.topology.GetDegree(node, dir)
}

// Returns the globally nearest node, even for points outside of the graph region.
func (self *RoadGraph) GetClosestNode(point orb.Point) (int32, bool) {
	return self.index.GetClosestNode(point)
}
func (self *RoadGraph) Projection() geo.IProjection {
	return self.proj
}

// Projected coordinates of the given nodes.
func (self *RoadGraph) NodePoints(nodes []int32) []orb.Point {
	points := make([]orb.Point, len(nodes))
	for i, node := range nodes {
		points[i] = self.nodes[node].Point
	}
	return points
}

//*******************************************
// road graph explorer
//******************************************

type RoadGraphExplorer struct {
	graph  *RoadGraph
	weight IWeighting
}

func (self *RoadGraphExplorer) ForAdjacentEdges(node int32, direction Direction, callback func(EdgeRef)) {
	for _, entry := range self.graph.topology.GetAdjacency(node, direction) {
		callback(EdgeRef{
			EdgeID:  entry.EdgeID,
			OtherID: entry.OtherID,
		})
	}
}
func (self *RoadGraphExplorer) GetEdgeWeight(edge EdgeRef) float64 {
	return self.weight.GetEdgeWeight(edge.EdgeID)
}
func (self *RoadGraphExplorer) GetOtherNode(edge EdgeRef, node int32) int32 {
	e := self.graph.GetEdge(edge.EdgeID)
	if node == e.NodeA {
		return e.NodeB
	}
	if node == e.NodeB {
		return e.NodeA
	}
	return -1
}
