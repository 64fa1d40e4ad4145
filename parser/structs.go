package parser

import (
	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/attr"
	. "github.com/ttpr0/go-coverage/util"
)

//*******************************************
// parser structs
//*******************************************

type TempNode struct {
	Point orb.Point
	Count int32
	// false if the node was not found or lies outside of the parse bound
	Present bool
}
type OSMNode struct {
	ID    int64
	Point orb.Point
}
type OSMEdge struct {
	NodeA int
	NodeB int
	Attr  attr.EdgeAttribs
	Nodes List[orb.Point]

	reversed bool
}

// Directed road network of intersection nodes and way segments between them.
type Network struct {
	Nodes List[OSMNode]
	Edges List[OSMEdge]
}

func (self *Network) NodeCount() int {
	return self.Nodes.Length()
}
func (self *Network) EdgeCount() int {
	return self.Edges.Length()
}
