package graph

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/attr"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/parser"
	. "github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
)

var ErrEmptyRegion = eris.New("graph: no road network within region")

type BuilderOptions struct {
	Projection geo.ProjectionType
	// keep all weakly connected components instead of the largest only
	RetainAll bool
	Weighting WeightType
}

// Builds region graphs from a parsed road network.
//
// Safe for concurrent use, the network is only read.
type Builder struct {
	network *parser.Network
	options BuilderOptions
}

func NewBuilder(network *parser.Network, options BuilderOptions) *Builder {
	return &Builder{
		network: network,
		options: options,
	}
}

// Builds the graph of all roads with both endpoints inside the region (lon/lat).
//
// Returns ErrEmptyRegion if no edge remains.
func (self *Builder) Build(ctx context.Context, region orb.MultiPolygon) (*RoadGraph, error) {
	if geo.IsEmpty(region) {
		return nil, eris.Wrap(ErrEmptyRegion, "region polygon is empty")
	}
	bound := region.Bound()

	// old node id => new node id, -1 if removed
	mapping := NewArray[int32](self.network.NodeCount())
	for i, node := range self.network.Nodes {
		if i%_CTX_CHECK_INTERVAL == 0 {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "graph: build cancelled")
			}
		}
		if bound.Contains(node.Point) && geo.Contains(region, node.Point) {
			mapping[i] = 0
		} else {
			mapping[i] = -1
		}
	}
	edge_ids := NewList[int32](self.network.EdgeCount() / 4)
	for i, edge := range self.network.Edges {
		if mapping[edge.NodeA] == -1 || mapping[edge.NodeB] == -1 {
			continue
		}
		edge_ids.Add(int32(i))
	}
	if edge_ids.Length() == 0 {
		return nil, eris.Wrapf(ErrEmptyRegion, "no edges within bound %v", bound)
	}
	if !self.options.RetainAll {
		_KeepLargestComponent(self.network, edge_ids, mapping)
	}

	proj := geo.NewLocalProjection(self.options.Projection, bound)
	nodes := NewList[Node](edge_ids.Length())
	for i, node := range self.network.Nodes {
		if mapping[i] == -1 {
			continue
		}
		mapping[i] = int32(nodes.Length())
		nodes.Add(Node{
			Loc:   node.Point,
			Point: proj.Proj(node.Point),
		})
	}
	edges := NewList[Edge](edge_ids.Length())
	edge_attribs := NewList[attr.EdgeAttribs](edge_ids.Length())
	for _, id := range edge_ids {
		edge := self.network.Edges[id]
		if mapping[edge.NodeA] == -1 || mapping[edge.NodeB] == -1 {
			continue
		}
		edges.Add(Edge{
			NodeA: mapping[edge.NodeA],
			NodeB: mapping[edge.NodeB],
		})
		edge_attribs.Add(edge.Attr)
	}
	if edges.Length() == 0 {
		return nil, eris.Wrapf(ErrEmptyRegion, "no edges within bound %v", bound)
	}

	g := BuildRoadGraph(Array[Node](nodes), Array[Edge](edges), Array[attr.EdgeAttribs](edge_attribs), proj, self.options.Weighting)
	slog.Debug("built region graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

const _CTX_CHECK_INTERVAL = 10000

// Assembles a road graph from nodes with lon/lat and projected coordinates.
func BuildRoadGraph(nodes Array[Node], edges Array[Edge], edge_attribs Array[attr.EdgeAttribs], proj geo.IProjection, weight WeightType) *RoadGraph {
	node_locs := NewArray[orb.Point](nodes.Length())
	node_points := NewArray[orb.Point](nodes.Length())
	for i, node := range nodes {
		node_locs[i] = node.Loc
		node_points[i] = node.Point
	}
	attributes := attr.New(edge_attribs, node_locs, node_points)
	return &RoadGraph{
		nodes:      nodes,
		edges:      edges,
		topology:   _BuildTopology(nodes.Length(), edges),
		attributes: attributes,
		weight:     NewWeighting(weight, attributes, edges.Length()),
		proj:       proj,
		index:      NewQuadGraphIndex(nodes, proj),
	}
}

//*******************************************
// build graph components
//*******************************************

func _BuildTopology(node_count int, edges Array[Edge]) _AdjacencyArray {
	fwd_start := make([]int32, node_count+1)
	bwd_start := make([]int32, node_count+1)
	for _, edge := range edges {
		fwd_start[edge.NodeA+1] += 1
		bwd_start[edge.NodeB+1] += 1
	}
	for i := 1; i <= node_count; i++ {
		fwd_start[i] += fwd_start[i-1]
		bwd_start[i] += bwd_start[i-1]
	}
	fwd_entries := make([]_AdjEntry, len(edges))
	bwd_entries := make([]_AdjEntry, len(edges))
	fwd_fill := make([]int32, node_count)
	bwd_fill := make([]int32, node_count)
	for id, edge := range edges {
		fwd_entries[fwd_start[edge.NodeA]+fwd_fill[edge.NodeA]] = _AdjEntry{EdgeID: int32(id), OtherID: edge.NodeB}
		fwd_fill[edge.NodeA] += 1
		bwd_entries[bwd_start[edge.NodeB]+bwd_fill[edge.NodeB]] = _AdjEntry{EdgeID: int32(id), OtherID: edge.NodeA}
		bwd_fill[edge.NodeB] += 1
	}
	return _AdjacencyArray{
		fwd_start:   fwd_start,
		fwd_entries: fwd_entries,
		bwd_start:   bwd_start,
		bwd_entries: bwd_entries,
	}
}

// Removes all nodes not in the largest weakly connected component by setting their mapping to -1.
func _KeepLargestComponent(network *parser.Network, edge_ids List[int32], mapping Array[int32]) {
	parent := NewArray[int32](network.NodeCount())
	for i := range parent {
		parent[i] = int32(i)
	}
	find := func(n int32) int32 {
		for parent[n] != n {
			parent[n] = parent[parent[n]]
			n = parent[n]
		}
		return n
	}
	for _, id := range edge_ids {
		edge := network.Edges[id]
		a := find(int32(edge.NodeA))
		b := find(int32(edge.NodeB))
		if a != b {
			parent[a] = b
		}
	}
	sizes := NewDict[int32, int](16)
	for i := range mapping {
		if mapping[i] == -1 {
			continue
		}
		sizes[find(int32(i))] += 1
	}
	largest := int32(-1)
	largest_size := 0
	for root, size := range sizes {
		if size > largest_size || (size == largest_size && root < largest) {
			largest = root
			largest_size = size
		}
	}
	removed := 0
	for i := range mapping {
		if mapping[i] == -1 {
			continue
		}
		if find(int32(i)) != largest {
			mapping[i] = -1
			removed += 1
		}
	}
	if removed > 0 {
		slog.Debug("removed disconnected nodes", "count", removed, "components", sizes.Length())
	}
}
