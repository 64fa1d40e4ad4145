package parser

import (
	"context"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/attr"
	. "github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
)

var ErrNoHighways = eris.New("parser: no highways found")

type ParseOptions struct {
	// only nodes within the bound are used, ways are split at missing nodes
	Bound  Optional[orb.Bound]
	Speeds SpeedOptions
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Bound:  None[orb.Bound](),
		Speeds: DefaultSpeedOptions(),
	}
}

// Parses the road network from an OSM source.
//
// The source is scanned three times: way node references, node locations and way segments.
// Edges carry haversine lengths and travel times computed from imputed speeds.
func ParseNetwork(ctx context.Context, open ScannerFunc, decoder IOSMDecoder, options ParseOptions) (*Network, error) {
	osm_nodes := NewDict[int64, TempNode](10000)
	if err := _InitWayHandler(ctx, open, decoder, osm_nodes); err != nil {
		return nil, err
	}
	if osm_nodes.Length() == 0 {
		return nil, ErrNoHighways
	}
	nodes := NewList[OSMNode](10000)
	index_mapping := NewDict[int64, int](10000)
	if err := _NodeHandler(ctx, open, options.Bound, osm_nodes, &nodes, index_mapping); err != nil {
		return nil, err
	}
	edges := NewList[OSMEdge](10000)
	if err := _WayHandler(ctx, open, decoder, osm_nodes, index_mapping, &edges); err != nil {
		return nil, err
	}
	ImputeSpeeds(edges, options.Speeds)
	network := _CreateNetwork(nodes, edges)
	slog.Info("parsed road network", "nodes", network.NodeCount(), "edges", network.EdgeCount())
	return network, nil
}

func _CreateNetwork(nodes List[OSMNode], edges List[OSMEdge]) *Network {
	directed := NewList[OSMEdge](edges.Length() * 2)
	for _, edge := range edges {
		edge.Attr.Length = orbgeo.LengthHaversine(orb.LineString(edge.Nodes))
		edge.Attr.TravelTime = attr.TravelTime(edge.Attr.Length, edge.Attr.Speed)
		if !edge.Attr.Oneway {
			directed.Add(edge)
			directed.Add(_ReverseEdge(edge))
		} else if edge.reversed {
			directed.Add(_ReverseEdge(edge))
		} else {
			directed.Add(edge)
		}
	}
	for i := range directed {
		directed[i].reversed = false
	}
	return &Network{
		Nodes: nodes,
		Edges: directed,
	}
}

func _ReverseEdge(edge OSMEdge) OSMEdge {
	points := NewList[orb.Point](edge.Nodes.Length())
	for i := edge.Nodes.Length() - 1; i >= 0; i-- {
		points.Add(edge.Nodes[i])
	}
	return OSMEdge{
		NodeA: edge.NodeB,
		NodeB: edge.NodeA,
		Attr:  edge.Attr,
		Nodes: points,
	}
}

//*******************************************
// osm handler methods
//*******************************************

const _CTX_CHECK_INTERVAL = 10000

func _Scan(ctx context.Context, open ScannerFunc, skip_nodes, skip_ways bool, handler func(osm.Object)) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "parser: scan cancelled")
	}
	scanner, err := open(ctx)
	if err != nil {
		return err
	}
	defer scanner.Close()
	if skipper, ok := scanner.(_Skipper); ok {
		skipper.Skip(skip_nodes, skip_ways, true)
	}
	c := 0
	for scanner.Scan() {
		c += 1
		if c%_CTX_CHECK_INTERVAL == 0 {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "parser: scan cancelled")
			}
		}
		handler(scanner.Object())
	}
	if err := scanner.Err(); err != nil {
		return eris.Wrap(err, "parser: failed to scan osm data")
	}
	return nil
}

func _InitWayHandler(ctx context.Context, open ScannerFunc, decoder IOSMDecoder, osm_nodes Dict[int64, TempNode]) error {
	return _Scan(ctx, open, true, false, func(object osm.Object) {
		way, ok := object.(*osm.Way)
		if !ok {
			return
		}
		tags := Dict[string, string](way.TagMap())
		if !decoder.IsValidHighway(tags) {
			return
		}
		refs := way.Nodes.NodeIDs()
		l := len(refs)
		if l < 2 {
			return
		}
		for i := 0; i < l; i++ {
			ndref := int64(refs[i])
			node := osm_nodes[ndref]
			node.Count += 1
			osm_nodes[ndref] = node
		}
		// way endpoints always become graph nodes
		for _, ndref := range []int64{int64(refs[0]), int64(refs[l-1])} {
			node := osm_nodes[ndref]
			node.Count += 1
			osm_nodes[ndref] = node
		}
	})
}

func _NodeHandler(ctx context.Context, open ScannerFunc, bound Optional[orb.Bound], osm_nodes Dict[int64, TempNode], nodes *List[OSMNode], index_mapping Dict[int64, int]) error {
	return _Scan(ctx, open, false, true, func(object osm.Object) {
		node, ok := object.(*osm.Node)
		if !ok {
			return
		}
		id := int64(node.ID)
		on, ok := osm_nodes[id]
		if !ok {
			return
		}
		on.Point = orb.Point{node.Lon, node.Lat}
		on.Present = !bound.HasValue() || bound.Value.Contains(on.Point)
		osm_nodes[id] = on
		if on.Present && on.Count > 1 {
			index_mapping[id] = nodes.Length()
			nodes.Add(OSMNode{ID: id, Point: on.Point})
		}
	})
}

func _WayHandler(ctx context.Context, open ScannerFunc, decoder IOSMDecoder, osm_nodes Dict[int64, TempNode], index_mapping Dict[int64, int], edges *List[OSMEdge]) error {
	return _Scan(ctx, open, true, false, func(object osm.Object) {
		way, ok := object.(*osm.Way)
		if !ok {
			return
		}
		tags := Dict[string, string](way.TagMap())
		if !decoder.IsValidHighway(tags) {
			return
		}
		edge_attr := decoder.DecodeEdge(tags)
		reversed := decoder.IsReversed(tags)

		has_start := false
		start := int64(0)
		points := NewList[orb.Point](4)
		for _, ref := range way.Nodes.NodeIDs() {
			curr := int64(ref)
			on, ok := osm_nodes[curr]
			if !ok || !on.Present {
				has_start = false
				continue
			}
			if !has_start {
				// segments start at graph nodes only
				if on.Count > 1 {
					has_start = true
					start = curr
					points = NewList[orb.Point](4)
					points.Add(on.Point)
				}
				continue
			}
			points.Add(on.Point)
			if on.Count < 2 {
				continue
			}
			if curr != start {
				edges.Add(OSMEdge{
					NodeA:    index_mapping[start],
					NodeB:    index_mapping[curr],
					Attr:     edge_attr,
					Nodes:    points,
					reversed: reversed,
				})
			}
			start = curr
			points = NewList[orb.Point](4)
			points.Add(on.Point)
		}
	})
}

//*******************************************
// osm decoder
//*******************************************

type IOSMDecoder interface {
	IsValidHighway(tags Dict[string, string]) bool
	DecodeEdge(tags Dict[string, string]) attr.EdgeAttribs
	// true if a oneway is traversed against the way direction
	IsReversed(tags Dict[string, string]) bool
}
