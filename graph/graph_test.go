package graph

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-coverage/attr"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/parser"
	. "github.com/ttpr0/go-coverage/util"
	"gopkg.in/yaml.v3"
)

// n x n grid with 0.001 degree spacing starting at origin plus one detached edge.
func _GridNetwork(origin orb.Point, n int) *parser.Network {
	network := &parser.Network{
		Nodes: NewList[parser.OSMNode](n*n + 2),
		Edges: NewList[parser.OSMEdge](4 * n * n),
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			network.Nodes.Add(parser.OSMNode{
				ID:    int64(y*n + x),
				Point: orb.Point{origin[0] + float64(x)*0.001, origin[1] + float64(y)*0.001},
			})
		}
	}
	add := func(a, b int) {
		pa := network.Nodes[a].Point
		pb := network.Nodes[b].Point
		e := attr.EdgeAttribs{Type: attr.RESIDENTIAL, Length: 111, Speed: 40}
		e.TravelTime = attr.TravelTime(e.Length, e.Speed)
		network.Edges.Add(parser.OSMEdge{NodeA: a, NodeB: b, Attr: e, Nodes: List[orb.Point]{pa, pb}})
		network.Edges.Add(parser.OSMEdge{NodeA: b, NodeB: a, Attr: e, Nodes: List[orb.Point]{pb, pa}})
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			id := y*n + x
			if x+1 < n {
				add(id, id+1)
			}
			if y+1 < n {
				add(id, id+n)
			}
		}
	}
	// detached component inside the grid bound
	network.Nodes.Add(parser.OSMNode{ID: 1000, Point: orb.Point{origin[0] + 0.0005, origin[1] + 0.0005}})
	network.Nodes.Add(parser.OSMNode{ID: 1001, Point: orb.Point{origin[0] + 0.0006, origin[1] + 0.0005}})
	add(n*n, n*n+1)
	return network
}

func _Square(min, max orb.Point) orb.MultiPolygon {
	return orb.MultiPolygon{{{min, {max[0], min[1]}, max, {min[0], max[1]}, min}}}
}

func TestBuildGraph(t *testing.T) {
	network := _GridNetwork(orb.Point{7, 50}, 3)
	builder := NewBuilder(network, BuilderOptions{Projection: geo.UTM})

	region := _Square(orb.Point{6.999, 49.999}, orb.Point{7.003, 50.003})
	g, err := builder.Build(context.Background(), region)
	require.NoError(t, err)

	assert.Equal(t, 9, g.NodeCount())
	assert.Equal(t, TRAVEL_TIME_WEIGHT, g.Weighting())
	assert.Equal(t, 24, g.EdgeCount())
	// center node of the grid
	assert.Equal(t, int32(4), g.GetNodeDegree(4, FORWARD))
	assert.Equal(t, int32(4), g.GetNodeDegree(4, BACKWARD))
	assert.Equal(t, int32(2), g.GetNodeDegree(0, FORWARD))

	explorer := g.GetGraphExplorer()
	count := 0
	explorer.ForAdjacentEdges(4, FORWARD, func(ref EdgeRef) {
		count += 1
		assert.Equal(t, ref.OtherID, explorer.GetOtherNode(ref, 4))
		assert.InDelta(t, 111/(40/3.6), explorer.GetEdgeWeight(ref), 1e-9)
	})
	assert.Equal(t, 4, count)

	// projected points are metric
	a := g.GetNodePoint(0)
	b := g.GetNodePoint(1)
	assert.InDelta(t, 71.5, b[0]-a[0], 1.5)
}

func TestBuildGraphDistanceWeighting(t *testing.T) {
	network := _GridNetwork(orb.Point{7, 50}, 3)
	builder := NewBuilder(network, BuilderOptions{Projection: geo.UTM, Weighting: DISTANCE_WEIGHT})

	g, err := builder.Build(context.Background(), _Square(orb.Point{6.999, 49.999}, orb.Point{7.003, 50.003}))
	require.NoError(t, err)
	assert.Equal(t, DISTANCE_WEIGHT, g.Weighting())

	explorer := g.GetGraphExplorer()
	explorer.ForAdjacentEdges(4, FORWARD, func(ref EdgeRef) {
		assert.InDelta(t, 111, explorer.GetEdgeWeight(ref), 1e-9)
	})
}

func TestWeightTypeFromString(t *testing.T) {
	w, err := WeightTypeFromString("distance")
	assert.NoError(t, err)
	assert.Equal(t, DISTANCE_WEIGHT, w)
	w, err = WeightTypeFromString("")
	assert.NoError(t, err)
	assert.Equal(t, TRAVEL_TIME_WEIGHT, w)
	_, err = WeightTypeFromString("fuel")
	assert.Error(t, err)

	var options struct {
		Weighting WeightType `yaml:"weighting"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("weighting: distance"), &options))
	assert.Equal(t, DISTANCE_WEIGHT, options.Weighting)
	assert.Equal(t, "travel_time", TRAVEL_TIME_WEIGHT.String())
}

func TestBuildGraphRetainAll(t *testing.T) {
	network := _GridNetwork(orb.Point{7, 50}, 3)
	builder := NewBuilder(network, BuilderOptions{Projection: geo.UTM, RetainAll: true})

	region := _Square(orb.Point{6.999, 49.999}, orb.Point{7.003, 50.003})
	g, err := builder.Build(context.Background(), region)
	require.NoError(t, err)
	assert.Equal(t, 11, g.NodeCount())
	assert.Equal(t, 26, g.EdgeCount())
}

func TestBuildGraphSubRegion(t *testing.T) {
	network := _GridNetwork(orb.Point{7, 50}, 3)
	builder := NewBuilder(network, BuilderOptions{Projection: geo.UTM})

	// lower row only
	region := _Square(orb.Point{6.999, 49.999}, orb.Point{7.003, 50.0005})
	g, err := builder.Build(context.Background(), region)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
}

func TestBuildGraphEmptyRegion(t *testing.T) {
	network := _GridNetwork(orb.Point{7, 50}, 3)
	builder := NewBuilder(network, BuilderOptions{Projection: geo.UTM})

	ocean := _Square(orb.Point{-30, 40}, orb.Point{-29, 41})
	g, err := builder.Build(context.Background(), ocean)
	assert.Nil(t, g)
	assert.True(t, eris.Is(err, ErrEmptyRegion))

	g, err = builder.Build(context.Background(), orb.MultiPolygon{})
	assert.Nil(t, g)
	assert.True(t, eris.Is(err, ErrEmptyRegion))
}

func TestBuildGraphCancelled(t *testing.T) {
	network := _GridNetwork(orb.Point{7, 50}, 3)
	builder := NewBuilder(network, BuilderOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := builder.Build(ctx, _Square(orb.Point{6.999, 49.999}, orb.Point{7.003, 50.003}))
	assert.True(t, eris.Is(err, context.Canceled))
}

func TestGetClosestNode(t *testing.T) {
	network := _GridNetwork(orb.Point{7, 50}, 3)
	builder := NewBuilder(network, BuilderOptions{Projection: geo.UTM})
	g, err := builder.Build(context.Background(), _Square(orb.Point{6.999, 49.999}, orb.Point{7.003, 50.003}))
	require.NoError(t, err)

	node, ok := g.GetClosestNode(orb.Point{7.0011, 50.0009})
	require.True(t, ok)
	_AssertPoint(t, orb.Point{7.001, 50.001}, g.GetNodeGeom(node))

	// far outside of the region still resolves to the nearest node
	node, ok = g.GetClosestNode(orb.Point{7.1, 50.1})
	require.True(t, ok)
	_AssertPoint(t, orb.Point{7.002, 50.002}, g.GetNodeGeom(node))
}

func _AssertPoint(t *testing.T, expected, actual orb.Point) {
	assert.InDelta(t, expected[0], actual[0], 1e-9)
	assert.InDelta(t, expected[1], actual[1], 1e-9)
}
