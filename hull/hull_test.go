package hull

import (
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/util"
	"gopkg.in/yaml.v3"
)

func _RandomPoints(rng *rand.Rand, n int, size float64) []orb.Point {
	points := make([]orb.Point, n)
	for i := range points {
		points[i] = orb.Point{rng.Float64() * size, rng.Float64() * size}
	}
	return points
}

func _JitteredGrid(rng *rand.Rand, nx, ny int, spacing float64) []orb.Point {
	points := make([]orb.Point, 0, nx*ny)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			points = append(points, orb.Point{
				float64(x)*spacing + (rng.Float64()-0.5)*0.01*spacing,
				float64(y)*spacing + (rng.Float64()-0.5)*0.01*spacing,
			})
		}
	}
	return points
}

func _MustExtractor(t *testing.T, options Options) IHullExtractor {
	extractor, err := NewExtractor(options)
	require.NoError(t, err)
	return extractor
}

func TestConvexContainsPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	extractor := _MustExtractor(t, DefaultOptions())
	for i := 0; i < 20; i++ {
		points := _RandomPoints(rng, 3+rng.Intn(200), 5000)
		result := extractor.Extract(points)
		require.False(t, result.NoCoverage)
		assert.Equal(t, CONVEX, result.Strategy)
		require.Len(t, result.Polygon, 1)
		assert.True(t, geo.IsCounterClockwise(result.Polygon[0][0]))
		for _, p := range points {
			assert.True(t, geo.Contains(result.Polygon, p), "point %v outside hull", p)
		}
	}
}

// Gift wrapping hull area used as reference.
func _WrappedHullArea(points []orb.Point) float64 {
	start := 0
	for i, p := range points {
		if p[0] < points[start][0] || (p[0] == points[start][0] && p[1] < points[start][1]) {
			start = i
		}
	}
	hull := []orb.Point{}
	current := start
	for {
		hull = append(hull, points[current])
		next := (current + 1) % len(points)
		for i := range points {
			if _Orientation(points[current], points[next], points[i]) < 0 {
				next = i
			}
		}
		current = next
		if current == start || len(hull) > len(points) {
			break
		}
	}
	area := 0.0
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		area += a[0]*b[1] - b[0]*a[1]
	}
	return math.Abs(area) / 2
}

func TestConvexLargeInputUTM(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	extractor := _MustExtractor(t, DefaultOptions())
	for i := 0; i < 100; i++ {
		n := 51 + rng.Intn(400)
		points := make([]orb.Point, n)
		for j := range points {
			points[j] = orb.Point{500000 + rng.Float64()*4000, 4800000 + rng.Float64()*4000}
		}
		result := extractor.Extract(points)
		require.False(t, result.NoCoverage)
		require.Len(t, result.Polygon, 1)
		ring := result.Polygon[0][0]
		assert.True(t, geo.IsCounterClockwise(ring))
		for _, p := range points {
			for k := 0; k+1 < len(ring); k++ {
				// every point on the left of or on every hull edge
				assert.GreaterOrEqual(t, _Orientation(ring[k], ring[k+1], p), -1e-3, "point %v outside hull", p)
			}
		}
		want := _WrappedHullArea(points)
		assert.InDelta(t, want, geo.Area(result.Polygon), want*1e-9, "set %d with %d points", i, n)
	}
}

func TestConvexSquare(t *testing.T) {
	extractor := _MustExtractor(t, DefaultOptions())
	result := extractor.Extract([]orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}})
	require.False(t, result.NoCoverage)
	assert.InDelta(t, 100, geo.Area(result.Polygon), 1e-9)
}

func TestNoCoverage(t *testing.T) {
	for _, strategy := range []Strategy{CONVEX, ALPHA, RASTER} {
		options := DefaultOptions()
		options.Strategy = strategy
		extractor := _MustExtractor(t, options)

		assert.True(t, extractor.Extract(nil).NoCoverage, strategy.String())
		assert.True(t, extractor.Extract([]orb.Point{{1, 1}}).NoCoverage, strategy.String())
		assert.True(t, extractor.Extract([]orb.Point{{1, 1}, {2, 2}}).NoCoverage, strategy.String())
		// duplicates do not count as distinct points
		result := extractor.Extract([]orb.Point{{1, 1}, {1, 1}, {2, 2}, {2, 2}})
		assert.True(t, result.NoCoverage, strategy.String())
		assert.True(t, geo.IsEmpty(result.Polygon))
	}
}

func TestCollinear(t *testing.T) {
	points := []orb.Point{{0, 0}, {10, 10}, {20, 20}, {5, 5}}

	extractor := _MustExtractor(t, DefaultOptions())
	assert.True(t, extractor.Extract(points).NoCoverage)

	options := DefaultOptions()
	options.Buffer = 10
	extractor = _MustExtractor(t, options)
	result := extractor.Extract(points)
	require.False(t, result.NoCoverage)
	for _, p := range points {
		assert.True(t, geo.Contains(result.Polygon, p))
	}

	options.Strategy = ALPHA
	extractor = _MustExtractor(t, options)
	result = extractor.Extract(points)
	require.False(t, result.NoCoverage)
	assert.True(t, result.Fallback)
	assert.Equal(t, CONVEX, result.Strategy)
}

func TestTriangulate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := _RandomPoints(rng, 300, 1000)
	triangles := _Triangulate(points)

	convex := _MustExtractor(t, DefaultOptions()).Extract(points)
	hull_area := geo.Area(convex.Polygon)
	hull_vertices := len(convex.Polygon[0][0]) - 1

	area := 0.0
	for _, tri := range triangles {
		area += math.Abs(_Orientation(points[tri.a], points[tri.b], points[tri.c])) / 2
	}
	assert.InDelta(t, hull_area, area, hull_area*1e-6)
	assert.Equal(t, 2*len(points)-2-hull_vertices, len(triangles))
}

func TestAlphaGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	points := _JitteredGrid(rng, 10, 10, 10)
	options := DefaultOptions()
	options.Strategy = ALPHA
	options.Alpha = 1.0 / 50
	result := _MustExtractor(t, options).Extract(points)

	require.False(t, result.NoCoverage)
	assert.False(t, result.Fallback)
	assert.Equal(t, ALPHA, result.Strategy)
	assert.InDelta(t, 8100, geo.Area(result.Polygon), 100)
}

func TestAlphaConcave(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	// L shape: 10x3 bottom bar and 3x10 left bar
	points := make([]orb.Point, 0)
	for _, p := range _JitteredGrid(rng, 10, 10, 10) {
		if p[0] < 25 || p[1] < 25 {
			points = append(points, p)
		}
	}
	options := DefaultOptions()
	options.Strategy = ALPHA
	options.Alpha = 1.0 / 12
	alpha := _MustExtractor(t, options).Extract(points)
	convex := _MustExtractor(t, DefaultOptions()).Extract(points)

	require.False(t, alpha.NoCoverage)
	assert.Less(t, geo.Area(alpha.Polygon), 0.6*geo.Area(convex.Polygon))
	assert.NoError(t, geo.ValidateMultiPolygon(alpha.Polygon))
}

func TestAlphaFallback(t *testing.T) {
	options := DefaultOptions()
	options.Strategy = ALPHA
	options.Alpha = 1
	result := _MustExtractor(t, options).Extract([]orb.Point{{0, 0}, {100, 0}, {0, 100}, {100, 100}, {40, 60}})
	require.False(t, result.NoCoverage)
	assert.True(t, result.Fallback)
	assert.Equal(t, CONVEX, result.Strategy)
	assert.InDelta(t, 10000, geo.Area(result.Polygon), 1e-6)
}

func TestRasterCells(t *testing.T) {
	options := DefaultOptions()
	options.Strategy = RASTER
	options.CellSize = 10
	options.Dilation = 0
	points := []orb.Point{{5, 5}, {15, 5}, {25, 5}}

	result := _MustExtractor(t, options).Extract(points)
	require.False(t, result.NoCoverage)
	assert.Equal(t, RASTER, result.Strategy)
	require.Len(t, result.Polygon, 1)
	assert.InDelta(t, 300, geo.Area(result.Polygon), 1e-9)
	assert.Len(t, result.Polygon[0][0], 5)
	for _, p := range points {
		assert.True(t, geo.Contains(result.Polygon, p))
	}

	options.Dilation = 1
	result = _MustExtractor(t, options).Extract(points)
	assert.InDelta(t, 1500, geo.Area(result.Polygon), 1e-9)
}

func TestRasterHole(t *testing.T) {
	options := DefaultOptions()
	options.Strategy = RASTER
	options.CellSize = 10
	options.Dilation = 0
	points := make([]orb.Point, 0)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			if x == 1 && y == 1 {
				continue
			}
			points = append(points, orb.Point{float64(x)*10 + 5, float64(y)*10 + 5})
		}
	}
	result := _MustExtractor(t, options).Extract(points)
	require.Len(t, result.Polygon, 1)
	assert.Len(t, result.Polygon[0], 2)
	assert.InDelta(t, 800, geo.Area(result.Polygon), 1e-9)
	assert.False(t, geo.Contains(result.Polygon, orb.Point{15, 15}))
}

func TestRasterDiagonal(t *testing.T) {
	options := DefaultOptions()
	options.Strategy = RASTER
	options.CellSize = 10
	options.Dilation = 0
	result := _MustExtractor(t, options).Extract([]orb.Point{{5, 5}, {15, 15}, {26, 5}})
	assert.Len(t, result.Polygon, 3)
	assert.InDelta(t, 300, geo.Area(result.Polygon), 1e-9)
}

func TestRasterPinchedHole(t *testing.T) {
	options := DefaultOptions()
	options.Strategy = RASTER
	options.CellSize = 10
	options.Dilation = 0
	// center cell empty, touching the empty upper left cell at a corner
	points := []orb.Point{{5, 5}, {15, 5}, {25, 5}, {5, 15}, {25, 15}, {15, 25}, {25, 25}}

	result := _MustExtractor(t, options).Extract(points)
	require.False(t, result.NoCoverage)
	assert.Equal(t, RASTER, result.Strategy)
	assert.NoError(t, geo.ValidateMultiPolygon(result.Polygon))
	assert.InDelta(t, 700, geo.Area(result.Polygon), 1e-9)
	assert.False(t, geo.Contains(result.Polygon, orb.Point{15, 15}))
	for _, p := range points {
		assert.True(t, geo.Contains(result.Polygon, p))
	}
}

func TestStrategyFromString(t *testing.T) {
	s, err := StrategyFromString("alpha")
	assert.NoError(t, err)
	assert.Equal(t, ALPHA, s)
	s, err = StrategyFromString("Raster")
	assert.NoError(t, err)
	assert.Equal(t, RASTER, s)
	_, err = StrategyFromString("hexagon")
	assert.Error(t, err)

	var options struct {
		Strategy Strategy `yaml:"strategy"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("strategy: raster"), &options))
	assert.Equal(t, RASTER, options.Strategy)
	assert.Error(t, yaml.Unmarshal([]byte("strategy: round"), &options))
}

func TestOptionsValidate(t *testing.T) {
	options := DefaultOptions()
	options.Strategy = ALPHA
	options.Alpha = 0
	_, err := NewExtractor(options)
	assert.Error(t, err)

	options = DefaultOptions()
	options.Strategy = RASTER
	options.CellSize = -1
	_, err = NewExtractor(options)
	assert.Error(t, err)
}

func TestIsoTree(t *testing.T) {
	tree := NewIsoTree[int]([4]int32{-5, -5, 5, 5})
	assert.Equal(t, int32(4), tree.depth)
	tree.InsertValue(-5, -5, 1)
	tree.InsertValue(5, 5, 2)
	tree.Insert(5, 5, func(old int) int { return old + 1 })
	tree.InsertValue(10, 10, 3)

	v, ok := tree.Get(5, 5)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	v, ok = tree.Get(-5, -5)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = tree.Get(0, 0)
	assert.False(t, ok)
	_, ok = tree.Get(10, 10)
	assert.False(t, ok)
	assert.Equal(t, 2, tree.Count())

	values := map[int]bool{}
	tree.Traverse()(func(cell util.Triple[int32, int32, int]) bool {
		values[cell.C] = true
		return true
	})
	assert.Equal(t, map[int]bool{1: true, 3: true}, values)

	single := NewIsoTree[int]([4]int32{3, 3, 3, 3})
	single.InsertValue(3, 3, 7)
	v, ok = single.Get(3, 3)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}
