package hull

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
)

//**********************************************************
// raster hull
//**********************************************************

// Outline of the grid cells touched by the points.
//
// Every point is rasterized into its cell plus dilation cells in each direction, the boundary
// of the occupied cells is traced with marching squares.
type RasterExtractor struct {
	cell_size float64
	dilation  int
	fallback  *ConvexExtractor
}

type IRasterizer interface {
	PointToIndex(orb.Point) (int32, int32)
	IndexToPoint(int32, int32) orb.Point
	GetCellSize() float64
}

type DefaultRasterizer struct {
	factor   float64
	cellsize float64
}

func NewRasterizer(cellsize float64) *DefaultRasterizer {
	return &DefaultRasterizer{
		factor:   1 / cellsize,
		cellsize: cellsize,
	}
}

func (self *DefaultRasterizer) PointToIndex(point orb.Point) (int32, int32) {
	return int32(math.Floor(point[0] * self.factor)), int32(math.Floor(point[1] * self.factor))
}

// Lower left corner of the cell.
func (self *DefaultRasterizer) IndexToPoint(x, y int32) orb.Point {
	return orb.Point{float64(x) * self.cellsize, float64(y) * self.cellsize}
}

func (self *DefaultRasterizer) GetCellSize() float64 {
	return self.cellsize
}

func (self *RasterExtractor) Extract(points []orb.Point) Result {
	points, ok := _PreparePoints(points)
	if !ok {
		return _NoCoverage(RASTER)
	}
	rasterizer := NewRasterizer(self.cell_size)
	cells := self._Rasterize(points, rasterizer)
	polygon := _TraceCells(cells, rasterizer)
	if geo.IsEmpty(polygon) {
		slog.Debug("hull: raster outline is empty, using convex hull", "points", len(points))
		return _WithFallback(self.fallback.Extract(points), RASTER)
	}
	return Result{
		Polygon:  polygon,
		Strategy: RASTER,
	}
}

func (self *RasterExtractor) _Rasterize(points []orb.Point, rasterizer IRasterizer) *IsoTree[int] {
	d := int32(self.dilation)
	if d < 0 {
		d = 0
	}
	minx, miny := int32(math.MaxInt32), int32(math.MaxInt32)
	maxx, maxy := int32(math.MinInt32), int32(math.MinInt32)
	for _, p := range points {
		x, y := rasterizer.PointToIndex(p)
		minx = min(minx, x)
		miny = min(miny, y)
		maxx = max(maxx, x)
		maxy = max(maxy, y)
	}
	// one empty cell ring around the occupied cells
	cells := NewIsoTree[int]([4]int32{minx - d - 1, miny - d - 1, maxx + d + 1, maxy + d + 1})
	count := func(old int) int {
		return old + 1
	}
	for _, p := range points {
		x, y := rasterizer.PointToIndex(p)
		for dx := -d; dx <= d; dx++ {
			for dy := -d; dy <= d; dy++ {
				cells.Insert(x+dx, y+dy, count)
			}
		}
	}
	return cells
}

//**********************************************************
// marching squares
//**********************************************************

// Returns the type of square at the given location (x,y is lower left corner of the square).
//
// Bits 1, 2, 4, 8 are set for the lower left, lower right, upper right and upper left cell.
func _GetMarchingSquareIndex(cells *IsoTree[int], x, y int32) int {
	key := 0
	if _, ok := cells.Get(x, y); ok {
		key += 1
	}
	if _, ok := cells.Get(x+1, y); ok {
		key += 2
	}
	if _, ok := cells.Get(x+1, y+1); ok {
		key += 4
	}
	if _, ok := cells.Get(x, y+1); ok {
		key += 8
	}
	return key
}

// Emits the directed outline edges (interior on the left) around the shared corner of the
// square whose lower left cell is (x, y).
//
// Edges follow the cell borders, so the outline contains every occupied cell.
func _SquareEdges(index int, x, y int32, rasterizer IRasterizer, emit func(a, b orb.Point)) {
	if index == 0 || index == 15 {
		return
	}
	size := rasterizer.GetCellSize()
	corner := rasterizer.IndexToPoint(x+1, y+1)
	down := orb.Point{corner[0], corner[1] - size/2}
	right := orb.Point{corner[0] + size/2, corner[1]}
	up := orb.Point{corner[0], corner[1] + size/2}
	left := orb.Point{corner[0] - size/2, corner[1]}

	// half edges on the border between occupied and free cells, per neighbouring pair
	lower_left := index&1 != 0
	lower_right := index&2 != 0
	upper_right := index&4 != 0
	upper_left := index&8 != 0
	if lower_left != lower_right {
		if lower_left {
			emit(down, corner)
		} else {
			emit(corner, down)
		}
	}
	if lower_right != upper_right {
		if lower_right {
			emit(right, corner)
		} else {
			emit(corner, right)
		}
	}
	if upper_right != upper_left {
		if upper_right {
			emit(up, corner)
		} else {
			emit(corner, up)
		}
	}
	if upper_left != lower_left {
		if upper_left {
			emit(left, corner)
		} else {
			emit(corner, left)
		}
	}
}

func _TraceCells(cells *IsoTree[int], rasterizer IRasterizer) orb.MultiPolygon {
	visited := NewIsoTree[int](cells.extent)
	edges := make([]geo.Segment, 0, 4*cells.Count())
	emit := func(a, b orb.Point) {
		edges = append(edges, geo.Segment{A: a, B: b})
	}
	cells.Traverse()(func(cell util.Triple[int32, int32, int]) bool {
		// every square touching the cell
		for _, offset := range [4][2]int32{{0, 0}, {-1, 0}, {0, -1}, {-1, -1}} {
			x := cell.A + offset[0]
			y := cell.B + offset[1]
			if _, done := visited.Get(x, y); done {
				continue
			}
			visited.InsertValue(x, y, 1)
			_SquareEdges(_GetMarchingSquareIndex(cells, x, y), x, y, rasterizer, emit)
		}
		return true
	})
	polygon := geo.Polygonize(edges)
	for i := range polygon {
		for j := range polygon[i] {
			polygon[i][j] = _RemoveCollinear(polygon[i][j])
		}
	}
	return polygon
}

// Drops ring vertices lying on the line between their neighbours.
func _RemoveCollinear(ring orb.Ring) orb.Ring {
	if len(ring) < 5 {
		return ring
	}
	points := ring[:len(ring)-1]
	n := len(points)
	result := make(orb.Ring, 0, len(ring))
	for i := 0; i < n; i++ {
		prev := points[(i+n-1)%n]
		next := points[(i+1)%n]
		if math.Abs(_Orientation(prev, points[i], next)) < 1e-9 {
			continue
		}
		result = append(result, points[i])
	}
	if len(result) < 3 {
		return ring
	}
	return append(result, result[0])
}
