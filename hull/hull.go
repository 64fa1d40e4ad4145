package hull

import (
	"encoding/json"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/geo"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// strategies
//**********************************************************

type Strategy byte

const (
	CONVEX Strategy = 0
	ALPHA  Strategy = 1
	RASTER Strategy = 2
)

func (self Strategy) String() string {
	switch self {
	case CONVEX:
		return "convex"
	case ALPHA:
		return "alpha"
	case RASTER:
		return "raster"
	default:
		return "unknown"
	}
}

func (self Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self Strategy) MarshalYAML() (any, error) {
	return self.String(), nil
}
func (self *Strategy) UnmarshalYAML(value *yaml.Node) error {
	strategy, err := StrategyFromString(value.Value)
	if err != nil {
		return err
	}
	*self = strategy
	return nil
}

func StrategyFromString(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "convex", "":
		return CONVEX, nil
	case "alpha", "concave":
		return ALPHA, nil
	case "raster":
		return RASTER, nil
	default:
		return CONVEX, eris.Errorf("hull: unknown strategy %q", s)
	}
}

//**********************************************************
// hull extractor
//**********************************************************

type Options struct {
	Strategy Strategy `yaml:"strategy"`
	// alpha shapes keep triangles with circumradius <= 1/Alpha (meters)
	Alpha float64 `yaml:"alpha"`
	// raster cell size in meters
	CellSize float64 `yaml:"cell_size"`
	// number of cells added around every rasterized point
	Dilation int `yaml:"dilation"`
	// buffer radius in meters for collinear point sets, 0 disables buffering
	Buffer float64 `yaml:"buffer"`
	// segments used to approximate circular buffers
	Segments int `yaml:"segments"`
}

func DefaultOptions() Options {
	return Options{
		Strategy: CONVEX,
		Alpha:    1.0 / 500,
		CellSize: 100,
		Dilation: 1,
		Buffer:   0,
		Segments: 16,
	}
}

func (self Options) Validate() error {
	if self.Strategy == ALPHA && self.Alpha <= 0 {
		return eris.Errorf("hull: alpha must be positive, got %v", self.Alpha)
	}
	if self.Strategy == RASTER && self.CellSize <= 0 {
		return eris.Errorf("hull: cell size must be positive, got %v", self.CellSize)
	}
	if self.Buffer < 0 {
		return eris.Errorf("hull: buffer must not be negative, got %v", self.Buffer)
	}
	return nil
}

// Outcome of a hull extraction in projected coordinates.
//
// NoCoverage marks point sets that do not span an area, Polygon is empty then.
type Result struct {
	Polygon    orb.MultiPolygon
	NoCoverage bool
	// strategy that produced the polygon
	Strategy Strategy
	// true if the configured strategy failed and another one was used
	Fallback bool
}

func _NoCoverage(strategy Strategy) Result {
	return Result{NoCoverage: true, Strategy: strategy}
}

type IHullExtractor interface {
	Extract(points []orb.Point) Result
}

func NewExtractor(options Options) (IHullExtractor, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if options.Segments < 4 {
		options.Segments = 16
	}
	convex := &ConvexExtractor{buffer: options.Buffer, segments: options.Segments}
	switch options.Strategy {
	case CONVEX:
		return convex, nil
	case ALPHA:
		return &AlphaExtractor{radius: 1 / options.Alpha, fallback: convex}, nil
	case RASTER:
		return &RasterExtractor{cell_size: options.CellSize, dilation: options.Dilation, fallback: convex}, nil
	default:
		return nil, eris.Errorf("hull: unknown strategy %v", options.Strategy)
	}
}

// tolerance in meters below which points count as collinear
const _COLLINEAR_TOLERANCE = 1e-3

func _PreparePoints(points []orb.Point) ([]orb.Point, bool) {
	distinct := geo.DistinctPoints(points)
	if len(distinct) < 3 {
		return distinct, false
	}
	return distinct, true
}

func _WithFallback(result Result, strategy Strategy) Result {
	if result.NoCoverage {
		result.Strategy = strategy
		return result
	}
	result.Fallback = true
	return result
}
