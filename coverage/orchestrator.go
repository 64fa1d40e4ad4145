package coverage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/algorithm"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/graph"
	"github.com/ttpr0/go-coverage/hull"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// graph scope
//**********************************************************

// Extent of the road graph a station is routed on.
type GraphScope byte

const (
	// one graph per zone, roads outside the zone are not used
	SCOPE_ZONE GraphScope = 0
	// one graph over the whole region shared by all stations
	SCOPE_REGION GraphScope = 1
)

func (self GraphScope) String() string {
	switch self {
	case SCOPE_ZONE:
		return "zone"
	case SCOPE_REGION:
		return "region"
	default:
		return "unknown"
	}
}
func (self GraphScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self GraphScope) MarshalYAML() (any, error) {
	return self.String(), nil
}
func (self *GraphScope) UnmarshalYAML(value *yaml.Node) error {
	scope, err := GraphScopeFromString(value.Value)
	if err != nil {
		return err
	}
	*self = scope
	return nil
}

func GraphScopeFromString(s string) (GraphScope, error) {
	switch s {
	case "zone", "":
		return SCOPE_ZONE, nil
	case "region":
		return SCOPE_REGION, nil
	default:
		return SCOPE_ZONE, eris.Errorf("coverage: unknown graph scope %q", s)
	}
}

const _REGION_KEY = "<region>"

//**********************************************************
// orchestrator
//**********************************************************

type Dependencies struct {
	Graphs  *GraphCache
	Hull    hull.IHullExtractor
	Clipper *zone.Clipper
	// optional
	Observer IRunObserver
}

type Options struct {
	Thresholds Thresholds
	Workers    int
	// zero disables the timeout
	StationTimeout time.Duration
	Scope          GraphScope
	// lon/lat region used with SCOPE_REGION
	Region orb.MultiPolygon
	// generated if empty
	RunID string
}

func DefaultOptions() Options {
	return Options{
		Thresholds:     DefaultThresholds(),
		Workers:        4,
		StationTimeout: 5 * time.Minute,
		Scope:          SCOPE_ZONE,
	}
}

type Result struct {
	Buckets Buckets
	Report  *Report
}

// Runs the station pipeline (zone, graph, nearest node, reach, hull, clip) over all stations.
type Orchestrator struct {
	deps    Dependencies
	options Options
}

func NewOrchestrator(deps Dependencies, options Options) (*Orchestrator, error) {
	if deps.Graphs == nil || deps.Hull == nil || deps.Clipper == nil {
		return nil, eris.New("coverage: graph cache, hull extractor and clipper are required")
	}
	thresholds, err := NewThresholds(options.Thresholds)
	if err != nil {
		return nil, err
	}
	options.Thresholds = thresholds
	if options.Workers < 1 {
		return nil, eris.Errorf("coverage: workers must be at least 1, got %d", options.Workers)
	}
	if options.StationTimeout < 0 {
		return nil, eris.Errorf("coverage: station timeout must not be negative, got %v", options.StationTimeout)
	}
	if options.Scope == SCOPE_REGION && geo.IsEmpty(options.Region) {
		return nil, eris.New("coverage: region scope requires a region polygon")
	}
	if deps.Observer == nil {
		deps.Observer = _NoopObserver{}
	} else {
		observer := deps.Observer
		deps.Graphs.OnBuild(func(key string, g *graph.RoadGraph, duration time.Duration) {
			observer.GraphBuilt(key, g.NodeCount(), g.EdgeCount(), duration)
		})
	}
	return &Orchestrator{
		deps:    deps,
		options: options,
	}, nil
}

func (self *Orchestrator) Thresholds() Thresholds {
	return self.options.Thresholds
}

// Processes all stations, per-station failures are reported in the result.
//
// Returns an error only if ctx is cancelled before all stations are processed.
func (self *Orchestrator) Run(ctx context.Context, stations []Station, zones *zone.ZoneIndex) (*Result, error) {
	run_id := self.options.RunID
	if run_id == "" {
		run_id = uuid.NewString()
	}
	start := time.Now()
	slog.Info("coverage: run started", "run", run_id, "stations", len(stations), "zones", zones.Len(),
		"thresholds", self.options.Thresholds, "scope", self.options.Scope.String(), "workers", self.options.Workers)

	accumulator := NewAccumulator(self.options.Thresholds)
	outcomes := make([]StationOutcome, len(stations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(self.options.Workers)
	for i, station := range stations {
		i, station := i, station
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome := self._ProcessStation(gctx, station, zones, self.options.Thresholds, accumulator)
			outcomes[i] = outcome
			self.deps.Observer.StationFinished(outcome)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "coverage: run %s cancelled", run_id)
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].StationID < outcomes[j].StationID
	})
	buckets := accumulator.Buckets()
	counts := NewDict[int32, int](len(buckets))
	for _, bucket := range buckets {
		counts[bucket.Threshold] = len(bucket.Polygons)
	}
	report := &Report{
		RunID:        run_id,
		Started:      start,
		Duration:     time.Since(start),
		Thresholds:   self.options.Thresholds,
		Stations:     outcomes,
		SkippedZones: self.deps.Clipper.InvalidZones(),
		Counts:       counts,
	}
	self.deps.Observer.RunFinished(report)
	slog.Info("coverage: run finished", "run", run_id, "polygons", buckets.Count(),
		"skipped_zones", len(report.SkippedZones), "took", report.Duration)
	return &Result{
		Buckets: buckets,
		Report:  report,
	}, nil
}

func (self *Orchestrator) _ProcessStation(ctx context.Context, station Station, zones *zone.ZoneIndex, thresholds Thresholds, accumulator *Accumulator) StationOutcome {
	start := time.Now()
	outcome := StationOutcome{
		StationID: station.ID,
		ZoneID:    station.ZoneID,
		State:     PENDING,
	}
	if self.options.StationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, self.options.StationTimeout)
		defer cancel()
	}
	err := self._RunPipeline(ctx, station, zones, thresholds, accumulator, &outcome)
	outcome.Duration = time.Since(start)
	if err == nil {
		return outcome
	}
	if eris.Is(err, context.DeadlineExceeded) {
		err = eris.Wrapf(ErrStationTimeout, "after %v: %v", self.options.StationTimeout, err)
	}
	outcome.Failure = FailureKindOf(err)
	outcome.Message = err.Error()
	if outcome.Failure == INVALID_ZONE_GEOMETRY {
		outcome.State = SKIPPED
		slog.Warn("coverage: station skipped", "station", station.ID, "zone", station.ZoneID, "reason", outcome.Message)
	} else {
		outcome.State = FAILED
		slog.Error("coverage: station failed", "station", station.ID, "zone", station.ZoneID,
			"kind", outcome.Failure.String(), "error", outcome.Message)
	}
	return outcome
}

// Graph used for stations of the zone, shared by all zones in region scope.
func (self *Orchestrator) ZoneGraph(ctx context.Context, z *zone.Zone) (*graph.RoadGraph, error) {
	if self.options.Scope == SCOPE_REGION {
		return self.deps.Graphs.Get(ctx, _REGION_KEY, self.options.Region)
	}
	return self.deps.Graphs.Get(ctx, z.ID, z.Polygon)
}

func (self *Orchestrator) _RunPipeline(ctx context.Context, station Station, zones *zone.ZoneIndex, thresholds Thresholds, accumulator *Accumulator, outcome *StationOutcome) error {
	if err := station.Validate(); err != nil {
		return eris.Wrap(ErrUpstreamDataMissing, err.Error())
	}
	z, ok := zones.Get(station.ZoneID)
	if !ok {
		return eris.Wrapf(ErrUpstreamDataMissing, "station %s references unknown zone %q", station.ID, station.ZoneID)
	}
	outcome.State = ZONE_RESOLVED
	if err := self.deps.Clipper.Validate(z); err != nil {
		return err
	}

	g, err := self.ZoneGraph(ctx, z)
	if err != nil {
		return err
	}
	outcome.State = GRAPH_READY

	source, ok := g.GetClosestNode(station.Point)
	if !ok {
		return eris.Wrapf(ErrEmptyRegionGraph, "no node near station %s", station.ID)
	}
	outcome.State = NODE_RESOLVED
	slog.Debug("coverage: station resolved", "station", station.ID, "zone", z.ID, "node", source)

	reach, err := algorithm.CalcReach(ctx, g, source, float64(thresholds.Max()))
	if err != nil {
		return err
	}
	outcome.State = REACHABLE

	proj := g.Projection()
	projected_zone := z.Project(proj)
	// filed only once every threshold is done, a failing station leaves no polygons behind
	polygons := NewList[ResponsePolygon](len(thresholds))
	for _, t := range thresholds {
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "coverage: station %s at threshold %d", station.ID, t)
		}
		nodes := reach.Within(float64(t))
		result := self.deps.Hull.Extract(g.NodePoints(nodes))
		outcome.State = HULL_EXTRACTED
		if result.NoCoverage {
			slog.Debug("coverage: no coverage", "station", station.ID, "zone", z.ID, "threshold", t, "nodes", len(nodes))
			outcome.NoCoverage.Add(t)
			continue
		}

		clipped, err := self.deps.Clipper.Clip(projected_zone, result.Polygon, t)
		if err != nil {
			return err
		}
		outcome.State = CLIPPED
		if clipped.Empty {
			slog.Debug("coverage: response polygon outside zone", "station", station.ID, "zone", z.ID, "threshold", t)
			outcome.NoCoverage.Add(t)
			continue
		}

		polygon := ResponsePolygon{
			StationID: station.ID,
			ZoneID:    clipped.ZoneID,
			Threshold: clipped.Threshold,
			Polygon:   geo.ReProjectMultiPolygon(clipped.Polygon, proj),
			Strategy:  result.Strategy,
			Fallback:  result.Fallback,
		}
		polygons.Add(polygon)
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrapf(err, "coverage: station %s before filing", station.ID)
	}
	for _, polygon := range polygons {
		if err := accumulator.File(polygon); err != nil {
			return err
		}
		self.deps.Observer.PolygonFiled(polygon)
		outcome.Polygons += 1
	}
	outcome.State = FILED
	return nil
}

//**********************************************************
// single location
//**********************************************************

// Runs the station pipeline for a single station outside of a run.
//
// Thresholds override the configured ones, failures are reported in the outcome.
func (self *Orchestrator) StationIsochrones(ctx context.Context, station Station, zones *zone.ZoneIndex, thresholds Thresholds) (List[ResponsePolygon], StationOutcome, error) {
	thresholds, err := NewThresholds(thresholds)
	if err != nil {
		return nil, StationOutcome{}, err
	}
	accumulator := NewAccumulator(thresholds)
	outcome := self._ProcessStation(ctx, station, zones, thresholds, accumulator)
	polygons := NewList[ResponsePolygon](outcome.Polygons)
	for _, bucket := range accumulator.Buckets() {
		polygons = append(polygons, bucket.Polygons...)
	}
	return polygons, outcome, nil
}

// Computes unclipped response polygons around a location on the region graph.
//
// Used for on-demand requests without a zone, requires SCOPE_REGION.
func (self *Orchestrator) Isochrones(ctx context.Context, point orb.Point, thresholds Thresholds) (List[ResponsePolygon], error) {
	if geo.IsEmpty(self.options.Region) {
		return nil, eris.New("coverage: no region configured for unclipped isochrones")
	}
	thresholds, err := NewThresholds(thresholds)
	if err != nil {
		return nil, err
	}
	g, err := self.deps.Graphs.Get(ctx, _REGION_KEY, self.options.Region)
	if err != nil {
		return nil, err
	}
	source, ok := g.GetClosestNode(point)
	if !ok {
		return nil, eris.Wrapf(ErrEmptyRegionGraph, "no node near %v", point)
	}
	reach, err := algorithm.CalcReach(ctx, g, source, float64(thresholds.Max()))
	if err != nil {
		return nil, err
	}
	polygons := NewList[ResponsePolygon](len(thresholds))
	for _, t := range thresholds {
		result := self.deps.Hull.Extract(g.NodePoints(reach.Within(float64(t))))
		if result.NoCoverage {
			continue
		}
		polygons.Add(ResponsePolygon{
			Threshold: t,
			Polygon:   geo.ReProjectMultiPolygon(result.Polygon, g.Projection()),
			Strategy:  result.Strategy,
			Fallback:  result.Fallback,
		})
	}
	return polygons, nil
}
