package main

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/geo"
	"github.com/ttpr0/go-coverage/graph"
	"github.com/ttpr0/go-coverage/hull"
	"github.com/ttpr0/go-coverage/metrics"
	"github.com/ttpr0/go-coverage/parser"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"golang.org/x/exp/slog"
)

// Loads zones and the road network once and owns the components shared by runs and requests.
type CoverageManager struct {
	config       Config
	zones        List[*zone.Zone]
	index        *zone.ZoneIndex
	region       orb.MultiPolygon
	network      *parser.Network
	graphs       *coverage.GraphCache
	collector    *metrics.Collector
	orchestrator *coverage.Orchestrator
}

func NewCoverageManager(ctx context.Context, config Config) (*CoverageManager, error) {
	raw, err := zone.LoadZones(config.Input.Zones, config.Input.Zone)
	if err != nil {
		return nil, err
	}
	zones := zone.Dissolve(raw, "")
	region, err := LoadRegionOrZones(config.Input.Region, zones)
	if err != nil {
		return nil, err
	}

	source, err := parser.SourceFromFile(config.Input.OSM)
	if err != nil {
		return nil, err
	}
	options := parser.ParseOptions{
		Bound:  Some(PadBound(region.Bound(), config.Graph.BoundPadding)),
		Speeds: config.SpeedOptions(),
	}
	start := time.Now()
	network, err := parser.ParseNetwork(ctx, source, GetDecoder(config), options)
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", config.Input.OSM)
	}
	slog.Info("parsed road network", "path", config.Input.OSM, "nodes", network.NodeCount(),
		"edges", network.EdgeCount(), "took", time.Since(start))
	return NewCoverageManagerFromNetwork(config, network, zones, region)
}

// Wires the manager around an already parsed network.
func NewCoverageManagerFromNetwork(config Config, network *parser.Network, zones List[*zone.Zone], region orb.MultiPolygon) (*CoverageManager, error) {
	builder := graph.NewBuilder(network, graph.BuilderOptions{
		Projection: config.Graph.Projection,
		RetainAll:  config.Graph.RetainAll,
		Weighting:  config.Graph.Weighting,
	})
	graphs := coverage.NewGraphCache(builder)
	extractor, err := hull.NewExtractor(config.Hull)
	if err != nil {
		return nil, err
	}
	collector := metrics.NewCollector()

	options := config.RunOptions()
	options.Region = region
	orchestrator, err := coverage.NewOrchestrator(coverage.Dependencies{
		Graphs:   graphs,
		Hull:     extractor,
		Clipper:  zone.NewClipper(),
		Observer: collector,
	}, options)
	if err != nil {
		return nil, err
	}
	return &CoverageManager{
		config:       config,
		zones:        zones,
		index:        zone.NewZoneIndex(zones),
		region:       region,
		network:      network,
		graphs:       graphs,
		collector:    collector,
		orchestrator: orchestrator,
	}, nil
}

func (self *CoverageManager) GetZone(id string) Optional[*zone.Zone] {
	if z, ok := self.index.Get(id); ok {
		return Some(z)
	}
	return None[*zone.Zone]()
}

func (self *CoverageManager) Zones() List[*zone.Zone] {
	return self.zones
}

func (self *CoverageManager) ZoneIndex() *zone.ZoneIndex {
	return self.index
}

func (self *CoverageManager) Orchestrator() *coverage.Orchestrator {
	return self.orchestrator
}

func (self *CoverageManager) Collector() *metrics.Collector {
	return self.collector
}

func (self *CoverageManager) Region() orb.MultiPolygon {
	return self.region
}

func (self *CoverageManager) _GetServiceConfig() Config {
	return self.config
}

// Concatenates the zone polygons if no region file is configured.
func LoadRegionOrZones(path string, zones []*zone.Zone) (orb.MultiPolygon, error) {
	if path != "" {
		return zone.LoadRegion(path)
	}
	region := orb.MultiPolygon{}
	for _, z := range zones {
		region = append(region, z.Polygon...)
	}
	if geo.IsEmpty(region) {
		return nil, eris.Wrap(zone.ErrNoZones, "no region polygon")
	}
	return region, nil
}
